package dataset

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"triagelens/adapters/excel"
	"triagelens/domain/table"
	"triagelens/internal/errors"
	"triagelens/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingWorker(calls *int32, delay time.Duration) *excel.Worker {
	return excel.NewWorkerWith(func(source string, data []byte) (*table.RowSet, error) {
		atomic.AddInt32(calls, 1)
		time.Sleep(delay)
		return table.FromStrings(source, []string{"Body"}, [][]string{{string(data)}}), nil
	})
}

func TestLoadDecodesWorkbook(t *testing.T) {
	data, err := testkit.SampleWorkbook()
	require.NoError(t, err)

	l, err := NewLoader(4)
	require.NoError(t, err)

	rs, err := l.Load(context.Background(), "sales.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, "sales.xlsx", rs.Source())
	assert.Equal(t, 6, rs.Len())
	assert.Equal(t, 1, l.Cached())
}

func TestLoadDispatchesCSVByExtension(t *testing.T) {
	l, err := NewLoader(0)
	require.NoError(t, err)

	rs, err := l.Load(context.Background(), "export.CSV", []byte("Status,Count\nActive,3\nPending,1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Status", "Count"}, []string(rs.Header()))
	assert.Equal(t, "Pending", rs.Value(1, "Status").String())
}

func TestLoadServesRepeatsFromCache(t *testing.T) {
	var calls int32
	w := countingWorker(&calls, 0)
	l, err := NewLoaderWith(w, w, 2)
	require.NoError(t, err)

	first, err := l.Load(context.Background(), "a.xlsx", []byte("same"))
	require.NoError(t, err)
	second, err := l.Load(context.Background(), "b.xlsx", []byte("same"))
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "a.xlsx", first.Source())
	assert.Equal(t, "b.xlsx", second.Source())

	l.Purge()
	assert.Equal(t, 0, l.Cached())
	_, err = l.Load(context.Background(), "c.xlsx", []byte("same"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestLoadSharesConcurrentDecodes(t *testing.T) {
	var calls int32
	w := countingWorker(&calls, 50*time.Millisecond)
	l, err := NewLoaderWith(w, w, 2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rs, err := l.Load(context.Background(), "x.xlsx", []byte("payload"))
			assert.NoError(t, err)
			assert.Equal(t, 1, rs.Len())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestLoadCachesEachFormatSeparately(t *testing.T) {
	l, err := NewLoader(4)
	require.NoError(t, err)

	data := []byte("Status,Count\nActive,3\n")
	rs, err := l.Load(context.Background(), "x.csv", data)
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())

	_, err = l.Load(context.Background(), "x.xlsx", data)
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
	assert.Equal(t, 1, l.Cached())
}

func TestLoadReportsParseErrors(t *testing.T) {
	l, err := NewLoader(2)
	require.NoError(t, err)

	_, err = l.Load(context.Background(), "broken.xlsx", []byte("not a workbook"))
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
	assert.Equal(t, 0, l.Cached(), "failed decodes are not cached")
}

func TestLoadHonoursCancellation(t *testing.T) {
	var calls int32
	w := countingWorker(&calls, 200*time.Millisecond)
	l, err := NewLoaderWith(w, w, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = l.Load(ctx, "slow.xlsx", []byte("slow"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsCSV(t *testing.T) {
	assert.True(t, IsCSV("data.csv"))
	assert.True(t, IsCSV("DATA.Csv"))
	assert.False(t, IsCSV("data.xlsx"))
	assert.False(t, IsCSV("csv"))
}
