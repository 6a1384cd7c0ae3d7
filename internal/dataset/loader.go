// Package dataset turns uploaded spreadsheet bytes into row sets.
//
// Decoding runs on excel workers. Results are cached by format and content
// hash, and concurrent uploads of the same bytes share a single decode.
package dataset

import (
	"context"
	"path/filepath"
	"strings"

	"triagelens/adapters/excel"
	"triagelens/domain/core"
	"triagelens/domain/table"
	"triagelens/internal"
	"triagelens/internal/errors"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is used when a non-positive size is passed to NewLoader
const DefaultCacheSize = 8

var logger = internal.DefaultLogger.With("Dataset")

// decodeKey identifies one decode: the same bytes read as CSV and as a
// workbook are different results.
type decodeKey struct {
	format string
	hash   core.ContentHash
}

func (k decodeKey) String() string {
	return k.format + ":" + k.hash.String()
}

// Loader decodes workbooks and CSV files into row sets
type Loader struct {
	xlsx  *excel.Worker
	csv   *excel.Worker
	cache *lru.Cache[decodeKey, *table.RowSet]
	group singleflight.Group
}

// NewLoader creates a loader that keeps the last cacheSize decodes
func NewLoader(cacheSize int) (*Loader, error) {
	return NewLoaderWith(excel.NewWorker(), excel.NewWorkerWith(excel.DecodeCSV), cacheSize)
}

// NewLoaderWith creates a loader over explicit workers
func NewLoaderWith(xlsx, csv *excel.Worker, cacheSize int) (*Loader, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[decodeKey, *table.RowSet](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create decode cache")
	}
	return &Loader{xlsx: xlsx, csv: csv, cache: cache}, nil
}

// IsCSV reports whether source names a CSV file
func IsCSV(source string) bool {
	return strings.EqualFold(filepath.Ext(source), ".csv")
}

// Load decodes data named source. The returned row set carries source as its
// name even when it was served from cache under another name. Cancelling ctx
// abandons the wait, not the decode.
func (l *Loader) Load(ctx context.Context, source string, data []byte) (*table.RowSet, error) {
	key := decodeKey{format: "xlsx", hash: core.NewContentHash(data)}
	worker := l.xlsx
	if IsCSV(source) {
		key.format = "csv"
		worker = l.csv
	}

	if rs, ok := l.cache.Get(key); ok {
		logger.Debug("cache hit for %s (%s)", source, key.hash.Short())
		return rs.WithSource(source), nil
	}

	ch := l.group.DoChan(key.String(), func() (interface{}, error) {
		res := <-worker.Submit(source, data)
		if res.Err != nil {
			return nil, res.Err
		}
		l.cache.Add(key, res.RowSet)
		return res.RowSet, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logger.Debug("shared decode for %s (%s)", source, key.hash.Short())
		}
		return res.Val.(*table.RowSet).WithSource(source), nil
	}
}

// Cached reports how many decodes are held in the cache
func (l *Loader) Cached() int {
	return l.cache.Len()
}

// Purge drops every cached decode
func (l *Loader) Purge() {
	l.cache.Purge()
}
