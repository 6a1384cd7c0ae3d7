package excel

import (
	"time"

	"triagelens/domain/table"
)

// Worker runs decodes off the caller's goroutine. Each Submit is one request
// with exactly one response; there is no streaming and no cancellation. A
// caller that submits again while a decode is in flight receives two
// responses and must discard the stale one itself.
type Worker struct {
	decode DecodeFunc
}

// NewWorker returns a worker decoding xlsx bytes with Decode
func NewWorker() *Worker {
	return &Worker{decode: Decode}
}

// NewWorkerWith returns a worker using a custom decode function
func NewWorkerWith(decode DecodeFunc) *Worker {
	return &Worker{decode: decode}
}

// Submit starts decoding data and returns the channel that will carry the
// result. The channel is buffered, so the decode goroutine never blocks even
// when nobody reads the response.
func (w *Worker) Submit(source string, data []byte) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		start := time.Now()
		rs, err := w.decode(source, data)
		if err != nil {
			logger.Warn("decode of %s failed after %s: %v", source, time.Since(start), err)
		} else {
			logger.Info("decoded %s: %d rows in %s", source, rs.Len(), time.Since(start))
		}
		out <- Result{RowSet: rs, Err: err}
	}()
	return out
}

// DecodeSync submits data and waits for the response
func (w *Worker) DecodeSync(source string, data []byte) (*table.RowSet, error) {
	res := <-w.Submit(source, data)
	return res.RowSet, res.Err
}
