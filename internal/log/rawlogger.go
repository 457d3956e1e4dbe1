package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger records the raw bytes exchanged with remote endpoints.
type RawLogger interface {
	Log(out bool, endpoint string, data []byte)
}

type rawLogger struct {
	w     io.Writer
	limit int
	mu    sync.Mutex
}

// DefaultRawLimit caps how many payload bytes are written per entry.
const DefaultRawLimit = 4096

// NewRaw creates a RawLogger writing to w. A nil writer gives a logger that
// drops everything.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w, limit: DefaultRawLimit}
}

// Log writes one entry: a header line with timestamp, direction, endpoint
// and size, then the quoted payload. out=true is a request body we sent,
// out=false a response body we received.
func (r *rawLogger) Log(out bool, endpoint string, data []byte) {
	if r.w == nil {
		return
	}

	dir := "<<"
	if out {
		dir = ">>"
	}

	payload := data
	truncated := ""
	if r.limit > 0 && len(payload) > r.limit {
		payload = payload[:r.limit]
		truncated = fmt.Sprintf(" (truncated to %d)", r.limit)
	}

	entry := fmt.Sprintf("%s %s %s: %d bytes%s\n%q\n",
		time.Now().Format("2006/01/02 15:04:05"),
		dir,
		endpoint,
		len(data),
		truncated,
		payload)

	r.mu.Lock()
	_, _ = io.WriteString(r.w, entry)
	r.mu.Unlock()
}
