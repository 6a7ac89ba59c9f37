package resource

import (
	"context"
	"io"
)

// ThrottledReader paces reads from an underlying reader through the
// controller's load limiter.
type ThrottledReader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// NewThrottledReader wraps r. With a nil controller or no load limit the
// reader is returned unchanged.
func NewThrottledReader(ctx context.Context, r io.Reader, rc *Controller) io.Reader {
	if rc == nil || rc.loadLimiter == nil {
		return r
	}
	return &ThrottledReader{ctx: ctx, r: r, rc: rc}
}

func (t *ThrottledReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		if werr := t.rc.WaitLoad(t.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
