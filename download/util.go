package download

import (
	"context"
	"io"
)

// ContextReader wraps a reader such that reads fail once the context is done.
// It stops long streaming copies between chunks; a single blocked read is
// interrupted only if the underlying reader itself honors the context (as
// http response bodies do).
type ContextReader struct {
	ctx context.Context
	r   io.Reader
}

func NewContextReader(ctx context.Context, r io.Reader) *ContextReader {
	return &ContextReader{
		ctx: ctx,
		r:   r,
	}
}

// Read implements io.Reader#Read(), respecting the ContextReader's embedded
// context.
func (cr *ContextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
