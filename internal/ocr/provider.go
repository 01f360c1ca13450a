package ocr

import "context"

// Provider recognizes text in a check image. Implementations must be safe for
// concurrent use; the worker pool shares one instance.
type Provider interface {
	Recognize(ctx context.Context, image []byte) (Document, error)
}
