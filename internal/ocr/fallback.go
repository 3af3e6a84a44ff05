package ocr

import (
	"context"
	"errors"
)

type fallbackEngine struct {
	primary   Engine
	secondary Engine
}

// Fallback tries primary first and hands the file to secondary only when
// primary cannot read that format. A nil secondary returns primary unchanged.
func Fallback(primary, secondary Engine) Engine {
	if secondary == nil {
		return primary
	}
	return &fallbackEngine{primary: primary, secondary: secondary}
}

func (f *fallbackEngine) Recognize(ctx context.Context, file File, progress ProgressFunc) (string, error) {
	text, err := f.primary.Recognize(ctx, file, progress)
	if errors.Is(err, ErrUnsupportedFormat) {
		return f.secondary.Recognize(ctx, file, progress)
	}
	return text, err
}
