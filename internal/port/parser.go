package port

import (
	"context"

	"seppy/internal/adapter/syntax"
)

type Parser interface {
	Parse(ctx context.Context, path string, src []byte) (*syntax.File, error)

	Language() string
}
