package utils

import (
	"context"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Recovery is a decorator to recover from panics in contracts,
// so we can log them as errors
type Recovery struct{}

var _ quorum.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Run turns panics into normal errors
func (r Recovery) Run(ctx context.Context, env quorum.Env, input []byte, next quorum.Contract) (_ []byte, err error) {
	defer errors.Recover(&err)
	return next.Run(ctx, env, input)
}
