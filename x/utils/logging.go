package utils

import (
	"context"
	"time"

	"github.com/iov-one/quorum"
)

// Logging is a decorator to log frames as they pass through
type Logging struct{}

var _ quorum.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Run logs error -> info, success -> debug. Failing frames are common,
// as accounts report failing sub-calls without failing themselves.
func (r Logging) Run(ctx context.Context, env quorum.Env, input []byte, next quorum.Contract) ([]byte, error) {
	start := time.Now()
	gas := env.GasLeft()
	res, err := next.Run(ctx, env, input)
	logDuration(ctx, env, start, gas, err)
	return res, err
}

// logDuration writes information about the time and result to the logger
func logDuration(ctx context.Context, env quorum.Env, start time.Time, gas uint64, err error) {
	delta := time.Since(start)
	logger := quorum.GetLogger(ctx).With(
		"duration", delta/time.Microsecond,
		"self", env.Self().Hex(),
		"caller", env.Caller().Hex(),
		"gas_used", gas-env.GasLeft(),
	)
	if env.CodeAddress() != env.Self() {
		logger = logger.With("code", env.CodeAddress().Hex())
	}

	if err != nil {
		logger.Info("frame failed", "err", err)
	} else {
		logger.Debug("frame done")
	}
}
