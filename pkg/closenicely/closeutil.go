package closenicely

import (
	"io"

	"go.uber.org/zap"
)

// OrDebug closes `closer`, logging a failure at debug level. For deferred closes of read-only files where
// the error cannot change the outcome.
func OrDebug(closer io.Closer) {
	FuncOrDebug(closer.Close)
}

func FuncOrDebug(closer func() error) {
	if err := closer(); err != nil {
		zap.L().Named("close").Debug("failed to close resource", zap.Error(err))
	}
}
