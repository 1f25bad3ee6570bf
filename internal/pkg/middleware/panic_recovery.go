package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/ukdrive/internal/pkg/logger"
)

// PanicRecoveryConfig holds configuration for panic recovery middleware
type PanicRecoveryConfig struct {
	StackSize int
	Logger    *logger.ZapLogger
}

// DefaultPanicRecoveryConfig returns default configuration for panic recovery
func DefaultPanicRecoveryConfig() PanicRecoveryConfig {
	return PanicRecoveryConfig{StackSize: 4 << 10}
}

// PanicRecoveryWithZapMiddleware creates panic recovery middleware with Zap logger
func PanicRecoveryWithZapMiddleware(zapLogger *logger.ZapLogger) echo.MiddlewareFunc {
	config := DefaultPanicRecoveryConfig()
	config.Logger = zapLogger
	return PanicRecoveryMiddleware(config)
}

// PanicRecoveryMiddleware recovers from panics in handlers, logs them with
// the stack and reports them on the New Relic transaction when present
func PanicRecoveryMiddleware(config PanicRecoveryConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = logger.GetGlobalLogger()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = handlePanic(c, r, config)
				}
			}()

			return next(c)
		}
	}
}

func handlePanic(c echo.Context, r interface{}, config PanicRecoveryConfig) error {
	stack := debug.Stack()
	if config.StackSize > 0 && len(stack) > config.StackSize {
		stack = stack[:config.StackSize]
	}

	panicMsg := fmt.Sprintf("panic recovered: %v", r)

	if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
		txn.NoticeError(newrelic.Error{
			Message: panicMsg,
			Class:   "PanicError",
		})
	}

	config.Logger.Error("Panic recovered during request processing",
		logger.String("panic_value", fmt.Sprintf("%v", r)),
		logger.String("panic_type", fmt.Sprintf("%T", r)),
		logger.String("stack_trace", string(stack)),
		logger.String("method", c.Request().Method),
		logger.String("path", c.Request().URL.Path),
		logger.String("client_ip", c.RealIP()))

	if c.Response().Committed {
		return nil
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error":   "Internal Server Error",
		"message": "An unexpected error occurred while processing your request",
	})
}
