package newrelic

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// FromContext extracts New Relic transaction from standard context
func FromContext(ctx context.Context) *newrelic.Transaction {
	return newrelic.FromContext(ctx)
}

// StartTransaction starts a background transaction and returns a context
// carrying it. The returned end function is always safe to call.
func StartTransaction(ctx context.Context, app *newrelic.Application, name string) (context.Context, func()) {
	if app == nil {
		return ctx, func() {}
	}
	txn := app.StartTransaction(name)
	return newrelic.NewContext(ctx, txn), txn.End
}

// NoticeError reports err on the transaction carried by ctx
func NoticeError(ctx context.Context, err error) {
	if txn := FromContext(ctx); txn != nil && err != nil {
		txn.NoticeError(err)
	}
}

// AddAttribute adds a custom attribute to the transaction carried by ctx
func AddAttribute(ctx context.Context, key string, value interface{}) {
	if txn := FromContext(ctx); txn != nil {
		txn.AddAttribute(key, value)
	}
}

// WithSegment executes fn within a segment of the transaction carried by ctx
func WithSegment(ctx context.Context, segmentName string, fn func() error) error {
	if txn := FromContext(ctx); txn != nil {
		defer txn.StartSegment(segmentName).End()
	}
	return fn()
}

// EchoMiddleware starts a web transaction per request, named after the
// matched route
func EchoMiddleware(app *newrelic.Application) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if app == nil {
			return next
		}
		return func(c echo.Context) error {
			req := c.Request()
			txn := app.StartTransaction(req.Method + " " + c.Path())
			defer txn.End()

			txn.SetWebRequestHTTP(req)
			c.Response().Writer = txn.SetWebResponse(c.Response().Writer)
			c.SetRequest(req.WithContext(newrelic.NewContext(req.Context(), txn)))

			err := next(c)
			if err != nil {
				txn.NoticeError(err)
			}
			return err
		}
	}
}
