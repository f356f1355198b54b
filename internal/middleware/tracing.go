package middleware

import (
	"github.com/Nishank-123/biller/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// TracingMiddleware wraps requests in New Relic transactions. With no agent
// configured both middlewares pass requests straight through.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{server: s, nrApp: nrApp}
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// NewRelicMiddleware starts one transaction per request and stores it in the
// request context, where the logger and pgx/redis integrations pick it up.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return passthrough
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing labels the transaction with the bill being touched so slow
// or failing requests can be traced back to a bill number.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return passthrough
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			annotateRequest(txn, c)

			err := next(c)
			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}

			if userID := GetUserID(c); userID != "" {
				txn.AddAttribute("user.id", userID)
			}
			txn.AddAttribute("http.status_code", c.Response().Status)
			return err
		}
	}
}

// annotateRequest copies request identity onto txn:
//
//	request.id          X-Request-ID
//	bill.number         :bill_id path parameter
//	bill.status_filter  ?status on GET /bills
func annotateRequest(txn *newrelic.Transaction, c echo.Context) {
	txn.AddAttribute("http.real_ip", c.RealIP())
	txn.AddAttribute("http.user_agent", c.Request().UserAgent())

	if id := GetRequestID(c); id != "" {
		txn.AddAttribute("request.id", id)
	}
	if billNumber := c.Param("bill_id"); billNumber != "" {
		txn.AddAttribute("bill.number", billNumber)
	}
	if status := c.QueryParam("status"); status != "" {
		txn.AddAttribute("bill.status_filter", status)
	}
}
