package handler

import (
	"mime"
	"reflect"
	"time"

	"github.com/Nishank-123/biller/internal/middleware"
	"github.com/Nishank-123/biller/internal/model"
	"github.com/Nishank-123/biller/internal/server"
	"github.com/Nishank-123/biller/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler carries the shared application container into concrete handlers.
//
// BillHandler, HealthHandler and PagesHandler embed it to reach config, the
// logger and the New Relic application through *server.Server.
type Handler struct {
	server *server.Server
}

// NewHandler returns the base by value; copies share the same *server.Server.
func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint. It receives Req already bound from path,
// query and body and already validated, and returns the value to render.
//
// Req is a pointer to a request struct such as *model.UpdatePaymentRequest,
// since echo's Bind needs something it can populate.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// ResponseHandler writes a successful result and describes it for tracing.
type ResponseHandler interface {
	// Handle writes result to the response.
	Handle(c echo.Context, result interface{}) error

	// GetOperation names the response kind in request logs.
	GetOperation() string

	// AddAttributes adds response specific attributes to txn. It is called
	// with a nil result before the handler runs and again with the result.
	AddAttributes(txn *newrelic.Transaction, result interface{})
}

// JSONResponseHandler renders the result as JSON with a fixed status.
type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

// AddAttributes adds nothing; EnhanceTracing already records the status.
func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {}

// FileResponseHandler sends a *model.Document as an attachment. The file
// name comes from the document, so each bill downloads under its own name.
type FileResponseHandler struct {
	status int
}

func (h FileResponseHandler) Handle(c echo.Context, result interface{}) error {
	doc := result.(*model.Document)

	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))

	return c.Blob(h.status, doc.ContentType, doc.Data)
}

func (h FileResponseHandler) GetOperation() string {
	return "handler_file"
}

func (h FileResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if txn == nil {
		return
	}
	if doc, ok := result.(*model.Document); ok {
		txn.AddAttribute("file.name", doc.Filename)
		txn.AddAttribute("file.content_type", doc.ContentType)
		txn.AddAttribute("file.size_bytes", len(doc.Data))
	}
}

// newRequest allocates a zero value of the type template points to, so no
// state leaks between requests sharing a route.
func newRequest[Req validation.Validatable](template Req) Req {
	t := reflect.TypeOf(template)
	if t.Kind() != reflect.Pointer {
		return template
	}
	return reflect.New(t.Elem()).Interface().(Req)
}

// handleRequest is the shared pipeline behind Handle and HandleFile:
//
//  1. bind and validate req, returning a 400 HTTPError on failure
//  2. run handler
//  3. write the result through responseHandler
//
// Errors are returned unwritten so GlobalErrorHandler renders them. Each
// phase is timed in the request log and on the New Relic transaction.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (interface{}, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	method := c.Request().Method
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
		responseHandler.AddAttributes(txn, nil)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("method", method).
		Str("route", route).
		Logger()

	logger.Debug().Msg("handling request")

	validationStart := time.Now()
	if err := validation.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}
		return err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", time.Since(start)).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}
		return err
	}

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", time.Since(start).Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", time.Since(start)).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// Handle adapts a typed JSON endpoint into an echo.HandlerFunc.
//
//	e.POST("/generate_bill", handler.Handle(h, h.Generate, http.StatusOK, &model.GenerateBillRequest{}))
func Handle[Req validation.Validatable, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	status int,
	req Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newRequest(req), func(c echo.Context, req Req) (interface{}, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}

// HandleFile adapts an endpoint returning a document download. The result is
// sent as an attachment named after model.Document.Filename.
//
//	e.GET("/download_pdf/:bill_id", handler.HandleFile(h, h.DownloadPDF, http.StatusOK, &model.BillNumberRequest{}))
func HandleFile[Req validation.Validatable](
	h Handler,
	handler HandlerFunc[Req, *model.Document],
	status int,
	req Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newRequest(req), func(c echo.Context, req Req) (interface{}, error) {
			return handler(c, req)
		}, FileResponseHandler{status: status})
	}
}
