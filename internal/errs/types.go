package errs

import "strings"

// FieldError is a single invalid input field.
//
//	{ "field": "paid_amount", "error": "must be at least 0" }
type FieldError struct {
	// Field is the wire name of the input, e.g. "items[0].rate" or "bill_id".
	Field string `json:"field"`

	// Error is the human readable reason the value was rejected.
	Error string `json:"error"`
}

// ActionType tells the client what kind of follow-up Action carries.
type ActionType string

const (
	// ActionTypeRedirect asks the client to navigate to Action.Value.
	ActionTypeRedirect ActionType = "redirect"
)

// Action is an optional instruction for the client, e.g. open the bill whose
// payment still has to be recorded.
type Action struct {
	Type ActionType `json:"type"`

	// Message is shown next to the follow-up, e.g. on a button.
	Message string `json:"message"`

	// Value is the payload of the action. For redirects it is a route.
	Value string `json:"value"`
}

// NewRedirectAction points the client at the page where the error can be
// resolved.
func NewRedirectAction(message, to string) *Action {
	return &Action{Type: ActionTypeRedirect, Message: message, Value: to}
}

// HTTPError is the JSON error body and doubles as a Go error, so services can
// return it directly and the global error handler writes it unchanged.
type HTTPError struct {
	// Code is the machine readable reason, e.g. "NOT_FOUND" or
	// "PAID_AMOUNT_EXCEEDS_TOTAL". Clients branch on it, not on Message.
	Code string `json:"code"`

	Message string `json:"message"`

	// Status is the HTTP status the response is written with.
	Status int `json:"status"`

	// Override marks messages that are safe to show to end users verbatim.
	Override bool `json:"override"`

	// Errors lists field-level validation failures. Nil for other errors.
	Errors []FieldError `json:"errors"`

	// Action is an optional follow-up for the client.
	Action *Action `json:"action"`
}

// Error returns the client facing message, which is also what gets logged.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is an *HTTPError, regardless of its fields.
// errors.Is(err, &errs.HTTPError{}) therefore answers "is this already a
// client error?" without comparing codes.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// MakeUpperCaseWithUnderscores derives an error code from status text:
//
//	"Bad Request" -> "BAD_REQUEST"
//	"Method Not Allowed" -> "METHOD_NOT_ALLOWED"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
