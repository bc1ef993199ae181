package signapi

var (
	// ErrMissingInput is returned when a call omits the request description or the
	// app secret
	ErrMissingInput error = &rejection{"Missing requestOption or app_secret"}

	// ErrUnsupportedMethod is returned when an HTTP call uses any method other than
	// POST
	ErrUnsupportedMethod error = &rejection{"Method not allowed"}
)

// rejection is an error that turns a call away before any signing is attempted
type rejection struct {
	message string
}

func (e *rejection) Error() string {
	return e.message
}

func (e *rejection) Rejected() bool {
	return true
}
