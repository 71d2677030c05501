package api

// HTTPError carries the status and message written to the client plus a
// separate error for the server log, so internals never leak into responses.
type HTTPError struct {
	StatusCode int
	Message    string
	ErrorLog   error
}

func (e *HTTPError) Error() string {
	return e.Message
}

type ApiError struct {
	Error string `json:"message"`
}
