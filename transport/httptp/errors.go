package httptp

import (
	"fmt"
	"net/http"
)

// StatusError is returned for a non-2xx reply whose body is not a GraphQL response.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httptp: unexpected status %d %s", e.Code, http.StatusText(e.Code))
}
