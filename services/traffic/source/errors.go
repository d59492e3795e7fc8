package source

import (
	"errors"
	"fmt"
	"net/http"
)

var errNilClock = errors.New("nil clock")

type errStatusNotOK int

func (e errStatusNotOK) Error() string {
	return fmt.Sprintf("non-2xx HTTP status code: %d %s", int(e), http.StatusText(int(e)))
}

type errUnexpectedPayload string

func (e errUnexpectedPayload) Error() string {
	return "unexpected JSON payload for " + string(e)
}

type errInvalidRepositoryName string

func (e errInvalidRepositoryName) Error() string {
	return "repository name is not in owner/name form: " + string(e)
}
