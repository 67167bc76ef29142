package errors

import "errors"

// Request/plumbing level errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")
	ErrInvalidFile  = errors.New("invalid file")
)

// Generation pipeline errors. Each stage raises exactly one of these so
// callers can map failures to user-facing conditions with errors.Is.
var (
	ErrEmbedding             = errors.New("embedding unavailable")
	ErrVectorIndex           = errors.New("vector index unavailable")
	ErrNoContext             = errors.New("no context indexed for version")
	ErrCompletion            = errors.New("completion service unavailable")
	ErrUnsupportedOutputType = errors.New("unsupported output type")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsNoContext(err error) bool {
	return errors.Is(err, ErrNoContext)
}
