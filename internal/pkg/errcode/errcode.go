package errcode

const (
	ErrUnknown = 20000000 + iota
	ErrUnauthorized
	ErrForbidden
	ErrNotFound
	ErrInvalid
	ErrConflict
	ErrTooMany
	ErrInternal
	ErrInvalidFile
	ErrUploadFailed
	ErrEmbeddingUnavailable
	ErrSearchUnavailable
	ErrNoContext
	ErrGenerationUnavailable
	ErrUnsupportedOutputType
)
