package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/schemapilot/schemapilot/internal/pkg/errcode"
	appErr "github.com/schemapilot/schemapilot/internal/pkg/errors"
	"github.com/schemapilot/schemapilot/internal/pkg/response"
)

// handleError maps service failures to stable API error codes with
// user-facing wording; the underlying cause only goes to the log.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, errcode.ErrForbidden, "forbidden")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrInvalidFile):
		response.Error(c, errcode.ErrInvalidFile, "unsupported or unreadable file")
	case errors.Is(err, appErr.ErrUnsupportedOutputType):
		response.Error(c, errcode.ErrUnsupportedOutputType, "output_type must be one of sql, n8n, formio")
	case errors.Is(err, appErr.ErrNoContext):
		response.Error(c, errcode.ErrNoContext, "no context configured for this version; upload DDL or docs first")
	case errors.Is(err, appErr.ErrEmbedding):
		response.Error(c, errcode.ErrEmbeddingUnavailable, "embedding service unavailable")
	case errors.Is(err, appErr.ErrVectorIndex):
		response.Error(c, errcode.ErrSearchUnavailable, "search service unavailable")
	case errors.Is(err, appErr.ErrCompletion):
		response.Error(c, errcode.ErrGenerationUnavailable, "generation service temporarily unavailable, retry later")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, errcode.ErrConflict, "conflict")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
