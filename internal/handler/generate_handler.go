package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/schemapilot/schemapilot/internal/model"
	"github.com/schemapilot/schemapilot/internal/pkg/errcode"
	"github.com/schemapilot/schemapilot/internal/pkg/response"
)

// Generator is the orchestrator surface the HTTP layer depends on.
type Generator interface {
	GenerateCode(ctx context.Context, req model.GenerationRequest) (*model.GenerationResult, error)
	DetectAmbiguity(ctx context.Context, request string) model.AmbiguityVerdict
}

type GenerateHandler struct {
	generator Generator
}

func NewGenerateHandler(generator Generator) *GenerateHandler {
	return &GenerateHandler{generator: generator}
}

type generateRequest struct {
	Request    string `json:"request"`
	OutputType string `json:"output_type"`
	VersionID  string `json:"version_id"`
}

type ambiguityRequest struct {
	Request string `json:"request"`
}

func (h *GenerateHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	subject, _ := c.Get("subject")
	userID, _ := subject.(string)
	result, err := h.generator.GenerateCode(c.Request.Context(), model.GenerationRequest{
		Request:    req.Request,
		OutputType: model.OutputType(req.OutputType),
		VersionID:  req.VersionID,
		UserID:     userID,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *GenerateHandler) Ambiguity(c *gin.Context) {
	var req ambiguityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	verdict := h.generator.DetectAmbiguity(c.Request.Context(), req.Request)
	response.Success(c, verdict)
}
