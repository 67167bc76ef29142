package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/schemapilot/schemapilot/internal/model"
	"github.com/schemapilot/schemapilot/internal/pkg/errcode"
	"github.com/schemapilot/schemapilot/internal/pkg/response"
	"github.com/schemapilot/schemapilot/internal/service"
)

// FileHandler owns the admin surface of the indexing pipeline: uploading,
// listing and deleting version-scoped schema documents.
type FileHandler struct {
	indexing *service.IndexingService
}

func NewFileHandler(indexing *service.IndexingService) *FileHandler {
	return &FileHandler{indexing: indexing}
}

func (h *FileHandler) Upload(c *gin.Context) {
	versionID := c.PostForm("version_id")
	if versionID == "" {
		response.Error(c, errcode.ErrInvalid, "version_id is required")
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	opened, err := fileHeader.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to open file")
		return
	}
	defer opened.Close()

	file, err := h.indexing.UploadFile(c.Request.Context(), versionID, fileHeader.Filename, opened, fileHeader.Size)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, file)
}

func (h *FileHandler) List(c *gin.Context) {
	versionID := c.Query("version_id")
	if versionID == "" {
		response.Error(c, errcode.ErrInvalid, "version_id is required")
		return
	}
	files, err := h.indexing.ListFiles(c.Request.Context(), versionID)
	if err != nil {
		handleError(c, err)
		return
	}
	if files == nil {
		files = []*model.SchemaFile{}
	}
	response.Success(c, gin.H{"items": files})
}

func (h *FileHandler) Delete(c *gin.Context) {
	fileID := c.Param("id")
	if fileID == "" {
		response.Error(c, errcode.ErrInvalid, "file id is required")
		return
	}
	if err := h.indexing.DeleteFile(c.Request.Context(), fileID); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": fileID})
}
