package handlers

import (
	"fmt"
	"net/http"

	"github.com/admiralorbiter/skien/internal/importer"
	"github.com/admiralorbiter/skien/internal/services"

	"github.com/gin-gonic/gin"
)

// ImportHandler drives the three-phase CSV import over HTTP
type ImportHandler struct {
	importer *importer.Importer
	audit    *services.AuditService
}

// NewImportHandler creates a new import handler
func NewImportHandler(imp *importer.Importer, audit *services.AuditService) *ImportHandler {
	return &ImportHandler{importer: imp, audit: audit}
}

// Upload accepts a multipart CSV file and returns its header, sample rows
// and row count
func (h *ImportHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a file upload named 'file' is required"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer src.Close()

	result, err := h.importer.SaveUpload(src, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filename":    result.Filename,
		"header":      result.Header,
		"sample_rows": result.SampleRows,
		"row_count":   result.RowCount,
	})
}

type mappingRequest struct {
	Filename      string            `json:"filename" binding:"required"`
	ColumnMapping map[string]string `json:"column_mapping" binding:"required"`
}

// Preview applies a column mapping without writing anything
func (h *ImportHandler) Preview(c *gin.Context) {
	var req mappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename and column_mapping are required"})
		return
	}

	result, err := h.importer.Preview(req.Filename, req.ColumnMapping)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload := map[string]interface{}{
		"total_rows":  result.TotalRows,
		"valid":       result.ValidRows,
		"invalid":     result.InvalidRows,
		"errors":      result.Errors,
		"sample_rows": result.SampleRows,
	}
	c.JSON(http.StatusOK, importer.SanitizeJSON(payload))
}

// Process imports the uploaded file row by row
func (h *ImportHandler) Process(c *gin.Context) {
	var req mappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename and column_mapping are required"})
		return
	}

	result, err := h.importer.Process(req.Filename, req.ColumnMapping)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if claims := currentClaims(c); claims != nil {
		h.audit.LogAction(claims.UserID, "import_processed", nil,
			fmt.Sprintf("Imported %s: %d created, %d duplicates, %d errors",
				req.Filename, result.Success, result.Duplicates, result.Errors),
			requestMeta(c))
	}

	payload := map[string]interface{}{
		"success":       result.Success,
		"errors":        result.Errors,
		"duplicates":    result.Duplicates,
		"error_details": result.ErrorDetails,
	}
	c.JSON(http.StatusOK, importer.SanitizeJSON(payload))
}
