package ui

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"triagelens/internal/errors"
	"triagelens/internal/session"

	"github.com/gin-gonic/gin"
)

// excelize reads the OOXML family only; legacy .xls is not accepted
var validExtensions = []string{".xlsx", ".xlsm", ".csv"}

// datasetInfo is the JSON shape of GET /api/dataset
type datasetInfo struct {
	Status       session.Status `json:"status"`
	Source       string         `json:"source,omitempty"`
	Pending      string         `json:"pending,omitempty"`
	Error        string         `json:"error,omitempty"`
	Header       []string       `json:"header"`
	TotalRows    int            `json:"total_rows"`
	FilteredRows int            `json:"filtered_rows"`
	Filters      int            `json:"filters"`
	LoadedAt     string         `json:"loaded_at,omitempty"`
}

func newDatasetInfo(v session.View) datasetInfo {
	info := datasetInfo{
		Status:       v.Status,
		Source:       v.Source,
		Pending:      v.Pending,
		Error:        v.Error,
		Header:       v.Header(),
		TotalRows:    v.Rows.Len(),
		FilteredRows: v.Filtered().Len(),
		Filters:      v.Filters.Len(),
	}
	if info.Header == nil {
		info.Header = []string{}
	}
	if !v.LoadedAt.IsZero() {
		info.LoadedAt = v.LoadedAt.Format(time.RFC3339)
	}
	return info
}

// handleFileUpload decodes an uploaded workbook and makes it the session dataset
func (s *Server) handleFileUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.options.MaxUploadBytes+(1<<20))

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		logger.Warn("upload without file: %v", err)
		respondError(c, errors.InvalidInput("no file uploaded in form field \"file\""))
		return
	}
	defer file.Close()

	if header.Size > s.options.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file size (%.1f MB) exceeds the %d MB limit",
				float64(header.Size)/(1<<20), s.options.MaxUploadBytes>>20),
			"code": errors.CodeInvalidInput,
		})
		return
	}

	filename := filepath.Base(header.Filename)
	if !hasValidExtension(filename) {
		respondError(c, errors.InvalidInput("only Excel (.xlsx, .xlsm) and CSV (.csv) files are allowed"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, errors.Wrap(err, "failed to read upload"))
		return
	}

	generation := s.state.BeginLoad(filename)
	rows, loadErr := s.loader.Load(c.Request.Context(), filename, data)
	if !s.state.CompleteLoad(generation, rows, loadErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "upload superseded by a newer one",
			"code":  "SUPERSEDED",
		})
		return
	}
	if loadErr != nil {
		respondError(c, loadErr)
		return
	}

	c.JSON(http.StatusOK, newDatasetInfo(s.state.View()))
}

// handleDatasetStatus returns the load status and shape of the dataset
func (s *Server) handleDatasetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, newDatasetInfo(s.state.View()))
}

// handleDatasetReset drops the dataset and filters
func (s *Server) handleDatasetReset(c *gin.Context) {
	s.state.Reset()
	c.JSON(http.StatusOK, newDatasetInfo(s.state.View()))
}

func hasValidExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, valid := range validExtensions {
		if ext == valid {
			return true
		}
	}
	return false
}
