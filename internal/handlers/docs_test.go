package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDocsRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("# Skien\n\nContent backend."), 0o644); err != nil {
		t.Fatalf("Failed to write test doc: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "docs"), 0o755); err != nil {
		t.Fatalf("Failed to create docs dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "docs", "IMPORT.md"), []byte("# Importing\n\nUpload a CSV."), 0o644); err != nil {
		t.Fatalf("Failed to write test doc: %v", err)
	}

	r := gin.New()
	r.GET("/docs/:doc", NewDocsHandler(root).ServeMarkdownAsHTML)
	return r
}

func TestServeMarkdownAsHTML(t *testing.T) {
	r := setupDocsRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/docs/README", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<h1")
	assert.Contains(t, w.Body.String(), "Skien")
}

func TestServeMarkdownImportGuide(t *testing.T) {
	r := setupDocsRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/docs/IMPORT", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Upload a CSV")
}

func TestServeMarkdownUnknownDoc(t *testing.T) {
	r := setupDocsRouter(t)

	// Internal files like design notes are not on the allow list
	for _, doc := range []string{"DESIGN", "missing"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/docs/"+doc, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}
