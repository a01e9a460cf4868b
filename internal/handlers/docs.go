package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/russross/blackfriday/v2"
)

type DocsHandler struct {
	root string
}

// NewDocsHandler serves Markdown documents found under root
func NewDocsHandler(root string) *DocsHandler {
	return &DocsHandler{root: root}
}

// Only these user-facing documents are served
var allowedDocs = map[string]string{
	"README": "README.md",
	"IMPORT": "docs/IMPORT.md",
}

// ServeMarkdownAsHTML renders a repository Markdown document as HTML
func (h *DocsHandler) ServeMarkdownAsHTML(c *gin.Context) {
	docName := c.Param("doc")
	if docName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document name required"})
		return
	}

	fileName, exists := allowedDocs[docName]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	content, err := os.ReadFile(filepath.Join(h.root, fileName))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	extensions := blackfriday.CommonExtensions | blackfriday.AutoHeadingIDs
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags,
	})
	htmlContent := blackfriday.Run(content,
		blackfriday.WithRenderer(renderer), blackfriday.WithExtensions(extensions))

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, "<!DOCTYPE html><html><head><title>"+docName+
		"</title><meta charset=\"utf-8\"></head><body>"+string(htmlContent)+"</body></html>")
}
