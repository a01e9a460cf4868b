package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxUploadSize is the largest accepted CSV upload in bytes
const MaxUploadSize = 16 << 20

// UploadResult describes a saved upload and a first look at its contents
type UploadResult struct {
	Filename   string     `json:"filename"`
	Header     []string   `json:"header"`
	SampleRows [][]string `json:"sample_rows"`
	RowCount   int        `json:"row_count"`
}

// SaveUpload stores a CSV upload under the upload directory and parses its
// header, up to five sample rows and the total data row count. Only .csv
// files up to MaxUploadSize are accepted.
func (im *Importer) SaveUpload(src io.Reader, originalName string, size int64) (*UploadResult, error) {
	if !strings.EqualFold(filepath.Ext(originalName), ".csv") {
		return nil, fmt.Errorf("only .csv files are accepted")
	}
	if size > MaxUploadSize {
		return nil, fmt.Errorf("file too large (max %d MB)", MaxUploadSize>>20)
	}

	if err := os.MkdirAll(im.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s",
		time.Now().Format("20060102_150405"),
		uuid.New().String(),
		sanitizeFilename(originalName))
	path := filepath.Join(im.uploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	written, err := io.Copy(dst, io.LimitReader(src, MaxUploadSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if written > MaxUploadSize {
		os.Remove(path)
		return nil, fmt.Errorf("file too large (max %d MB)", MaxUploadSize>>20)
	}

	result, err := im.inspectFile(name)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	return result, nil
}

func (im *Importer) inspectFile(filename string) (*UploadResult, error) {
	f, err := im.open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV header: %w", err)
	}

	result := &UploadResult{Filename: filename, Header: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV row %d: %w", result.RowCount+1, err)
		}
		result.RowCount++
		if len(result.SampleRows) < 5 {
			result.SampleRows = append(result.SampleRows, record)
		}
	}
	return result, nil
}

// open resolves a stored upload by its bare filename, refusing names that
// escape the upload directory
func (im *Importer) open(filename string) (*os.File, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return nil, fmt.Errorf("invalid filename")
	}
	f, err := os.Open(filepath.Join(im.uploadDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("uploaded file not found: %s", filename)
		}
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	return f, nil
}

// Remove deletes a stored upload. Best effort: a missing file is not an
// error.
func (im *Importer) Remove(filename string) {
	if filename == "" || filename != filepath.Base(filename) {
		return
	}
	os.Remove(filepath.Join(im.uploadDir, filename))
}

// sanitizeFilename keeps only characters safe in a stored filename
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "upload.csv"
	}
	return b.String()
}
