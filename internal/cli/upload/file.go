package upload

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"HealthMate/internal/cli/model"
)

// File is the locally selected file. Open may be called once per upload attempt.
type File interface {
	Name() string
	ContentType() string
	Open() (io.ReadCloser, error)
}

type diskFile struct {
	path        string
	contentType string
}

func (f diskFile) Name() string                 { return filepath.Base(f.path) }
func (f diskFile) ContentType() string          { return f.contentType }
func (f diskFile) Open() (io.ReadCloser, error) { return os.Open(f.path) }

// FromPath selects a file on disk. When contentType is empty it is sniffed from the content.
func FromPath(path, contentType string) (File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if contentType == "" {
		m, err := mimetype.DetectFile(path)
		if err != nil {
			return nil, fmt.Errorf("detect type of %s: %w", path, err)
		}
		contentType = m.String()
	}
	return diskFile{path: path, contentType: baseType(contentType)}, nil
}

type memFile struct {
	name        string
	contentType string
	data        []byte
}

func (f memFile) Name() string                 { return f.name }
func (f memFile) ContentType() string          { return f.contentType }
func (f memFile) Open() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(f.data)), nil }

// FromBytes wraps in-memory content. An empty contentType is sniffed from data.
func FromBytes(name, contentType string, data []byte) File {
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	return memFile{name: name, contentType: baseType(contentType), data: data}
}

// baseType drops parameters: "text/plain; charset=utf-8" -> "text/plain".
func baseType(ct string) string {
	ct, _, _ = strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}

// IntendedKind classifies by declared type or extension: pdf, otherwise image.
func IntendedKind(f File) model.Kind {
	if f.ContentType() == "application/pdf" || strings.HasSuffix(strings.ToLower(f.Name()), ".pdf") {
		return model.KindPDF
	}
	return model.KindImage
}

// ReconcileKind combines the intended kind with the format reported by the store.
// Either side saying pdf wins.
func ReconcileKind(intended model.Kind, storeFormat string) model.Kind {
	if intended == model.KindPDF || strings.EqualFold(strings.TrimSpace(storeFormat), "pdf") {
		return model.KindPDF
	}
	return model.KindImage
}
