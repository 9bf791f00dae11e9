package upload

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HealthMate/internal/cli/model"
)

func TestFromPath_SniffsType(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "noext")
	require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4\n%âãÏÓ\n"), 0o600))

	f, err := FromPath(p, "")
	require.NoError(t, err)
	assert.Equal(t, "noext", f.Name())
	assert.Equal(t, "application/pdf", f.ContentType())
	assert.Equal(t, model.KindPDF, IntendedKind(f))

	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	assert.Contains(t, string(b), "%PDF")
}

func TestFromPath_DeclaredTypeWins(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.txt")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o600))
	f, err := FromPath(p, "Image/PNG; q=1")
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType())
}

func TestFromPath_Errors(t *testing.T) {
	_, err := FromPath(filepath.Join(t.TempDir(), "missing.pdf"), "")
	assert.Error(t, err)
	_, err = FromPath(t.TempDir(), "")
	assert.Error(t, err)
}

func TestIntendedKind(t *testing.T) {
	assert.Equal(t, model.KindPDF, IntendedKind(FromBytes("REPORT.PDF", "application/octet-stream", nil)))
	assert.Equal(t, model.KindPDF, IntendedKind(FromBytes("scan", "application/pdf", nil)))
	assert.Equal(t, model.KindImage, IntendedKind(FromBytes("scan.png", "image/png", nil)))
}

func TestReconcileKind(t *testing.T) {
	assert.Equal(t, model.KindPDF, ReconcileKind(model.KindImage, "pdf"))
	assert.Equal(t, model.KindPDF, ReconcileKind(model.KindImage, " PDF "))
	assert.Equal(t, model.KindPDF, ReconcileKind(model.KindPDF, "png"))
	assert.Equal(t, model.KindImage, ReconcileKind(model.KindImage, "jpg"))
	assert.Equal(t, model.KindImage, ReconcileKind(model.KindImage, ""))
}

func TestCandidateValidate_DefaultsCategory(t *testing.T) {
	c := Candidate{File: FromBytes("a.png", "image/png", nil), Title: " CBC ", DateTaken: "2024-01-01", Category: ""}
	require.NoError(t, c.Validate())
	assert.Equal(t, "lab", c.Category)
	assert.Equal(t, "CBC", c.Title)

	c.Category = "Imaging"
	require.NoError(t, c.Validate())
	assert.Equal(t, "imaging", c.Category)
}

func TestCandidateValidate_CollectsProblems(t *testing.T) {
	c := Candidate{}
	err := c.Validate()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Problems, 2)
	assert.Contains(t, err.Error(), "title and date are required")
}
