package content

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"controls", "bell\a here\x00\x1b[0m", "bell here[0m"},
		{"keeps tabs", "col1\tcol2\n", "col1\tcol2\n"},
		{"nfc", "cafe\u0301", "caf\u00e9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func writeWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Term"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Definition"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Osmosis"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "Diffusion of water across a membrane"))

	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "A1", "Cells are the unit of life."))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadSpreadsheet(t *testing.T) {
	text, err := ReadSpreadsheet(bytes.NewReader(writeWorkbook(t)))
	require.NoError(t, err)
	assert.Equal(t, "Term\tDefinition\nOsmosis\tDiffusion of water across a membrane\n\nCells are the unit of life.", text)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "intro.txt")
	require.NoError(t, os.WriteFile(txt, []byte("Hello\r\nworld"), 0o644))
	text, err := LoadFile(txt)
	require.NoError(t, err)
	assert.Equal(t, "Hello\nworld", text)

	xlsx := filepath.Join(dir, "terms.xlsx")
	require.NoError(t, os.WriteFile(xlsx, writeWorkbook(t), 0o644))
	text, err = LoadFile(xlsx)
	require.NoError(t, err)
	assert.Contains(t, text, "Osmosis\tDiffusion")

	_, err = LoadFile(filepath.Join(dir, "slides.pdf"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("Part one."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("Part two."), 0o644))
	manifest := filepath.Join(dir, "course.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte("id: bio-101\ntitle: Biology\nfiles:\n  - a.md\n  - b.txt\n"), 0o644))

	require.True(t, IsManifest(manifest))
	m, err := LoadManifest(manifest)
	require.NoError(t, err)
	assert.Equal(t, "bio-101", m.Course().ID)
	assert.Equal(t, "Biology", m.Course().Title)

	text, err := m.Text()
	require.NoError(t, err)
	assert.Equal(t, "Part one.\n\nPart two.", text)
}

func TestManifest_Invalid(t *testing.T) {
	dir := t.TempDir()
	noID := filepath.Join(dir, "noid.yaml")
	require.NoError(t, os.WriteFile(noID, []byte("title: X\nfiles: [a.txt]\n"), 0o644))
	_, err := LoadManifest(noID)
	assert.Error(t, err)

	noFiles := filepath.Join(dir, "nofiles.yml")
	require.NoError(t, os.WriteFile(noFiles, []byte("id: x\n"), 0o644))
	_, err = LoadManifest(noFiles)
	assert.Error(t, err)
}
