package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentStore_SaveAndOpen(t *testing.T) {
	store, err := NewAttachmentStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Save("member1", "scheda.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "member1_scheda.pdf", ref)

	f, err := store.Open(ref)
	require.NoError(t, err)
	defer f.Close()

	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(content))
}

func TestAttachmentStore_SaveFlattensPath(t *testing.T) {
	dir := t.TempDir()
	store, err := NewAttachmentStore(dir)
	require.NoError(t, err)

	ref, err := store.Save("member1", "../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "member1_passwd", ref)

	_, err = os.Stat(filepath.Join(dir, ref))
	assert.NoError(t, err)
}

func TestAttachmentStore_OpenRejectsEscapingRef(t *testing.T) {
	dir := t.TempDir()
	store, err := NewAttachmentStore(dir)
	require.NoError(t, err)

	outside := filepath.Join(filepath.Dir(dir), "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))
	defer os.Remove(outside)

	_, err = store.Open("../outside.txt")
	assert.Error(t, err)
}

func TestAttachmentStore_OpenMissingRef(t *testing.T) {
	store, err := NewAttachmentStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("member1_missing.pdf")
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"scheda.pdf", "scheda.pdf"},
		{"/tmp/scheda.pdf", "scheda.pdf"},
		{"", "allegato"},
		{".", "allegato"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.input), "input %q", tt.input)
	}
}
