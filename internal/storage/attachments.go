// Package storage keeps member attachments (training-plan PDFs) on
// local disk, addressed by a generated reference stored on the member
// row.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type AttachmentStore struct {
	dir string
}

func NewAttachmentStore(dir string) (*AttachmentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create attachment dir: %w", err)
	}
	return &AttachmentStore{dir: dir}, nil
}

// Save stores the uploaded content under "{memberID}_{name}" and
// returns that reference. The original filename is flattened to its
// base and stripped of path separators first.
func (s *AttachmentStore) Save(memberID, filename string, r io.Reader) (string, error) {
	ref := memberID + "_" + sanitizeFilename(filename)
	path := filepath.Join(s.dir, ref)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create attachment file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write attachment file: %w", err)
	}

	return ref, nil
}

// Open returns the stored file for a reference. The caller closes it.
func (s *AttachmentStore) Open(ref string) (*os.File, error) {
	// The ref is re-flattened so a tampered value cannot escape the
	// attachment directory.
	return os.Open(filepath.Join(s.dir, filepath.Base(ref)))
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, string(os.PathSeparator), "_")
	base = strings.ReplaceAll(base, "..", "_")
	if base == "" || base == "." {
		base = "allegato"
	}
	return base
}
