package service

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const defaultFileType = "bin"

// LandedFile describes a file written by Lander.
type LandedFile struct {
	// StorageName is the generated name inside the landing directory.
	StorageName string
	// URL is the public path of the file.
	URL      string
	FileType string
	// FileName is the client supplied name, or StorageName when none was given.
	FileName string
	Size     int64
}

// Lander writes uploaded streams into a flat directory under random names.
type Lander struct {
	dir       string
	urlPrefix string
}

func NewLander(dir, urlPrefix string) *Lander {
	return &Lander{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}
}

func (l *Lander) Dir() string {
	return l.dir
}

// URLPrefix is the public path landed files are served under.
func (l *Lander) URLPrefix() string {
	return l.urlPrefix
}

// fileExt returns the lower-cased extension of name including the dot. A
// leading dot alone does not start an extension, so ".bashrc" has none.
func fileExt(name string) string {
	base := filepath.Base(name)
	trimmed := strings.TrimLeft(base, ".")
	if trimmed == "" {
		return ""
	}
	ext := strings.ToLower(filepath.Ext(trimmed))
	if ext == "." {
		return ""
	}
	return ext
}

// FileType is the lower-cased extension of name without the dot, or "bin".
func FileType(name string) string {
	ext := strings.TrimPrefix(fileExt(name), ".")
	if ext == "" {
		return defaultFileType
	}
	return ext
}

func newStorageName(filename string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + fileExt(filename)
}

// Land streams r into a temp file in the landing directory and renames it to
// its final name once fully written. The temp file never outlives a failure.
func (l *Lander) Land(r io.Reader, filename string) (*LandedFile, error) {
	if err := os.MkdirAll(l.dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload directory %q: %w", l.dir, err)
	}

	tmp, err := os.CreateTemp(l.dir, ".landing-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	landed := false
	defer func() {
		if !landed {
			os.Remove(tmpPath) //nolint:errcheck
		}
	}()

	n, werr := io.Copy(tmp, r)
	cerr := tmp.Close()
	if werr != nil {
		return nil, fmt.Errorf("write upload: %w", werr)
	}
	if cerr != nil {
		return nil, fmt.Errorf("flush upload: %w", cerr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return nil, fmt.Errorf("chmod upload: %w", err)
	}

	storageName := newStorageName(filename)
	if err := os.Rename(tmpPath, filepath.Join(l.dir, storageName)); err != nil {
		return nil, fmt.Errorf("rename upload to %q: %w", storageName, err)
	}
	landed = true

	fileName := filename
	if fileName == "" {
		fileName = storageName
	}
	return &LandedFile{
		StorageName: storageName,
		URL:         path.Join(l.urlPrefix, storageName),
		FileType:    FileType(filename),
		FileName:    fileName,
		Size:        n,
	}, nil
}

// Remove deletes a landed file. A missing file is not an error.
func (l *Lander) Remove(storageName string) error {
	if storageName == "" || storageName != filepath.Base(storageName) || strings.HasPrefix(storageName, ".") {
		return fmt.Errorf("invalid storage name %q", storageName)
	}
	if err := os.Remove(filepath.Join(l.dir, storageName)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// StorageNameFromURL maps a public URL produced by Land back to its storage name.
func (l *Lander) StorageNameFromURL(url string) (string, bool) {
	prefix := l.urlPrefix + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(url, prefix)
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}
