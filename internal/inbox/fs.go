// Package inbox watches a drop folder for CSV catalog files, imports them and
// files them away under imported/ or failed/.
package inbox

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/starford/starsys/internal/checksum"
)

// Subdirectories processed files are moved into.
const (
	ImportedDir = "imported"
	FailedDir   = "failed"
)

// Entry describes a CSV file waiting in the inbox.
type Entry struct {
	Name     string
	Size     int64
	Checksum string
	ModTime  time.Time
}

// Provider is the inbox file-system abstraction.
type Provider interface {
	// List returns the *.csv files directly under the inbox root, by name.
	List() ([]Entry, error)
	// Read returns the raw bytes of a file (relative to the root).
	Read(name string) ([]byte, error)
	// Move renames oldPath to newPath (both relative to the root).
	Move(oldPath, newPath string) error
}

var _ Provider = (*FS)(nil)

// FS implements Provider on the local file system.
type FS struct {
	root string
}

// NewFS creates the inbox root and its archive subdirectories if needed.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("inbox: resolve root: %w", err)
	}
	for _, dir := range []string{abs, filepath.Join(abs, ImportedDir), filepath.Join(abs, FailedDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("inbox: mkdir %s: %w", dir, err)
		}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("inbox: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("inbox: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute inbox directory.
func (f *FS) Root() string { return f.root }

// safePath resolves rel against the root and rejects anything that escapes it.
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("inbox: empty path")
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("inbox: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("inbox: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("inbox: path escapes root: %s", rel)
	}
	return abs, nil
}

// IsCSV reports whether name looks like an importable file. Hidden and
// temporary files are skipped.
func IsCSV(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".csv")
}

// List returns the CSV files at the top level of the inbox.
func (f *FS) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("inbox: list: %w", err)
	}
	var out []Entry
	for _, d := range dirEntries {
		if d.IsDir() || !IsCSV(d.Name()) {
			continue
		}
		info, err := d.Info()
		if err != nil {
			return nil, fmt.Errorf("inbox: stat %s: %w", d.Name(), err)
		}
		data, err := os.ReadFile(filepath.Join(f.root, d.Name()))
		if err != nil {
			return nil, fmt.Errorf("inbox: read %s: %w", d.Name(), err)
		}
		out = append(out, Entry{
			Name:     d.Name(),
			Size:     info.Size(),
			Checksum: checksum.Sum(data),
			ModTime:  info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Read returns the raw bytes of an inbox file.
func (f *FS) Read(name string) ([]byte, error) {
	abs, err := f.safePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("inbox: read %s: %w", name, err)
	}
	return data, nil
}

// Move renames a file within the inbox, creating the target directory.
func (f *FS) Move(oldPath, newPath string) error {
	absOld, err := f.safePath(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.safePath(newPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absNew), 0o755); err != nil {
		return fmt.Errorf("inbox: mkdir for move: %w", err)
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("inbox: move: %w", err)
	}
	return nil
}

// ArchiveName is the name a processed file gets inside dir: the original
// stem plus the first 8 hex digits of its checksum, so re-dropped files with
// different content do not collide.
func ArchiveName(dir, name string, data []byte) string {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+"-"+checksum.Short(data)+filepath.Ext(base))
}
