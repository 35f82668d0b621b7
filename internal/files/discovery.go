package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ExportPrefix is the file name prefix of every customer export
const ExportPrefix = "customers_export_"

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery lists files in a directory
type Discovery struct {
	dir string
}

// NewDiscovery creates a discovery rooted at dir
func NewDiscovery(dir string) *Discovery {
	return &Discovery{dir: dir}
}

// FindExports returns previously written customer exports, oldest first.
// A missing directory yields no files.
func (d *Discovery) FindExports() ([]FileInfo, error) {
	return d.FindFiles(func(name string) bool {
		return strings.HasPrefix(name, ExportPrefix)
	})
}

// FindFiles returns regular files whose name satisfies match, oldest first
func (d *Discovery) FindFiles(match func(name string) bool) ([]FileInfo, error) {
	entries, err := os.ReadDir(d.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", d.dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !match(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(d.dir, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})

	return files, nil
}

// GetLatestFile returns the most recently modified file
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, f := range files[1:] {
		if f.ModTime.After(latest.ModTime) {
			latest = f
		}
	}
	return latest, true
}
