package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir finds importable files under root. root may also name a single
// file. Unreadable entries and files with other extensions are skipped.
func ScanDir(root string) ([]DiscoveredFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		df, ok := discover(root, info)
		if !ok {
			return nil, fmt.Errorf("%s: unsupported file type %q", root, filepath.Ext(root))
		}
		return []DiscoveredFile{df}, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // file vanished mid-walk
		}
		if df, ok := discover(path, fi); ok {
			files = append(files, df)
		}
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// FormatOf maps a file extension to its import format.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".jsonl", ".ndjson":
		return FormatJSONL, true
	case ".csv":
		return FormatCSV, true
	}
	return "", false
}

func discover(path string, info os.FileInfo) (DiscoveredFile, bool) {
	format, ok := FormatOf(path)
	if !ok {
		return DiscoveredFile{}, false
	}
	return DiscoveredFile{
		Path:    path,
		Format:  format,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, true
}
