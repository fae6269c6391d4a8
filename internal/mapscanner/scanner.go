// Package mapscanner discovers Tiled JSON maps in a directory tree.
package mapscanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"chosenoffset.com/tiledmap/internal/maploader"
)

// MapEntry represents a discoverable map file
type MapEntry struct {
	Name string // Registry name (file name without extension)
	Path string // File path, joined to the scanned directory
}

// ScanDirectory lists the JSON files under dataPath, sorted by path.
// Hidden directories are skipped.
func ScanDirectory(dataPath string) ([]MapEntry, error) {
	info, err := os.Stat(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read map directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dataPath)
	}

	var maps []MapEntry
	err = filepath.WalkDir(dataPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dataPath && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), ".json") {
			maps = append(maps, MapEntry{
				Name: strings.TrimSuffix(name, filepath.Ext(name)),
				Path: path,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan map directory: %w", err)
	}

	sort.Slice(maps, func(i, j int) bool { return maps[i].Path < maps[j].Path })
	return maps, nil
}

// RegisterAll loads every entry into reg. Files that are not valid maps
// are logged and skipped; their errors are joined into the result.
func RegisterAll(reg *maploader.Registry, entries []MapEntry, log *zap.Logger) ([]string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var names []string
	var errs []error
	for _, e := range entries {
		m, err := reg.LoadFile(e.Path)
		if err != nil {
			log.Warn("skipping map", zap.String("path", e.Path), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		log.Debug("registered map", zap.String("name", m.Name), zap.String("path", e.Path))
		names = append(names, m.Name)
	}
	return names, errors.Join(errs...)
}
