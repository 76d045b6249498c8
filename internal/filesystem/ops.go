// Package filesystem finds the input data files of an ETL run.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
)

var errStop = errors.New("stop walk")

// Files returns the absolute paths of all files under root whose name ends in ext,
// in directory walk order. Hidden files are skipped, the same as a shell glob.
// The sequence walks the tree again every time it is ranged over. A traversal
// error is yielded once and ends the sequence.
func Files(root, ext string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			yield("", fmt.Errorf("failed to resolve %s: %w", root, err))
			return
		}

		err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !Matches(d.Name(), ext) {
				return nil
			}
			if !yield(path, nil) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield("", fmt.Errorf("failed to walk %s: %w", root, err))
		}
	}
}

// Matches reports whether name would be picked up by the glob "*"+ext.
func Matches(name, ext string) bool {
	return !strings.HasPrefix(name, ".") && strings.HasSuffix(name, ext) && len(name) > len(ext)
}

// Collect drains seq into a slice, stopping at the first error.
func Collect(seq iter.Seq2[string, error]) ([]string, error) {
	var paths []string
	for path, err := range seq {
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
