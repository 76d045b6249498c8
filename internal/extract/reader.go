// Package extract turns song-metadata and event-log files into table rows.
package extract

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/cesargomez89/sparkify/internal/domain"
)

const maxLineSize = 4 * 1024 * 1024

// eachLine decodes every non-blank line of a newline-delimited JSON file into a fresh T
// and hands it to fn with its 0-based record position and 1-based line number.
// Returning false from fn stops the scan.
func eachLine[T any](path string, fn func(rec *T, index, line int) (bool, error)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line, index := 0, 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		rec := new(T)
		if err := json.Unmarshal(raw, rec); err != nil {
			return &domain.MalformedRecordError{Path: path, Line: line, Err: err}
		}

		more, err := fn(rec, index, line)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		index++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}
