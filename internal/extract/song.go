package extract

import (
	"errors"

	"github.com/cesargomez89/sparkify/internal/domain"
)

var errNoRecords = errors.New("file has no records")

// SongFile reads a song-metadata file and returns the songs and artists rows taken
// from its first record. Song files hold a single record; later lines are ignored.
func SongFile(path string) (domain.Song, domain.Artist, error) {
	var (
		rec   *domain.SongRecord
		found int
	)

	err := eachLine(path, func(r *domain.SongRecord, _, line int) (bool, error) {
		if field := r.MissingField(); field != "" {
			return false, &domain.MalformedRecordError{Path: path, Line: line, Field: field}
		}
		rec, found = r, line
		return false, nil
	})
	if err != nil {
		return domain.Song{}, domain.Artist{}, err
	}
	if found == 0 {
		return domain.Song{}, domain.Artist{}, &domain.MalformedRecordError{Path: path, Err: errNoRecords}
	}

	return rec.Song(), rec.Artist(), nil
}
