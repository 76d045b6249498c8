package extract

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/cesargomez89/sparkify/internal/domain"
)

// SongResolver finds the song and artist ids of a played track.
// found is false when no song matches title, artist name and duration exactly.
type SongResolver interface {
	ResolveSong(ctx context.Context, title, artist string, duration float64) (songID, artistID string, found bool, err error)
}

// LogFile reads an event-log file and derives the time, users and songplays rows
// of its play events. Other events only need to be valid JSON and are skipped.
// Users are deduplicated on the whole
// tuple; times and songplays keep one row per play event.
func LogFile(ctx context.Context, path string, resolver SongResolver) (domain.LogRows, error) {
	var (
		rows  domain.LogRows
		seen  = make(map[domain.User]struct{})
		plays []*domain.LogEvent
		index []int
	)

	err := eachLine(path, func(raw *json.RawMessage, i, line int) (bool, error) {
		if !domain.IsPlayEvent(*raw) {
			return true, nil
		}
		ev := new(domain.LogEvent)
		if err := json.Unmarshal(*raw, ev); err != nil {
			return false, &domain.MalformedRecordError{Path: path, Line: line, Err: err}
		}
		if field := ev.MissingField(); field != "" {
			return false, &domain.MalformedRecordError{Path: path, Line: line, Field: field}
		}
		plays = append(plays, ev)
		index = append(index, i)
		return true, nil
	})
	if err != nil {
		return domain.LogRows{}, err
	}

	rows.Times = make([]domain.Time, 0, len(plays))
	for _, ev := range plays {
		rows.Times = append(rows.Times, domain.NewTime(*ev.Ts))
	}

	for _, ev := range plays {
		u := ev.User()
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		rows.Users = append(rows.Users, u)
	}

	rows.Songplays = make([]domain.Songplay, 0, len(plays))
	for n, ev := range plays {
		sp := ev.Songplay(index[n])
		songID, artistID, found, err := resolver.ResolveSong(ctx, *ev.Song, *ev.Artist, *ev.Length)
		if err != nil {
			return domain.LogRows{}, fmt.Errorf("failed to resolve song for %s record %d: %w", path, index[n], err)
		}
		if found {
			sp.SongID = sql.NullString{String: songID, Valid: true}
			sp.ArtistID = sql.NullString{String: artistID, Valid: true}
		}
		rows.Songplays = append(rows.Songplays, sp)
	}

	return rows, nil
}
