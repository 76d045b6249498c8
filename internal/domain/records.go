package domain

import (
	"database/sql"

	"github.com/goccy/go-json"

	"github.com/cesargomez89/sparkify/internal/constants"
)

// SongRecord is one line of a song-metadata file.
// Pointer fields distinguish an absent or null key from a zero value.
type SongRecord struct {
	NumSongs        *int     `json:"num_songs"`
	SongID          *string  `json:"song_id"`
	Title           *string  `json:"title"`
	ArtistID        *string  `json:"artist_id"`
	ArtistName      *string  `json:"artist_name"`
	ArtistLocation  *string  `json:"artist_location"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
	Year            *int     `json:"year"`
	Duration        *float64 `json:"duration"`
}

// MissingField returns the JSON name of the first required field that is absent, or "".
func (r *SongRecord) MissingField() string {
	switch {
	case r.SongID == nil:
		return "song_id"
	case r.Title == nil:
		return "title"
	case r.ArtistID == nil:
		return "artist_id"
	case r.ArtistName == nil:
		return "artist_name"
	case r.Year == nil:
		return "year"
	case r.Duration == nil:
		return "duration"
	}
	return ""
}

// Song returns the songs row. Call only after MissingField reports "".
func (r *SongRecord) Song() Song {
	return Song{
		SongID:   *r.SongID,
		Title:    *r.Title,
		ArtistID: *r.ArtistID,
		Year:     *r.Year,
		Duration: *r.Duration,
	}
}

// Artist returns the artists row. Call only after MissingField reports "".
func (r *SongRecord) Artist() Artist {
	return Artist{
		ArtistID:  *r.ArtistID,
		Name:      *r.ArtistName,
		Location:  nullString(r.ArtistLocation),
		Latitude:  nullFloat(r.ArtistLatitude),
		Longitude: nullFloat(r.ArtistLongitude),
	}
}

// LogEvent is one line of an event-log file. Only the fields the ETL reads are decoded.
type LogEvent struct {
	Page      string      `json:"page"`
	Ts        *int64      `json:"ts"`
	UserID    FlexibleInt `json:"userId"`
	FirstName *string     `json:"firstName"`
	LastName  *string     `json:"lastName"`
	Gender    *string     `json:"gender"`
	Level     *string     `json:"level"`
	SessionID *int64      `json:"sessionId"`
	Location  *string     `json:"location"`
	UserAgent *string     `json:"userAgent"`
	Song      *string     `json:"song"`
	Artist    *string     `json:"artist"`
	Length    *float64    `json:"length"`
}

// IsPlayEvent reports whether a raw log line records a song being played.
// Only "page" is looked at, so other events are never held to the play-event shape.
func IsPlayEvent(raw []byte) bool {
	var head struct {
		Page json.RawMessage `json:"page"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return false
	}
	var page string
	if err := json.Unmarshal(head.Page, &page); err != nil {
		return false
	}
	return page == constants.PlayEventPage
}

// MissingField returns the first field a play event needs that is absent, or "".
func (e *LogEvent) MissingField() string {
	switch {
	case e.Ts == nil:
		return "ts"
	case !e.UserID.Valid:
		return "userId"
	case e.Level == nil:
		return "level"
	case e.SessionID == nil:
		return "sessionId"
	case e.Song == nil:
		return "song"
	case e.Artist == nil:
		return "artist"
	case e.Length == nil:
		return "length"
	}
	return ""
}

// User returns the users row for a validated play event.
func (e *LogEvent) User() User {
	return User{
		UserID:    e.UserID.Int64,
		FirstName: nullString(e.FirstName),
		LastName:  nullString(e.LastName),
		Gender:    nullString(e.Gender),
		Level:     *e.Level,
	}
}

// Songplay returns the fact row for a validated play event; song and artist ids are left null.
func (e *LogEvent) Songplay(index int) Songplay {
	return Songplay{
		Index:     index,
		StartTime: *e.Ts,
		UserID:    e.UserID.Int64,
		Level:     *e.Level,
		SessionID: *e.SessionID,
		Location:  nullString(e.Location),
		UserAgent: nullString(e.UserAgent),
	}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
