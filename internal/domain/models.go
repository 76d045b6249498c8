package domain

import (
	"database/sql"
	"time"
)

// Song is a row of the songs dimension.
type Song struct {
	SongID   string  `db:"song_id"`
	Title    string  `db:"title"`
	ArtistID string  `db:"artist_id"`
	Year     int     `db:"year"`
	Duration float64 `db:"duration"`
}

// Artist is a row of the artists dimension.
type Artist struct {
	ArtistID  string          `db:"artist_id"`
	Name      string          `db:"name"`
	Location  sql.NullString  `db:"location"`
	Latitude  sql.NullFloat64 `db:"latitude"`
	Longitude sql.NullFloat64 `db:"longitude"`
}

// Time is a row of the time dimension, keyed by the epoch-millisecond timestamp.
type Time struct {
	StartTime int64 `db:"start_time"`
	Hour      int   `db:"hour"`
	Day       int   `db:"day"`
	Week      int   `db:"week"`
	Month     int   `db:"month"`
	Year      int   `db:"year"`
	Weekday   int   `db:"weekday"`
}

// NewTime decomposes an epoch-millisecond timestamp in UTC.
// Weekday counts from Monday = 0; Week is the ISO week of the year.
func NewTime(ts int64) Time {
	t := time.UnixMilli(ts).UTC()
	_, week := t.ISOWeek()
	return Time{
		StartTime: ts,
		Hour:      t.Hour(),
		Day:       t.Day(),
		Week:      week,
		Month:     int(t.Month()),
		Year:      t.Year(),
		Weekday:   (int(t.Weekday()) + 6) % 7,
	}
}

// User is a row of the users dimension. It is comparable so a batch can be
// deduplicated on the whole tuple.
type User struct {
	UserID    int64          `db:"user_id"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
	Gender    sql.NullString `db:"gender"`
	Level     string         `db:"level"`
}

// Songplay is a row of the songplays fact table.
// Index is the zero-based line position of the event inside its log file.
type Songplay struct {
	Index     int            `db:"log_index"`
	StartTime int64          `db:"start_time"`
	UserID    int64          `db:"user_id"`
	Level     string         `db:"level"`
	SongID    sql.NullString `db:"song_id"`
	ArtistID  sql.NullString `db:"artist_id"`
	SessionID int64          `db:"session_id"`
	Location  sql.NullString `db:"location"`
	UserAgent sql.NullString `db:"user_agent"`
}

// LogRows holds everything derived from one log file, in file order.
type LogRows struct {
	Times     []Time
	Users     []User
	Songplays []Songplay
}
