package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/cesargomez89/sparkify/internal/constants"
	"github.com/cesargomez89/sparkify/internal/domain"
)

const rowSavepoint = "etl_row"

// LoadResult is what one file's transaction did: rows written per table and
// the rows that failed.
type LoadResult struct {
	Loaded   map[string]int
	Failures []*domain.RowError
}

// Merge adds other into r.
func (r *LoadResult) Merge(other LoadResult) {
	if r.Loaded == nil {
		r.Loaded = make(map[string]int)
	}
	for table, n := range other.Loaded {
		r.Loaded[table] += n
	}
	r.Failures = append(r.Failures, other.Failures...)
}

// Tx loads one file's rows. Every row statement runs in its own savepoint, so a
// failing row is undone on its own and the rest of the file still commits.
type Tx struct {
	tx     *sqlx.Tx
	result LoadResult
}

// Begin starts the transaction for one file.
func (db *DB) Begin(ctx context.Context) (*Tx, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx, result: LoadResult{Loaded: make(map[string]int)}}, nil
}

// RunInTx runs fn in a transaction and commits it. The transaction is rolled back
// if fn or the commit fails.
func (db *DB) RunInTx(ctx context.Context, fn func(tx *Tx) error) (LoadResult, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return LoadResult{}, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return tx.Result(), err
	}
	if err := tx.Commit(); err != nil {
		return tx.Result(), err
	}
	return tx.Result(), nil
}

func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// Result returns the rows loaded and the row failures seen so far.
func (t *Tx) Result() LoadResult {
	return t.result
}

func (t *Tx) LoadSong(ctx context.Context, song domain.Song) error {
	return t.execRow(ctx, constants.SongsTable, StmtSongInsert, song.SongID, songTableInsert, song)
}

func (t *Tx) LoadArtist(ctx context.Context, artist domain.Artist) error {
	return t.execRow(ctx, constants.ArtistsTable, StmtArtistInsert, artist.ArtistID, artistTableInsert, artist)
}

func (t *Tx) LoadTimes(ctx context.Context, times []domain.Time) error {
	for _, tm := range times {
		key := strconv.FormatInt(tm.StartTime, 10)
		if err := t.execRow(ctx, constants.TimeTable, StmtTimeInsert, key, timeTableInsert, tm); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tx) LoadUsers(ctx context.Context, users []domain.User) error {
	for _, u := range users {
		key := strconv.FormatInt(u.UserID, 10)
		if err := t.execRow(ctx, constants.UsersTable, StmtUserInsert, key, userTableInsert, u); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tx) LoadSongplays(ctx context.Context, plays []domain.Songplay) error {
	for _, sp := range plays {
		key := strconv.Itoa(sp.Index)
		if err := t.execRow(ctx, constants.SongplaysTable, StmtSongplayInsert, key, songplayTableInsert, sp); err != nil {
			return err
		}
	}
	return nil
}

// ResolveSong looks up the song and artist ids of a song by exact title, artist
// name and duration.
func (t *Tx) ResolveSong(ctx context.Context, title, artist string, duration float64) (string, string, bool, error) {
	var row struct {
		SongID   string `db:"song_id"`
		ArtistID string `db:"artist_id"`
	}
	err := t.tx.GetContext(ctx, &row, t.tx.Rebind(songSelect), title, artist, duration)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("failed to select song: %w", err)
	}
	return row.SongID, row.ArtistID, true, nil
}

// execRow runs one insert. A statement failure becomes a RowError on the result;
// only failures of the savepoint bookkeeping itself are returned.
func (t *Tx) execRow(ctx context.Context, table, stmt, key, query string, arg any) error {
	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT "+rowSavepoint); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	if _, err := t.tx.NamedExecContext(ctx, query, arg); err != nil {
		if _, rbErr := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+rowSavepoint); rbErr != nil {
			return fmt.Errorf("failed to roll back %s row %s: %w", table, key, errors.Join(err, rbErr))
		}
		t.result.Failures = append(t.result.Failures, &domain.RowError{
			Table:     table,
			Statement: stmt,
			Key:       key,
			Err:       err,
		})
	} else {
		t.result.Loaded[table]++
	}

	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+rowSavepoint); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}
