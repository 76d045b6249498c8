package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/sparkify/internal/constants"
	"github.com/cesargomez89/sparkify/internal/domain"
	"github.com/cesargomez89/sparkify/internal/logger"
	"github.com/cesargomez89/sparkify/internal/store"
)

func setupTestDB(t *testing.T) *store.DB {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(ctx, constants.DriverSQLite, filepath.Join(t.TempDir(), "test_app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.CreateSchema(ctx))
	return db
}

func writeFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func count(t *testing.T, db *store.DB, table string) int {
	t.Helper()
	n, err := db.Count(context.Background(), table)
	require.NoError(t, err)
	return n
}

const (
	songS1 = `{"num_songs":1,"song_id":"S1","title":"T","artist_id":"A1","artist_name":"N","artist_location":"L","artist_latitude":1.0,"artist_longitude":2.0,"year":2000,"duration":180.0}`
	songS2 = `{"num_songs":1,"song_id":"S2","title":"Other","artist_id":"A2","artist_name":"M","artist_location":"","artist_latitude":null,"artist_longitude":null,"year":0,"duration":99.5}`

	playMatch   = `{"artist":"N","auth":"Logged In","firstName":"Ann","gender":"F","itemInSession":0,"lastName":"A","length":180.0,"level":"free","location":"Here","method":"PUT","page":"NextSong","registration":1.5e12,"sessionId":1,"song":"T","status":200,"ts":1000,"userAgent":"UA","userId":"1"}`
	playNoMatch = `{"artist":"Nobody","auth":"Logged In","firstName":"Bob","gender":"M","itemInSession":1,"lastName":"B","length":12.0,"level":"paid","location":"There","method":"PUT","page":"NextSong","registration":1.5e12,"sessionId":2,"song":"Unknown","status":200,"ts":1000,"userAgent":"UA","userId":"2"}`
	homeEvent   = `{"artist":null,"auth":"Logged In","firstName":"Ann","gender":"F","itemInSession":2,"lastName":"A","length":null,"level":"free","location":"Here","method":"GET","page":"Home","registration":1.5e12,"sessionId":1,"song":null,"status":200,"ts":2000,"userAgent":"UA","userId":"1"}`
)

func setupData(t *testing.T) (songRoot, logRoot string) {
	t.Helper()
	root := t.TempDir()
	songRoot = filepath.Join(root, "song_data")
	logRoot = filepath.Join(root, "log_data")

	writeFile(t, filepath.Join(songRoot, "A", "A", "TRAAA1.json"), songS1)
	writeFile(t, filepath.Join(songRoot, "A", "B", "TRAAB1.json"), songS2)
	writeFile(t, filepath.Join(logRoot, "2018", "11", "2018-11-01-events.json"), playMatch, homeEvent, playNoMatch)
	return songRoot, logRoot
}

func TestPipeline_Run(t *testing.T) {
	db := setupTestDB(t)
	songRoot, logRoot := setupData(t)

	var out bytes.Buffer
	p := NewPipeline(db, logger.Discard(), &out)

	report, err := p.Run(context.Background(), songRoot, logRoot)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Files[songRoot])
	assert.Equal(t, 1, report.Files[logRoot])
	assert.Empty(t, report.Failures)

	assert.Equal(t, 2, count(t, db, constants.SongsTable))
	assert.Equal(t, 2, count(t, db, constants.ArtistsTable))
	assert.Equal(t, 1, count(t, db, constants.TimeTable), "two plays at the same timestamp collapse")
	assert.Equal(t, 2, count(t, db, constants.UsersTable))
	assert.Equal(t, 2, count(t, db, constants.SongplaysTable))

	var plays []domain.Songplay
	require.NoError(t, db.SelectContext(context.Background(), &plays, `SELECT log_index, start_time, user_id, level, song_id, artist_id, session_id, location, user_agent
		FROM songplays ORDER BY log_index`))
	require.Len(t, plays, 2)
	assert.Equal(t, 0, plays[0].Index)
	assert.Equal(t, "S1", plays[0].SongID.String)
	assert.Equal(t, "A1", plays[0].ArtistID.String)
	assert.Equal(t, 2, plays[1].Index)
	assert.False(t, plays[1].SongID.Valid)
	assert.False(t, plays[1].ArtistID.Valid)

	expected := "\n2 files found in " + songRoot + "\n" +
		"1/2 files processed.\n" +
		"2/2 files processed.\n" +
		"\n1 files found in " + logRoot + "\n" +
		"1/1 files processed.\n"
	assert.Equal(t, expected, out.String())
}

func TestPipeline_RerunDuplicatesOnlySongplays(t *testing.T) {
	db := setupTestDB(t)
	songRoot, logRoot := setupData(t)
	p := NewPipeline(db, logger.Discard(), &bytes.Buffer{})

	for range 2 {
		_, err := p.Run(context.Background(), songRoot, logRoot)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, count(t, db, constants.SongsTable))
	assert.Equal(t, 2, count(t, db, constants.ArtistsTable))
	assert.Equal(t, 1, count(t, db, constants.TimeTable))
	assert.Equal(t, 2, count(t, db, constants.UsersTable))
	// songplays have no natural key, a rerun appends them again
	assert.Equal(t, 4, count(t, db, constants.SongplaysTable))
}

func TestPipeline_MalformedFileAborts(t *testing.T) {
	db := setupTestDB(t)
	songRoot, logRoot := setupData(t)
	writeFile(t, filepath.Join(songRoot, "B", "TRBAD.json"), `{"song_id":"S3","title":"No artist"}`)

	var out bytes.Buffer
	p := NewPipeline(db, logger.Discard(), &out)

	report, err := p.Run(context.Background(), songRoot, logRoot)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedRecord)

	// files before the broken one stay committed; the log tree is never reached
	assert.Equal(t, 2, report.Files[songRoot])
	assert.Equal(t, 2, count(t, db, constants.SongsTable))
	assert.Zero(t, count(t, db, constants.SongplaysTable))
	assert.NotContains(t, out.String(), logRoot)
}

func TestPipeline_MissingRoot(t *testing.T) {
	db := setupTestDB(t)
	p := NewPipeline(db, logger.Discard(), &bytes.Buffer{})

	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "missing"), t.TempDir())
	assert.Error(t, err)
}

func TestPipeline_CancelledContext(t *testing.T) {
	db := setupTestDB(t)
	songRoot, logRoot := setupData(t)
	p := NewPipeline(db, logger.Discard(), &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, songRoot, logRoot)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, count(t, db, constants.SongsTable))
}

func TestPipeline_RowErrorsAreReportedAndFileCommits(t *testing.T) {
	db := setupTestDB(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "one.json"), "{}")

	var logs bytes.Buffer
	p := NewPipeline(db, logger.New(logger.Config{Level: "info", Format: "text", Output: &logs}), &bytes.Buffer{})

	n, res, err := p.ProcessData(context.Background(), root, func(ctx context.Context, tx *store.Tx, _ string) error {
		if err := tx.LoadTimes(ctx, []domain.Time{domain.NewTime(1000)}); err != nil {
			return err
		}
		if err := tx.LoadUsers(ctx, []domain.User{{UserID: 1, Level: "free"}}); err != nil {
			return err
		}
		return tx.LoadSongplays(ctx, []domain.Songplay{
			{Index: 0, StartTime: 1000, UserID: 404, Level: "free", SessionID: 1},
			{Index: 1, StartTime: 1000, UserID: 1, Level: "free", SessionID: 1},
		})
	})
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, constants.SongplaysTable, res.Failures[0].Table)
	assert.Contains(t, logs.String(), "Error in songplays table insert")

	assert.Equal(t, 1, count(t, db, constants.SongplaysTable))
	assert.Equal(t, 1, count(t, db, constants.UsersTable))
}

func TestNewPipeline_DefaultLogger(t *testing.T) {
	db := setupTestDB(t)
	songRoot, logRoot := setupData(t)

	p := NewPipeline(db, nil, &bytes.Buffer{})
	require.NotNil(t, p.Logger)

	_, err := p.Run(context.Background(), songRoot, logRoot)
	require.NoError(t, err)
}
