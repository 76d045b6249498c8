package store

// Statements are written with named or ? placeholders and rebound for the driver.
const (
	songTableInsert = `INSERT INTO songs (song_id, title, artist_id, year, duration)
		VALUES (:song_id, :title, :artist_id, :year, :duration)
		ON CONFLICT (song_id) DO NOTHING`

	artistTableInsert = `INSERT INTO artists (artist_id, name, location, latitude, longitude)
		VALUES (:artist_id, :name, :location, :latitude, :longitude)
		ON CONFLICT (artist_id) DO UPDATE SET
			name = excluded.name,
			location = excluded.location,
			latitude = excluded.latitude,
			longitude = excluded.longitude`

	timeTableInsert = `INSERT INTO time (start_time, hour, day, week, month, year, weekday)
		VALUES (:start_time, :hour, :day, :week, :month, :year, :weekday)
		ON CONFLICT (start_time) DO NOTHING`

	userTableInsert = `INSERT INTO users (user_id, first_name, last_name, gender, level)
		VALUES (:user_id, :first_name, :last_name, :gender, :level)
		ON CONFLICT (user_id) DO UPDATE SET level = excluded.level`

	songplayTableInsert = `INSERT INTO songplays (log_index, start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)
		VALUES (:log_index, :start_time, :user_id, :level, :song_id, :artist_id, :session_id, :location, :user_agent)`

	songSelect = `SELECT s.song_id, a.artist_id
		FROM songs s
		JOIN artists a ON s.artist_id = a.artist_id
		WHERE s.title = ? AND a.name = ? AND s.duration = ?
		LIMIT 1`
)

// Statement names used in row error reports.
const (
	StmtSongInsert     = "song_table_insert"
	StmtArtistInsert   = "artist_table_insert"
	StmtTimeInsert     = "time_table_insert"
	StmtUserInsert     = "user_table_insert"
	StmtSongplayInsert = "songplay_table_insert"
)
