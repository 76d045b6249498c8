// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

// Application defaults. Config field defaults live in the cleanenv tags of internal/config.
const (
	DefaultDBName   = "sparkifydb"
	DefaultSongRoot = "data/song_data"
	DefaultLogRoot  = "data/log_data"
	DefaultEnvFile  = ".env"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Input files
const (
	DataFileExt   = ".json"
	PlayEventPage = "NextSong"
)

// Database
const (
	SongsTable     = "songs"
	ArtistsTable   = "artists"
	TimeTable      = "time"
	UsersTable     = "users"
	SongplaysTable = "songplays"
)

// Tables lists every table of the star schema, dimensions first.
var Tables = []string{SongsTable, ArtistsTable, TimeTable, UsersTable, SongplaysTable}

// Log settings
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatText = "text"
	LogFormatJSON = "json"
)
