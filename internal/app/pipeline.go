package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/sparkify/internal/constants"
	"github.com/cesargomez89/sparkify/internal/extract"
	"github.com/cesargomez89/sparkify/internal/filesystem"
	"github.com/cesargomez89/sparkify/internal/logger"
	"github.com/cesargomez89/sparkify/internal/store"
)

// FileProcessor extracts the rows of one data file and loads them through tx.
type FileProcessor func(ctx context.Context, tx *store.Tx, path string) error

// Report summarizes a pipeline run.
type Report struct {
	RunID string
	// Files counts processed files per input root.
	Files map[string]int
	store.LoadResult
	Duration time.Duration
}

// Pipeline walks the song and log trees and loads every file, one transaction per file.
type Pipeline struct {
	Repo   *store.DB
	Logger *logger.Logger
	// Out receives the "files found" / "files processed" progress lines.
	Out io.Writer
}

// NewPipeline builds a pipeline. A nil log falls back to logger.Default.
func NewPipeline(repo *store.DB, log *logger.Logger, out io.Writer) *Pipeline {
	if log == nil {
		log = logger.Default()
	}
	return &Pipeline{Repo: repo, Logger: log.WithComponent("pipeline"), Out: out}
}

// Run loads every song file under songRoot, then every log file under logRoot.
// Songs go first so play events can be matched to them.
func (p *Pipeline) Run(ctx context.Context, songRoot, logRoot string) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID:      uuid.New().String(),
		Files:      make(map[string]int),
		LoadResult: store.LoadResult{Loaded: make(map[string]int)},
	}
	log := p.Logger.WithRun(report.RunID)
	log.Info("Run started", "song_root", songRoot, "log_root", logRoot, "driver", p.Repo.Driver())

	steps := []struct {
		root string
		fn   FileProcessor
	}{
		{songRoot, ProcessSongFile},
		{logRoot, ProcessLogFile},
	}

	for _, step := range steps {
		n, res, err := p.processData(ctx, log, step.root, step.fn)
		report.Files[step.root] += n
		report.Merge(res)
		if err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
	}

	report.Duration = time.Since(start)
	log.Info("Run finished",
		"song_files", report.Files[songRoot],
		"log_files", report.Files[logRoot],
		"row_errors", len(report.Failures),
		"duration", report.Duration,
	)
	return report, nil
}

// ProcessData loads every data file under root with fn.
// It returns the number of files committed and what was loaded.
func (p *Pipeline) ProcessData(ctx context.Context, root string, fn FileProcessor) (int, store.LoadResult, error) {
	return p.processData(ctx, p.Logger, root, fn)
}

func (p *Pipeline) processData(ctx context.Context, log *logger.Logger, root string, fn FileProcessor) (int, store.LoadResult, error) {
	total := store.LoadResult{Loaded: make(map[string]int)}

	files, err := filesystem.Collect(filesystem.Files(root, constants.DataFileExt))
	if err != nil {
		return 0, total, err
	}

	fmt.Fprintf(p.Out, "\n%d files found in %s\n", len(files), root)

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return i, total, err
		}

		res, err := p.Repo.RunInTx(ctx, func(tx *store.Tx) error {
			return fn(ctx, tx, path)
		})
		fileLog := log.WithFile(path)
		for _, f := range res.Failures {
			fileLog.Error(fmt.Sprintf("Error in %s table insert", f.Table),
				"statement", f.Statement,
				"key", f.Key,
				"error", f.Err,
			)
		}
		if err != nil {
			return i, total, fmt.Errorf("failed to process %s: %w", path, err)
		}
		total.Merge(res)

		fileLog.Debug("File loaded", "rows", res.Loaded, "row_errors", len(res.Failures))
		fmt.Fprintf(p.Out, "%d/%d files processed.\n", i+1, len(files))
	}

	return len(files), total, nil
}

// ProcessSongFile loads the song and artist of one song-metadata file.
func ProcessSongFile(ctx context.Context, tx *store.Tx, path string) error {
	song, artist, err := extract.SongFile(path)
	if err != nil {
		return err
	}
	if err := tx.LoadSong(ctx, song); err != nil {
		return err
	}
	return tx.LoadArtist(ctx, artist)
}

// ProcessLogFile loads the time, users and songplays rows of one event-log file.
func ProcessLogFile(ctx context.Context, tx *store.Tx, path string) error {
	rows, err := extract.LogFile(ctx, path, tx)
	if err != nil {
		return err
	}
	if err := tx.LoadTimes(ctx, rows.Times); err != nil {
		return err
	}
	if err := tx.LoadUsers(ctx, rows.Users); err != nil {
		return err
	}
	return tx.LoadSongplays(ctx, rows.Songplays)
}
