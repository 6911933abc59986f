package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/mapboxutil/internal/archive"
	"github.com/MeKo-Tech/mapboxutil/internal/imagery"
	"github.com/MeKo-Tech/mapboxutil/internal/mapbox"
	"github.com/MeKo-Tech/mapboxutil/internal/viewport"
	"github.com/MeKo-Tech/mapboxutil/internal/worker"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the static images listed in the config",
	Long: `Fetch a static image for every entry of the "maps" list in the config file.

Images are written to --output-dir as {name}.{ext}, or into a SQLite archive
with --format=archive.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntP("workers", "w", 0, "Number of parallel downloads (default: number of CPUs)")
	fetchCmd.Flags().Bool("progress", true, "Show progress bar")
	fetchCmd.Flags().Bool("allow-failures", false, "Exit successfully even if some images failed")
	fetchCmd.Flags().String("format", "folder", "Output format: folder or archive")
	fetchCmd.Flags().String("output-dir", "./maps", "Output directory for folder format")
	fetchCmd.Flags().String("output-file", "", "Archive path for archive format (e.g. maps.db)")
	fetchCmd.Flags().Bool("exact-size", false, "Resample images to the requested width and height")
	fetchCmd.Flags().Bool("cachebust", false, "Jitter centers slightly so the API does not return cached images")
	fetchCmd.Flags().StringSlice("only", nil, "Only fetch maps with these names")

	bindFlags(fetchCmd, []flagBinding{
		{"fetch.workers", "workers"},
		{"fetch.progress", "progress"},
		{"fetch.allow_failures", "allow-failures"},
		{"fetch.format", "format"},
		{"fetch.output_dir", "output-dir"},
		{"fetch.output_file", "output-file"},
		{"fetch.exact_size", "exact-size"},
		{"fetch.cachebust", "cachebust"},
		{"fetch.only", "only"},
	})
}

// fetchJob is a planned download.
type fetchJob struct {
	config   MapConfig
	viewport viewport.Result
	url      string
}

// imageSink stores fetched images.
type imageSink interface {
	Put(job fetchJob, data []byte) error
	Close() error
}

func runFetch(cmd *cobra.Command, args []string) error {
	workers := viper.GetInt("fetch.workers")
	showProgress := viper.GetBool("fetch.progress")
	allowFailures := viper.GetBool("fetch.allow_failures")
	format := viper.GetString("fetch.format")
	outputDir := viper.GetString("fetch.output_dir")
	outputFile := viper.GetString("fetch.output_file")
	exactSize := viper.GetBool("fetch.exact_size")
	cacheBust := viper.GetBool("fetch.cachebust")
	only := viper.GetStringSlice("fetch.only")

	if logger == nil {
		initLogging()
	}

	if format != "folder" && format != "archive" {
		return fmt.Errorf("invalid format %q: must be 'folder' or 'archive'", format)
	}
	if format == "archive" && outputFile == "" {
		return fmt.Errorf("--output-file is required when using --format=archive")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	maps, err := loadMaps()
	if err != nil {
		return err
	}
	maps = filterMaps(maps, only)
	if len(maps) == 0 {
		return fmt.Errorf("no maps configured (add a \"maps\" list to the config file)")
	}

	client := newClient()
	jobs, err := planJobs(client, maps, cacheBust, exactSize)
	if err != nil {
		return err
	}

	var sink imageSink
	if format == "archive" {
		sink, err = newArchiveSink(outputFile)
	} else {
		sink, err = newFolderSink(outputDir)
	}
	if err != nil {
		return err
	}
	defer sink.Close()

	logger.Info("Starting fetch",
		"maps", len(jobs),
		"workers", workers,
		"format", format,
		"exact_size", exactSize,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	byName := make(map[string]fetchJob, len(jobs))
	tasks := make([]worker.Task, 0, len(jobs))
	for _, j := range jobs {
		byName[j.config.Name] = j
		tasks = append(tasks, worker.Task{Name: j.config.Name, URL: j.url})
	}

	progress := worker.NewProgress(len(tasks), showProgress)
	var storeFailures int
	pool := worker.New(worker.Config{
		Workers:    workers,
		Fetcher:    client,
		OnProgress: progress.Callback(),
		OnResult: func(r worker.Result) {
			progress.Record(r)
			if r.Err != nil {
				return
			}
			if err := storeResult(sink, byName[r.Task.Name], r.Data, exactSize); err != nil {
				storeFailures++
				logger.Error("Failed to store image", "name", r.Task.Name, "error", err)
			}
		},
	})

	results := pool.Run(ctx, tasks)
	progress.Done()

	var failedCount int
	for _, r := range results {
		if r.Err != nil {
			failedCount++
			logger.Error("Image fetch failed", "name", r.Task.Name, "error", r.Err)
		} else {
			logger.Debug("Image fetched", "name", r.Task.Name, "bytes", len(r.Data), "elapsed", r.Elapsed)
		}
	}
	failedCount += storeFailures

	logger.Info(progress.Summary())

	if err := sink.Close(); err != nil {
		return err
	}

	if failedCount > 0 {
		if !allowFailures {
			return fmt.Errorf("%d of %d images failed", failedCount, len(tasks))
		}
		logger.Warn("Some images failed, continuing due to --allow-failures flag", "failed_count", failedCount)
	}
	return nil
}

func filterMaps(maps []MapConfig, only []string) []MapConfig {
	if len(only) == 0 {
		return maps
	}
	keep := make(map[string]bool, len(only))
	for _, name := range only {
		keep[name] = true
	}
	out := maps[:0:0]
	for _, m := range maps {
		if keep[m.Name] {
			out = append(out, m)
		}
	}
	return out
}

// planJobs computes viewport and signed url of every map. With exactSize the
// image is requested at the full canvas around the fitted center and zoom.
func planJobs(client *mapbox.Client, maps []MapConfig, cacheBust, exactSize bool) ([]fetchJob, error) {
	jobs := make([]fetchJob, 0, len(maps))
	for _, m := range maps {
		if m.Username == "" {
			m.Username = viper.GetString("username")
		}
		result, opts, err := m.plan()
		if err != nil {
			return nil, err
		}
		if exactSize {
			result.Width, result.Height = m.size()
			opts.Width, opts.Height = result.Width, result.Height
		}
		opts.CacheBust = cacheBust
		jobs = append(jobs, fetchJob{config: m, viewport: result, url: client.StaticURL(opts)})
	}
	return jobs, nil
}

// storeResult writes data to sink. With exactSize, images the API returned at
// another size (e.g. @2x) are scaled onto the canvas without distortion.
func storeResult(sink imageSink, job fetchJob, data []byte, exactSize bool) error {
	if exactSize {
		width, height := job.config.size()
		fitted, err := imagery.FitCanvas(data, width, height)
		if err != nil {
			return err
		}
		data = fitted
	}
	return sink.Put(job, data)
}

type folderSink struct {
	dir string
}

func newFolderSink(dir string) (*folderSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &folderSink{dir: dir}, nil
}

func (s *folderSink) Put(job fetchJob, data []byte) error {
	info, err := imagery.DetectFormat(data)
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, job.config.Name+info.Extension())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write image %s: %w", path, err)
	}
	return nil
}

func (s *folderSink) Close() error { return nil }

type archiveSink struct {
	w      *archive.Writer
	closed bool
}

func newArchiveSink(path string) (*archiveSink, error) {
	w, err := archive.New(path, archive.Metadata{
		Name:     filepath.Base(path),
		Username: viper.GetString("username"),
		Version:  "1",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	return &archiveSink{w: w}, nil
}

func (s *archiveSink) Put(job fetchJob, data []byte) error {
	info, err := imagery.DetectFormat(data)
	if err != nil {
		return err
	}
	v := job.viewport
	v.Width, v.Height = info.Width, info.Height
	return s.w.WriteImage(archive.Entry{
		Name:     job.config.Name,
		Format:   info.Format,
		URL:      mapbox.RedactURL(job.url),
		Viewport: v,
		Data:     data,
	})
}

func (s *archiveSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.w.Close()
}
