// Command gradelens analyzes a CSV table of examination scores and
// renders the results to the terminal and to markdown, xlsx, and PDF
// reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"

	"github.com/gradelens/gradelens/internal/config"
	"github.com/gradelens/gradelens/internal/domain"
	"github.com/gradelens/gradelens/internal/engine"
	"github.com/gradelens/gradelens/internal/export"
	"github.com/gradelens/gradelens/internal/ingest"
	"github.com/gradelens/gradelens/internal/validate"
)

// Export file names written into the output directory.
const (
	markdownFile = "examination_analysis_report.md"
	xlsxFile     = "examination_analysis_results.xlsx"
	pdfFile      = "examination_analysis_report.pdf"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "Path to the CSV score table (required)")
		configPath = flag.String("config", "", "Path to the YAML configuration file")
		outputDir  = flag.String("output", ".", "Directory exported reports are written to")
		formats    = flag.String("formats", "markdown", "Comma-separated exports: markdown, xlsx, pdf, all, none")
		anonymize  = flag.Bool("anonymize", false, "Anonymize student identities in every output")
		watchMode  = flag.Bool("watch", false, "Re-run the analysis when the input or config file changes")
	)
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		log.Fatal("missing required -input flag")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}
	if *anonymize {
		cfg.Anonymize = true
	}

	selected, err := parseFormats(*formats)
	if err != nil {
		log.Fatal(err)
	}

	app := &app{
		input:     *inputPath,
		outputDir: *outputDir,
		formats:   selected,
		cfg:       cfg,
	}

	if err := app.run(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}

	if *watchMode {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := app.watch(ctx, *configPath); err != nil {
			color.Red("Error: %v", err)
			os.Exit(1)
		}
	}
}

// parseFormats expands the -formats flag into a set of export names.
func parseFormats(s string) (map[string]bool, error) {
	selected := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		switch f = strings.TrimSpace(strings.ToLower(f)); f {
		case "all":
			selected["markdown"], selected["xlsx"], selected["pdf"] = true, true, true
		case "markdown", "xlsx", "pdf":
			selected[f] = true
		case "none", "":
		default:
			return nil, fmt.Errorf("unknown export format %q", f)
		}
	}
	return selected, nil
}

// app holds the pipeline state shared between the initial run and watch
// mode re-runs.
type app struct {
	input     string
	outputDir string
	formats   map[string]bool

	// runMu serializes pipeline passes: the config and input watchers
	// both trigger re-runs, and concurrent passes would race on the
	// export files and interleave terminal output.
	runMu sync.Mutex

	mu  sync.Mutex
	cfg config.Config
}

func (a *app) config() config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

func (a *app) setConfig(cfg config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
}

// run executes one full pipeline pass: parse, validate, analyze, print,
// export. At most one pass runs at a time; the config snapshot taken
// here is used throughout, so a reload landing mid-pass cannot render
// the formats at different precisions.
func (a *app) run() error {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	cfg := a.config()

	table, err := ingest.ParseCSVFile(a.input)
	if err != nil {
		return err
	}

	result := validate.Validate(table)
	for _, w := range result.Warnings {
		color.Yellow("Warning: %s", w)
	}
	if !result.Valid() {
		for _, e := range result.Errors {
			color.Red("Error: %s", e)
		}
		return fmt.Errorf("data validation failed with %d errors", len(result.Errors))
	}

	report := engine.NewAnalyzer().Analyze(table, cfg.Policy())
	data := export.Assemble(report, table, export.Options{
		DecimalPlaces: cfg.DecimalPlaces,
		Anonymize:     cfg.Anonymize,
		TopStudents:   cfg.TopStudents,
	})

	printReport(report, data, cfg)

	return a.export(report, data, cfg)
}

// printReport renders the assembled tables and anomaly flags on the
// terminal.
func printReport(report *domain.AnalysisReport, data export.Data, cfg config.Config) {
	color.Cyan("\n=== Examination Results Analysis ===")

	renderTable(data.Summary)

	color.Yellow("\nSubject Analysis")
	renderTable(data.SubjectAnalysis)

	color.Yellow("\nTop %d Students", cfg.TopStudents)
	renderTable(data.TopStudents)

	if len(report.Anomalies) > 0 {
		color.Red("\nAnomalies")
		for _, anomaly := range report.Anomalies {
			color.Red("- [%s] %s", anomaly.Kind, anomaly.Description)
		}
	}
}

func renderTable(t export.Table) {
	w := tablewriter.NewWriter(os.Stdout)
	w.SetHeader(t.Columns)
	for _, row := range t.Rows {
		w.Append(row)
	}
	w.Render()
}

// export writes the selected formats concurrently. Each format goes to
// its own file, so a failing writer cannot corrupt a sibling's output.
// All formats render with the cfg captured by the calling pass.
func (a *app) export(report *domain.AnalysisReport, data export.Data, cfg config.Config) error {
	if len(a.formats) == 0 {
		return nil
	}

	if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var g errgroup.Group

	if a.formats["markdown"] {
		g.Go(func() error {
			md := export.Markdown(report, export.Options{
				DecimalPlaces: cfg.DecimalPlaces,
				Anonymize:     cfg.Anonymize,
				TopStudents:   cfg.TopStudents,
			})
			return writeFile(filepath.Join(a.outputDir, markdownFile), func(f *os.File) error {
				_, err := f.WriteString(md)
				return err
			})
		})
	}
	if a.formats["xlsx"] {
		g.Go(func() error {
			return writeFile(filepath.Join(a.outputDir, xlsxFile), func(f *os.File) error {
				return export.WriteXLSX(data, f)
			})
		})
	}
	if a.formats["pdf"] {
		g.Go(func() error {
			return writeFile(filepath.Join(a.outputDir, pdfFile), func(f *os.File) error {
				return export.WritePDF(data, report, f)
			})
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	for name := range a.formats {
		color.Green("Exported %s report to %s", name, a.outputDir)
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// watch re-runs the pipeline whenever the input file changes, and picks
// up configuration changes when a config file was supplied. It blocks
// until the context is cancelled.
func (a *app) watch(ctx context.Context, configPath string) error {
	g, ctx := errgroup.WithContext(ctx)

	if configPath != "" {
		g.Go(func() error {
			return config.Watch(ctx, configPath, func(cfg *config.Config) {
				a.setConfig(*cfg)
				if err := a.run(); err != nil {
					slog.Error("analysis failed after config reload", "err", err)
				}
			})
		})
	}

	g.Go(func() error {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()

		if err := watcher.Add(a.input); err != nil {
			return err
		}
		slog.Info("watching input for changes", "path", a.input)

		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				switch {
				case event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove):
					// Atomic saves replace the inode and kill the
					// watch; re-establish it before re-running.
					if err := rewatchInput(ctx, watcher, a.input); err != nil {
						slog.Error("input watch lost", "path", a.input, "err", err)
						continue
					}
				case !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create):
					continue
				}
				if err := a.run(); err != nil {
					slog.Error("analysis failed after input change", "err", err)
				}
				_ = watcher.Add(a.input)
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				slog.Error("input watcher error", "err", err)
			}
		}
	})

	return g.Wait()
}

// rewatchInput re-adds the input file to the watcher, retrying while a
// replacement file is still being moved into place.
func rewatchInput(ctx context.Context, watcher *fsnotify.Watcher, path string) error {
	var err error
	for i := 0; i < 10; i++ {
		if err = watcher.Add(path); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return err
}
