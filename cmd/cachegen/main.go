package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/cachegen/internal/adapter"
	"github.com/mmcdole/cachegen/internal/domain"
	"github.com/mmcdole/cachegen/internal/service"
	"github.com/mmcdole/cachegen/internal/store"
	"github.com/mmcdole/cachegen/internal/tui"
	"github.com/mmcdole/cachegen/internal/ui"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// errReported means the failure was already shown to the user
var errReported = errors.New("reported")

type options struct {
	category     string
	mode         string
	out          string
	name         string
	save         bool
	lookup       string
	history      int
	clearHistory bool
	debug        bool
}

func (o options) wantsSave() bool {
	return o.save || o.out != ""
}

func main() {
	var (
		showVersion bool
		opts        options
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&opts.category, "category", "", "cache category: images, sounds, music, mods, advert (fuzzy)")
	flag.StringVar(&opts.mode, "mode", "", "output mode: single or pack")
	flag.StringVar(&opts.out, "out", "", "output directory (implies -save)")
	flag.StringVar(&opts.name, "name", "", "ZIP base name in pack mode")
	flag.BoolVar(&opts.save, "save", false, "save the processed files")
	flag.StringVar(&opts.lookup, "lookup", "", "find the source of a saved name, hash prefix, or source file MD5")
	flag.IntVar(&opts.history, "history", 0, "list the N most recent saves")
	flag.BoolVar(&opts.clearHistory, "clear-history", false, "forget every recorded save")
	flag.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: cachegen [flags] [files...]\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Without files, cachegen starts the interactive interface.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("cachegen %s\n", Version)
		return
	}

	if err := run(opts, flag.Args()); err != nil {
		if !errors.Is(err, errReported) {
			ui.Fail("%v", err)
		}
		os.Exit(1)
	}
}

func run(opts options, files []string) error {
	// Load configuration
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	if opts.debug {
		cfg.Logging.Level = "DEBUG"
	}
	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	if opts.debug && cfg.Logging.File == "" {
		logger = adapter.StderrLogger(cfg.Logging.Level)
	}
	slog.SetDefault(logger)

	logger.Info("starting cachegen", "version", Version)

	state, err := adapter.LoadState(cfg.State.File)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	logger.Debug("state loaded", "path", state.Path(),
		"output_dir", state.LastDir(domain.StateOutputDir),
		"source_dir", state.LastDir(domain.StateSourceDir))

	history, err := store.NewHistoryStore(cfg.HistoryPath())
	if err != nil {
		// Another instance may hold the lock; keep going without persistence
		logger.Warn("history unavailable, using memory", "path", cfg.HistoryPath(), "error", err)
		history, _ = store.NewHistoryStore("")
	}
	defer history.Close()

	// Create services
	outputSvc := service.NewOutputService(state, history, logger)
	sessionSvc := service.NewSessionService(outputSvc, state, logger)
	historySvc := service.NewHistoryService(history, logger)

	switch {
	case opts.clearHistory:
		if err := historySvc.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		ui.Success("History cleared.")
		return nil
	case opts.lookup != "":
		return runLookup(historySvc, opts.lookup)
	case opts.history > 0:
		return runHistory(historySvc, opts.history)
	}

	category, mode, err := resolveSettings(cfg, opts)
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	if len(files) == 0 {
		if opts.wantsSave() {
			ui.Warn("No files processed.")
			return nil
		}
		if !interactive {
			flag.Usage()
			return errors.New("no input files")
		}
		return runTUI(sessionSvc, state, category, mode, logger)
	}

	// Process files
	ctx := context.Background()
	added, procErr := sessionSvc.ProcessSelection(ctx, files, category)
	for _, e := range added {
		fmt.Println(e.DerivedName)
	}
	for _, err := range unwrapAll(procErr) {
		ui.Fail("%v", err)
	}

	if opts.wantsSave() {
		if err := runSave(ctx, sessionSvc, state, mode, opts, interactive); err != nil {
			return err
		}
	}

	if procErr != nil {
		return errReported
	}
	return nil
}

// resolveSettings picks category and mode from flags, falling back to config
func resolveSettings(cfg *adapter.Config, opts options) (domain.Category, domain.OutputMode, error) {
	var (
		category domain.Category
		mode     domain.OutputMode
		err      error
	)

	if opts.category != "" {
		category, err = service.ResolveCategory(opts.category)
	} else {
		category, err = cfg.DefaultCategory()
	}
	if err != nil {
		return 0, 0, err
	}

	if opts.mode != "" {
		mode, err = domain.ParseOutputMode(opts.mode)
	} else {
		mode, err = cfg.DefaultMode()
	}
	if err != nil {
		return 0, 0, err
	}

	return category, mode, nil
}

// runSave writes the processed entries, prompting for anything missing
// when stdin is a terminal. An empty answer cancels without a message.
// Without a terminal, missing -out or -name is reported instead.
func runSave(ctx context.Context, svc *service.SessionService, state domain.StateStore, mode domain.OutputMode, opts options, interactive bool) error {
	if svc.Len() == 0 {
		ui.Warn("No files processed.")
		return nil
	}

	req := domain.SaveRequest{
		Mode:        mode,
		Directory:   opts.out,
		ArchiveName: opts.name,
	}

	if interactive {
		if mode == domain.ModePack && req.ArchiveName == "" {
			req.ArchiveName, _ = ui.AskString("ZIP file name", "")
		}
		if req.Directory == "" && (mode == domain.ModeIndividual || req.ArchiveName != "") {
			req.Directory, _ = ui.AskString("Output directory", state.LastDir(domain.StateOutputDir))
		}
	} else {
		var missing []string
		if req.Directory == "" {
			missing = append(missing, "-out")
		}
		if mode == domain.ModePack && req.ArchiveName == "" {
			missing = append(missing, "-name")
		}
		if len(missing) > 0 {
			ui.Warn("Nothing saved: %s required when stdin is not a terminal.", strings.Join(missing, " and "))
			return errReported
		}
	}
	req.Directory = adapter.ExpandHome(req.Directory)

	result, err := svc.Save(ctx, req)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrCancelled):
		return nil
	case errors.Is(err, domain.ErrEmptySelection):
		ui.Warn("No files processed.")
		return nil
	default:
		return err
	}

	if result.Mode == domain.ModePack {
		ui.Success("Packed ZIP created.")
		ui.DimMsg("%s (%d files)", result.Destination, result.Written)
	} else {
		ui.Success("Files saved successfully.")
		ui.DimMsg("%d files in %s", result.Written, result.Destination)
	}
	return nil
}

func runLookup(svc *service.HistoryService, query string) error {
	records, err := svc.Lookup(query)
	if errors.Is(err, domain.ErrNotFound) {
		ui.Warn("No saved file matches %q", query)
		return nil
	}
	if err != nil {
		return err
	}

	for _, rec := range records {
		fmt.Printf("%s\t%s\n", ui.Bold(rec.Name), rec.SourcePath)
		ui.DimMsg("saved %s to %s", rec.SavedAt.Format(time.DateTime), rec.Destination)
	}
	return nil
}

func runHistory(svc *service.HistoryService, limit int) error {
	batches, err := svc.Recent(limit)
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		ui.Info("No saves recorded yet.")
		return nil
	}

	for _, b := range batches {
		fmt.Printf("%s\t%s\t%d\t%s\n",
			b.CreatedAt.Format(time.DateTime), b.Mode.String(), len(b.Entries), b.Destination)
	}
	return nil
}

func runTUI(svc *service.SessionService, state domain.StateStore, category domain.Category, mode domain.OutputMode, logger *slog.Logger) error {
	model := tui.NewModel(svc, state, category, mode, logger)

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// unwrapAll flattens an errors.Join result
func unwrapAll(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
