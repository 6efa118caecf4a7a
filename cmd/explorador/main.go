package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/term"

	"github.com/mmcdole/explorador/internal/adapter"
	"github.com/mmcdole/explorador/internal/browse"
	"github.com/mmcdole/explorador/internal/catalog"
	"github.com/mmcdole/explorador/internal/domain"
	"github.com/mmcdole/explorador/internal/images"
	"github.com/mmcdole/explorador/internal/personal"
	"github.com/mmcdole/explorador/internal/store"
	"github.com/mmcdole/explorador/internal/tui"
	"github.com/mmcdole/explorador/internal/tui/components"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

func main() {
	var (
		showVersion bool
		clearCache  bool
		listOnly    bool
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&clearCache, "clear-cache", false, "delete saved notes, favorites and settings")
	flag.BoolVar(&listOnly, "list", false, "print the department list and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("explorador %s\n", Version)
		return
	}

	if err := run(clearCache, listOnly); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(clearCache, listOnly bool) error {
	// Load configuration
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting explorador", "version", Version)

	if clearCache {
		if err := adapter.ClearCache(cfg); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Println("✓ Preferences cleared")
		return nil
	}

	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, logger)
	searcher := images.NewWikiSearcher(cfg.Images.SearchURL, cfg.Images.ThumbSize, cfg.Images.Timeout, logger)
	resolver := images.NewResolver(searcher,
		images.WithPlaceholder(cfg.Images.Placeholder),
		images.WithCachePlaceholder(cfg.Images.CachePlaceholder),
		images.WithLogger(logger),
	)
	browseSvc := browse.NewService(catalogClient, resolver, logger)

	// Piped output always gets the plain listing
	if listOnly || !term.IsTerminal(int(os.Stdout.Fd())) {
		return printDepartments(os.Stdout, browseSvc, browse.ParseSortOrder(cfg.UI.DefaultSort))
	}

	prefs, err := store.Open(cfg.Store.Path, cfg.Store.Namespace, logger)
	if err != nil {
		return fmt.Errorf("failed to open preferences: %w", err)
	}
	defer prefs.Close()

	// Create services
	personalSvc := personal.NewService(prefs, logger)
	launcher := adapter.NewLauncher(cfg.Viewer.Command, cfg.Viewer.Args, logger)

	// Create TUI model
	model := tui.NewModel(browseSvc, personalSvc, resolver, launcher, tui.Options{
		ProximityRows: cfg.UI.ProximityRows,
		Prefetch:      cfg.Images.Prefetch,
		DefaultSort:   browse.ParseSortOrder(cfg.UI.DefaultSort),
		Placeholder:   cfg.Images.Placeholder,
		Logger:        logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	final, err := p.Run()
	if m, ok := final.(tui.Model); ok {
		m.Shutdown()
	}
	if err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// printDepartments writes one line per department, showing a spinner on
// stderr while the catalog answers
func printDepartments(w io.Writer, svc *browse.Service, order browse.SortOrder) error {
	deps, err := withSpinner("Consultando departamentos...", func(ctx context.Context) ([]domain.Department, error) {
		return svc.LoadDepartments(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to load departments: %w", err)
	}

	browse.SortByName(deps, order)
	for _, d := range deps {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", d.ID, d.Name, d.CityCapital, components.FormatPopulation(d.Population))
	}
	return nil
}

// withSpinner runs fn in the background with a visual spinner when stderr is a terminal
func withSpinner[T any](label string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	resultCh := make(chan result, 1)

	go func() {
		v, err := fn(ctx)
		resultCh <- result{v, err}
	}()

	if !term.IsTerminal(int(os.Stderr.Fd())) {
		res := <-resultCh
		return res.value, res.err
	}

	frames := spinner.Dot.Frames
	frame := 0
	fmt.Fprintf(os.Stderr, "\r%s %s", frames[frame], label)

	ticker := time.NewTicker(spinner.Dot.FPS)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Fprint(os.Stderr, clearSpinnerLine)
			return res.value, res.err
		case <-ticker.C:
			frame++
			fmt.Fprintf(os.Stderr, "\r%s %s", frames[frame%len(frames)], label)
		}
	}
}
