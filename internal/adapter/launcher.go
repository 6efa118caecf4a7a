package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// Launcher opens image URLs in an external viewer
type Launcher struct {
	command string   // configured viewer command, empty for auto-detection
	args    []string // additional arguments for the viewer
	logger  *slog.Logger

	// start runs a command without waiting for it; replaced in tests
	start func(name string, args ...string) error
	// lookPath reports whether a command is installed; replaced in tests
	lookPath func(name string) (string, error)
}

// viewers that accept an http(s) URL argument, per platform, in preference order
var candidateViewers = map[string][]string{
	"darwin":  {},
	"linux":   {"imv", "feh", "eog"},
	"windows": {},
}

// NewLauncher creates a Launcher. An empty command enables auto-detection.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  command,
		args:     args,
		logger:   logger,
		start:    startCommand,
		lookPath: exec.LookPath,
	}
}

func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start() // Start async, don't wait
}

// Open implements domain.URLOpener
func (l *Launcher) Open(url string) error {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("refusing to open non-http url %q", url)
	}

	// Tier 1: user configured a specific viewer
	if l.command != "" {
		args := append(append([]string{}, l.args...), url)
		l.logger.Info("opening with configured viewer", "command", l.command, "url", url)
		return l.start(l.command, args...)
	}

	// Tier 2: first installed candidate viewer
	for _, name := range candidateViewers[runtime.GOOS] {
		if _, err := l.lookPath(name); err != nil {
			l.logger.Debug("viewer not available", "viewer", name, "error", err)
			continue
		}
		if err := l.start(name, url); err == nil {
			l.logger.Info("opened with detected viewer", "viewer", name)
			return nil
		}
	}

	// Tier 3: system default handler
	return l.openDefault(url)
}

// openDefault opens the URL using the system default handler
func (l *Launcher) openDefault(url string) error {
	l.logger.Info("opening with system default", "os", runtime.GOOS, "url", url)
	switch runtime.GOOS {
	case "darwin":
		return l.start("open", url)
	case "windows":
		return l.start("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		// Linux and other Unix-like systems
		return l.start("xdg-open", url)
	}
}
