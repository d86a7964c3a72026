// Command form presents the contact form, either as a web page or in the
// terminal, and posts each submit to the submission endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/okian/formpost/internal/adapters/http/site"
	"github.com/okian/formpost/internal/adapters/tui"
	"github.com/okian/formpost/internal/config"
	"github.com/okian/formpost/internal/submitter"
	"github.com/okian/formpost/pkg/logger"
)

const (
	uiWeb = "web"
	uiTUI = "tui"

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	ui := flag.String("ui", uiWeb, "front end to run: web or tui")
	logFile := flag.String("log", "formpost-tui.log", "log file used by the terminal UI")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch *ui {
	case uiWeb:
		err = runWeb(ctx)
	case uiTUI:
		err = runTUI(ctx, *logFile)
	default:
		err = fmt.Errorf("unknown -ui %q: want %s or %s", *ui, uiWeb, uiTUI)
	}
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// runWeb serves the form page until ctx is cancelled.
func runWeb(ctx context.Context) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	cfg, err := loadConfig(ctx, log)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	site.Register(ctx, mux, site.New(submitter.New(), site.WithLogger(log.Named("site"))))

	srv := &http.Server{
		Addr:              cfg.FormAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "serving form page",
			logger.String("addr", cfg.FormAddr),
			logger.String("endpoint", submitter.Endpoint),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	return nil
}

// runTUI runs the terminal form. Logs go to logPath so they do not tear the screen.
func runTUI(ctx context.Context, logPath string) error {
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := logger.InitWithWriter(f); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if _, err := loadConfig(ctx, logger.Get()); err != nil {
		return err
	}

	p := tea.NewProgram(tui.New(ctx, submitter.New()), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal form failed: %w", err)
	}
	return nil
}

// loadConfig reads .env, the optional config file and the environment, then
// applies log_level to the global logger.
func loadConfig(ctx context.Context, log logger.Logger) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}
