// Package main is the entry point for the jetview server.
//
// jetview is a local viewer for Access-style database files. It serves
// an embedded web frontend, decodes uploaded .mdb/.accdb files, and
// keeps the last loaded file across restarts in a two-tier store.
// Configuration is read from CLI flags and config.yml in the data
// directory.
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jetview/jetview/internal/catalog"
	"github.com/jetview/jetview/internal/config"
	"github.com/jetview/jetview/internal/jet"
	_ "github.com/jetview/jetview/internal/jet/jsonljet"
	"github.com/jetview/jetview/internal/server"
	"github.com/jetview/jetview/internal/server/handlers"
	"github.com/jetview/jetview/internal/server/ratelimit"
	"github.com/jetview/jetview/internal/session"
	"github.com/jetview/jetview/internal/storage/laststore"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "jetview: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	httpAddr := flag.String("http", "localhost:8080", "Address to listen on (e.g., localhost:8080, :8080, 0.0.0.0:8080). Use 0.0.0.0:port to listen on all interfaces.")
	dataDir := flag.String("data-dir", "./data", "Data directory")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	if *version {
		printVersion()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	// Skip timestamps when running under systemd (it adds its own).
	underSystemd := os.Getenv("JOURNAL_STREAM") != ""
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Drop time when running under systemd.
			if underSystemd && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			// Drop localhost IPs (not useful in logs).
			if a.Key == "ip" {
				if v := a.Value.String(); v == "127.0.0.1" || v == "::1" {
					return slog.Attr{}
				}
			}
			val := a.Value.Any()
			skip := false
			switch t := val.(type) {
			case string:
				skip = t == ""
			case bool:
				skip = !t
			case uint64:
				skip = t == 0
			case int64:
				skip = t == 0
			case float64:
				skip = t == 0
			case time.Time:
				skip = t.IsZero()
			case time.Duration:
				skip = t == 0
			case nil:
				skip = true
			}
			if skip {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	switch *logLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", *logLevel)
	}

	if err := os.MkdirAll(*dataDir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg, err := config.Load(*dataDir)
	if err != nil {
		return err
	}

	store, err := laststore.New(filepath.Join(*dataDir, "store"), cfg.Limits.FastStoreQuotaBytes)
	if err != nil {
		return fmt.Errorf("failed to initialize file store: %w", err)
	}
	defer func() { _ = store.Close() }()

	sessions := session.NewManager()
	defer func() { _ = sessions.Close() }()

	// Tokens are per process: the viewer holds a single in-memory session,
	// so there is nothing for a longer-lived secret to protect.
	jwtSecret := make([]byte, 32)
	if _, err := rand.Read(jwtSecret); err != nil {
		return fmt.Errorf("failed to generate token secret: %w", err)
	}

	restoreLastFile(ctx, store, sessions, cfg.Limits)

	// Watch own executable for modifications (for development restarts)
	if err := watchExecutable(ctx, stop); err != nil {
		return fmt.Errorf("failed to watch executable: %w", err)
	}

	uploadLimiter := ratelimit.NewLimiter(cfg.UploadPerMinute, time.Minute, cfg.UploadPerMinute)
	defer uploadLimiter.Close()

	buildVersion, _, _, _ := getBuildInfo()
	svc := &handlers.Services{
		Store:    store,
		Sessions: sessions,
	}
	hcfg := &handlers.Config{
		Limits:        cfg.Limits,
		Version:       buildVersion,
		JWTSecret:     jwtSecret,
		UploadLimiter: uploadLimiter,
	}

	// Normalize addr: ":8080" becomes "localhost:8080"
	addr := *httpAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(svc, hcfg),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Starting server", "addr", addr, "version", buildVersion)
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.InfoContext(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		slog.InfoContext(ctx, "Server stopped")
	}
	return nil
}

// restoreLastFile reopens the previously loaded database, if one was
// persisted. Every failure is non-fatal: the server just starts with no
// file loaded, as on first run.
func restoreLastFile(ctx context.Context, store *laststore.Store, sessions *session.Manager, limits config.Limits) {
	rec := store.Restore(ctx)
	if rec == nil {
		slog.DebugContext(ctx, "No persisted file to restore")
		return
	}
	reader, err := jet.Open(rec.Name, rec.Bytes)
	if err != nil {
		slog.WarnContext(ctx, "Failed to decode persisted file", "file", rec.Name, "err", err)
		return
	}
	cat, err := catalog.Build(ctx, reader)
	if err != nil {
		_ = reader.Close()
		slog.WarnContext(ctx, "Failed to build catalog for persisted file", "file", rec.Name, "err", err)
		return
	}
	s := sessions.Open(ctx, rec.Name, reader, cat, limits)
	slog.InfoContext(ctx, "Restored last file", "file", rec.Name, "tables", cat.Len(), "session", s.ID().String())
}

func printVersion() {
	version, goVersion, revision, dirty := getBuildInfo()
	fmt.Printf("jetview %s\n", version)
	fmt.Printf("  Go version: %s\n", goVersion)
	fmt.Printf("  Revision:   %s\n", revision)
	if dirty {
		fmt.Printf("  Modified:   true\n")
	}
}

func getBuildInfo() (version, goVersion, revision string, dirty bool) {
	version = "unknown"
	goVersion = "unknown"
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}

// watchExecutable watches the current executable for modifications and calls
// stop to trigger graceful shutdown when detected. This enables seamless
// restarts during development.
func watchExecutable(ctx context.Context, stop context.CancelFunc) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(exe); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) {
					slog.InfoContext(ctx, "Executable modified, initiating shutdown")
					stop()
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching executable", "err", err)
			}
		}
	}()
	return nil
}
