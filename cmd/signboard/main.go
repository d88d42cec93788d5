package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/mvasquez/signboard/internal/backend"
	"github.com/mvasquez/signboard/internal/config"
	"github.com/mvasquez/signboard/internal/lgr"
	"github.com/mvasquez/signboard/internal/server"
	"github.com/mvasquez/signboard/internal/session"
	"github.com/mvasquez/signboard/internal/tray"
)

func main() {
	// Local development overrides; a missing .env file is fine.
	_ = godotenv.Load()

	cfg := config.Load()

	if err := lgr.Init(cfg.LogDir); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	color.Cyan("Signboard - ASL Detection Dashboard")

	client := backend.New(cfg.BackendURL, cfg.RequestTimeout)

	manager := session.New(client, session.Config{
		FramePollInterval:      cfg.FramePollInterval,
		PredictionPollInterval: cfg.PredictionPollInterval,
		StatusPollInterval:     cfg.StatusPollInterval,
		HistoryLimit:           cfg.HistoryLimit,
		ToastTTL:               cfg.ToastTTL,
	})
	manager.Run()
	defer manager.Close()

	webDir := cfg.StaticDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		lgr.Logger.Info("serving dashboard assets", slog.String("dir", webDir))
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Manager:   manager,
		Backend:   client,
	})

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		color.Green("Dashboard listening on %s (backend %s)", cfg.Addr, cfg.BackendURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lgr.Logger.Error("server failed", slog.Any("error", err))
			stop()
		}
	}()

	if cfg.TrayEnabled {
		runWithTray(ctx, stop, manager, cfg.Addr)
	} else {
		<-ctx.Done()
	}

	lgr.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		lgr.Logger.Error("shutdown failed", slog.Any("error", err))
	}
}

// runWithTray runs the system tray loop on the main goroutine, as the tray
// library requires, and mirrors session state into the tray menu. It returns
// when the tray quits or ctx is cancelled.
func runWithTray(ctx context.Context, stop context.CancelFunc, manager *session.Manager, addr string) {
	t := tray.New()

	manager.OnPrediction(t.SetLastSign)

	t.OnToggle(func(detecting bool) {
		reqCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var err error
		if detecting {
			err = manager.StartDetection(reqCtx)
		} else {
			err = manager.StopDetection(reqCtx)
		}
		if err != nil {
			t.SetDetecting(manager.Detecting())
		}
	})
	t.OnOpen(func() {
		if err := openBrowser(dashboardURL(addr)); err != nil {
			lgr.Logger.Error("failed to open browser", slog.Any("error", err))
		}
	})
	t.OnQuit(stop)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	t.Run()
}

// dashboardURL turns a listen address like ":8080" into a browsable URL.
func dashboardURL(addr string) string {
	if addr != "" && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.signboard/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".signboard", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
