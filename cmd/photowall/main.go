package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/photowall-cli/internal/app"
	"github.com/glabrego/photowall-cli/internal/config"
	"github.com/glabrego/photowall-cli/internal/logging"
	"github.com/glabrego/photowall-cli/internal/postapi"
	"github.com/glabrego/photowall-cli/internal/render/wall"
	"github.com/glabrego/photowall-cli/internal/storage"
	"github.com/glabrego/photowall-cli/internal/tui"
)

func main() {
	snapshotPath := flag.String("snapshot", "", "render without the terminal UI and write a PNG of the wall to this path")
	width := flag.Int("width", 1280, "snapshot canvas width in pixels")
	height := flag.Int("height", 720, "snapshot canvas height in pixels")
	jump := flag.String("jump", "", "cell to centre before the snapshot, as x,y")
	timeout := flag.Duration("timeout", 30*time.Second, "how long a snapshot waits for the visible tiles")
	flag.Parse()

	config.LoadDotEnv()
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, logFile, err := logging.NewFile(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		log.Fatalf("log init error (%v). Verify PHOTOWALL_LOG_PATH is writable: %s", err, cfg.LogPath)
	}
	defer logFile.Close()
	app.InstallLogger(logger)

	client := postapi.NewClient(cfg.APIBaseURL, cfg.ImageBaseURL, nil)

	if *snapshotPath != "" {
		if err := runSnapshot(client, cfg, *snapshotPath, *width, *height, *jump, *timeout, logger); err != nil {
			log.Fatalf("snapshot error: %v", err)
		}
		return
	}

	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := repo.Init(ctx); err != nil {
		log.Fatalf("storage schema error: %v", err)
	}
	if err := repo.CheckWritable(ctx); err != nil {
		log.Fatalf("storage write check failed (%v). Verify PHOTOWALL_DB_PATH is writable: %s", err, cfg.DBPath)
	}
	service := app.NewService(repo)

	session, err := app.NewSession(client, app.Options{
		Layout:        cfg.Layout,
		MaxConcurrent: cfg.MaxConcurrent,
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("session init error: %v", err)
	}
	defer session.Close()
	logger.Info("session started", "session", session.ID(), "api", cfg.APIBaseURL)

	if view, ok, err := service.LoadViewState(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load the last view (%v), starting at the corner\n", err)
	} else if ok {
		session.Renderer().SetView(view)
	}

	model := tui.NewModel(session, cfg.FPS)
	model.SetPixelScale(cfg.PixelScale)

	prefCtx, prefCancel := context.WithTimeout(context.Background(), 5*time.Second)
	prefs, err := service.LoadUIPreferences(prefCtx)
	prefCancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load UI preferences (%v), using defaults\n", err)
	} else {
		model.ApplyPreferences(tui.Preferences{
			ShowMinimap: prefs.ShowMinimap,
			ShowHelp:    prefs.ShowHelp,
			PixelScale:  prefs.PixelScale,
		})
	}

	model.SetPreferencesSaver(func(p tui.Preferences) error {
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer saveCancel()
		return service.SaveUIPreferences(saveCtx, app.UIPreferences{
			ShowMinimap: p.ShowMinimap,
			ShowHelp:    p.ShowHelp,
			PixelScale:  p.PixelScale,
		})
	})
	model.SetViewSaver(func(v wall.View) error {
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer saveCancel()
		return service.SaveViewState(saveCtx, v)
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		log.Fatalf("tui error: %v", err)
	}
}

// runSnapshot drives the wall without a terminal until every visible tile has
// settled or the timeout passes, then writes the canvas as PNG.
func runSnapshot(client *postapi.Client, cfg config.Config, path string, width, height int, jump string, timeout time.Duration, logger *slog.Logger) error {
	session, err := app.NewSession(client, app.Options{
		Layout:        cfg.Layout,
		Width:         width,
		Height:        height,
		MaxConcurrent: cfg.MaxConcurrent,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	if jump != "" && !session.JumpToCell(jump) {
		return fmt.Errorf("not a cell: %q", jump)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	session.Start()
	interval := time.Second / time.Duration(cfg.FPS)
	err = session.Run(ctx, interval, func(st app.State) bool {
		return st.Done && st.Loaded >= st.Visible
	})
	if err != nil && ctx.Err() == nil {
		return err
	}
	if ctx.Err() != nil {
		logger.Warn("snapshot timed out, writing what has loaded", "timeout", timeout)
	}
	session.Frame()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := session.Snapshot(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	st := session.State()
	logger.Info("snapshot written", "path", path, "posts", st.TotalPosts, "loaded", st.Loaded, "visible", st.Visible)
	return nil
}
