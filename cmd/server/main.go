package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nitishgarg26/pdf-mcq/internal/api"
	"github.com/nitishgarg26/pdf-mcq/internal/config"
	"github.com/nitishgarg26/pdf-mcq/internal/docgen"
	"github.com/nitishgarg26/pdf-mcq/internal/equation"
	"github.com/nitishgarg26/pdf-mcq/internal/imaging"
	"github.com/nitishgarg26/pdf-mcq/internal/memo"
	"github.com/nitishgarg26/pdf-mcq/internal/ocr"
	"github.com/nitishgarg26/pdf-mcq/internal/pagesource"
	"github.com/nitishgarg26/pdf-mcq/internal/pipeline"
	"github.com/nitishgarg26/pdf-mcq/internal/segment"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Result cache.
	cache, err := memo.Open(cfg.CachePath)
	if err != nil {
		log.Error("open result cache", "path", cfg.CachePath, "error", err)
		os.Exit(1)
	}

	// Collaborators.
	engCfg := segment.DefaultConfig()
	engCfg.QualityThreshold = cfg.QualityThreshold
	engCfg.ConfidenceFloor = cfg.ConfidenceFloor
	engCfg.TrimPaddingPx = cfg.TrimPaddingPx
	engine := segment.NewEngine(engCfg, imaging.NewBandCropper())

	raster := pagesource.NewPdftoppm()
	if !raster.Available() {
		log.Warn("pdftoppm not found, scanned pages will not be recognized")
	}

	var eq equation.Recognizer = equation.Unavailable{}
	var remote *equation.Remote
	if cfg.EquationURL != "" {
		remote = equation.NewRemote(cfg.EquationURL, cfg.EquationAPIKey)
		eq = remote
	}

	deps := pipeline.Deps{
		Engine:   engine,
		OCR:      ocr.NewTesseract(),
		Raster:   raster,
		Equation: eq,
		Cache:    cache,
		DocOpts:  docgen.DefaultOptions(),
	}

	orch := pipeline.NewOrchestrator(cfg, deps, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if remote != nil {
			remote.Close()
		}
		cache.Close()
	}()

	log.Info("starting mcq extractor", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
