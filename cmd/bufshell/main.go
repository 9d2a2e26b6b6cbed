// Command bufshell is an interactive shell over a buffer pool and the page
// files in one data directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/LeviCameron1/BufferManager/internal"
	"github.com/LeviCameron1/BufferManager/internal/bufferpool"
	"github.com/LeviCameron1/BufferManager/internal/storage"
	"github.com/LeviCameron1/BufferManager/pkg/logger"
)

const prompt = "bufmgr> "

func main() {
	var (
		cfgPath  = flag.String("config", "", "path to a YAML config file")
		dataDir  = flag.String("data-dir", "", "directory holding page files (overrides config)")
		frames   = flag.Int("frames", 0, "number of buffer frames (overrides config)")
		histPath = flag.String("history", defaultHistoryPath(), "history file path")
		histMax  = flag.Int("history-max", 2000, "max history lines loaded into memory")
	)
	flag.Parse()

	cfg, err := internal.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Storage.Workdir = *dataDir
	}
	if *frames > 0 {
		cfg.BufferPool.Frames = *frames
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if err := os.MkdirAll(cfg.Storage.Workdir, storage.FileMode0755); err != nil {
		log.Fatal("create data directory", zap.String("dir", cfg.Storage.Workdir), zap.Error(err))
	}

	opts := []bufferpool.Option{bufferpool.WithLogger(log.Named("bufferpool"))}
	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		opts = append(opts, bufferpool.WithMetrics(bufferpool.NewMetrics(reg)))
	}
	mgr := bufferpool.NewManager(cfg.BufferPool.Frames, opts...)

	if reg != nil {
		if err := bufferpool.RegisterGauges(reg, mgr); err != nil {
			log.Fatal("register gauges", zap.Error(err))
		}
		srv := serveMetrics(cfg.Metrics.Addr, reg, log)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	sh := NewShell(mgr, cfg.Storage.Workdir, log, os.Stdout)
	defer func() {
		if err := sh.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close: %v\n", err)
		}
	}()

	log.Info("buffer pool ready",
		zap.String("app", cfg.AppName),
		zap.String("dir", cfg.Storage.Workdir),
		zap.Int("frames", mgr.NumFrames()))

	if err := repl(sh, *histPath, *histMax); err != nil {
		log.Error("shell", zap.Error(err))
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", zap.String("addr", addr), zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))
	return srv
}

// readlineConfig lets readline own the history file: it loads the last
// histMax entries on start and appends every line read.
func readlineConfig(histPath string, histMax int) *readline.Config {
	return &readline.Config{
		Prompt:            prompt,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistoryFile:       histPath,
		HistoryLimit:      histMax,
		HistorySearchFold: true,
	}
}

func defaultHistoryPath() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".bufshell_history")
	}
	return ".bufshell_history"
}

func repl(sh *Shell, histPath string, histMax int) error {
	rl, err := readline.NewEx(readlineConfig(histPath, histMax))
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer func() { _ = rl.Close() }()

	fmt.Println("type help for help")
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Println("^C")
			continue
		}
		if err != nil {
			fmt.Println()
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		quit, err := sh.Exec(line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}
