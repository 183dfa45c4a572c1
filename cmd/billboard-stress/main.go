// Package main runs the billboard pipeline headless over a large grid of
// billboards and reports frame timings.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-billboard/internal/config"
	"github.com/Faultbox/midgard-billboard/internal/engine/textmesh"
	"github.com/Faultbox/midgard-billboard/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Midgard Billboard Stress ===",
		zap.String("kind", cfg.Stress.Kind),
		zap.Int("radius", cfg.Stress.Radius),
		zap.Int("frames", cfg.Stress.Frames),
		zap.Bool("recompute_text", cfg.Stress.RecomputeText),
		zap.Bool("recompute_texture", cfg.Stress.RecomputeTexture),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := run(ctx, cfg, logger.Named("stress"))
	if err != nil {
		var fatal *textmesh.FatalError
		if errors.As(err, &fatal) {
			logger.Error("text layout failed", zap.Stringer("entity", fatal.Entity), zap.Error(fatal.Err))
		} else {
			logger.Error("stress run failed", zap.Error(err))
		}
		logger.Sync()
		os.Exit(1)
	}

	summary.log(logger.Log)
}
