package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-billboard/internal/config"
	"github.com/Faultbox/midgard-billboard/internal/demo"
	"github.com/Faultbox/midgard-billboard/internal/engine/pipeline"
	"github.com/Faultbox/midgard-billboard/internal/engine/scene"
)

// report summarizes a stress run.
type report struct {
	Billboards int
	Frames     int
	Records    int
	Rebuilt    int
	Setup      time.Duration
	Update     timings
	Extract    timings
}

// timings holds order statistics over per-frame durations.
type timings struct {
	Mean, P50, P99, Max time.Duration
}

func summarize(samples []time.Duration) timings {
	if len(samples) == 0 {
		return timings{}
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	at := func(q float64) time.Duration {
		return sorted[int(q*float64(len(sorted)-1))]
	}
	return timings{
		Mean: total / time.Duration(len(sorted)),
		P50:  at(0.5),
		P99:  at(0.99),
		Max:  sorted[len(sorted)-1],
	}
}

func (t timings) fields(prefix string) []zap.Field {
	return []zap.Field{
		zap.Duration(prefix+"_mean", t.Mean),
		zap.Duration(prefix+"_p50", t.P50),
		zap.Duration(prefix+"_p99", t.P99),
		zap.Duration(prefix+"_max", t.Max),
	}
}

func (r report) log(log *zap.Logger) {
	fields := []zap.Field{
		zap.Int("billboards", r.Billboards),
		zap.Int("frames", r.Frames),
		zap.Int("records", r.Records),
		zap.Int("rebuilt", r.Rebuilt),
		zap.Duration("setup", r.Setup),
	}
	fields = append(fields, r.Update.fields("update")...)
	fields = append(fields, r.Extract.fields("extract")...)
	log.Info("stress run finished", fields...)
}

// run waits for the font, builds the stress grid in the first frame, then
// runs the configured number of frames. It stops early when ctx is done.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) (report, error) {
	if err := ctx.Err(); err != nil {
		return report{}, err
	}
	p := pipeline.New(cfg, log.Named("pipeline"))

	font, loaded := p.LoadFont(cfg.Text.FontPath)
	select {
	case <-loaded:
	case <-ctx.Done():
		return report{}, ctx.Err()
	}

	env := demo.Env{
		Font:     font,
		FontSize: cfg.Text.FontSize,
		Images:   p.Images,
		Meshes:   p.Meshes,
	}
	if path := cfg.Texture.Path; path != "" {
		h, done := p.LoadImage(path)
		<-done
		if _, err := p.Images.State(h); err != nil {
			return report{}, fmt.Errorf("texture %s: %w", path, err)
		}
		env.Texture = h
	}

	var grid *demo.Stress
	start := time.Now()
	_, stats, err := p.Frame(ctx, func(w *scene.World) {
		grid = demo.BuildStress(w, env, cfg.Stress)
	})
	if err != nil {
		return report{}, err
	}

	r := report{
		Billboards: grid.Len(),
		Records:    stats.Records,
		Rebuilt:    stats.Rebuilt,
		Setup:      time.Since(start),
	}
	log.Info("grid ready",
		zap.Int("billboards", r.Billboards),
		zap.Int("records", stats.Records),
		zap.Int("retrying", stats.Retrying),
		zap.Duration("setup", r.Setup),
	)

	update := make([]time.Duration, 0, cfg.Stress.Frames)
	extract := make([]time.Duration, 0, cfg.Stress.Frames)

	for i := range cfg.Stress.Frames {
		if ctx.Err() != nil {
			log.Warn("interrupted", zap.Int("frame", i))
			break
		}

		_, stats, err := p.Frame(ctx, grid.Recompute)
		if err != nil {
			return r, err
		}
		update = append(update, stats.Update)
		extract = append(extract, stats.Extract)
		r.Frames++
		r.Records = stats.Records
		r.Rebuilt += stats.Rebuilt

		if stats.Frame%100 == 0 {
			log.Debug("frame",
				zap.Uint64("frame", stats.Frame),
				zap.Int("rebuilt", stats.Rebuilt),
				zap.Duration("update", stats.Update),
				zap.Duration("extract", stats.Extract),
			)
		}
	}

	r.Update = summarize(update)
	r.Extract = summarize(extract)
	return r, nil
}
