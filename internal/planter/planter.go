package planter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/client-go/util/flowcontrol"

	"github.com/kula-app/farmware-plant-grid/internal/config"
	"github.com/kula-app/farmware-plant-grid/internal/farmdesigner"
	"github.com/kula-app/farmware-plant-grid/internal/grid"
)

// Designer is the farm designer API used to create plants and report progress
type Designer interface {
	AddPlant(ctx context.Context, plant farmdesigner.Plant) (*farmdesigner.Plant, error)
	Log(ctx context.Context, message, messageType string) error
}

// Options controls how plants are submitted
type Options struct {
	// DryRun when enabled will generate and log plants without creating them
	DryRun bool

	// QPS limits create calls per second (0 means unlimited)
	QPS float32
}

// Planter submits one plant per grid point
type Planter struct {
	designer Designer
	logger   *slog.Logger
	config   *config.Config
	options  Options
	limiter  flowcontrol.RateLimiter
}

// NewPlanter creates a new planter. The designer may be nil in dry-run mode.
func NewPlanter(designer Designer, logger *slog.Logger, cfg *config.Config, opts Options) *Planter {
	p := &Planter{
		designer: designer,
		logger:   logger,
		config:   cfg,
		options:  opts,
	}
	if opts.QPS > 0 {
		p.limiter = flowcontrol.NewTokenBucketRateLimiter(opts.QPS, 1)
	}
	return p
}

// Result summarizes a run
type Result struct {
	Planted []farmdesigner.Plant
	Message string
}

// Run creates a plant for every point of the configured grid, in order.
// The first failing call stops the run; plants created before it are kept.
func (p *Planter) Run(ctx context.Context) (*Result, error) {
	if p.designer == nil && !p.options.DryRun {
		return nil, fmt.Errorf("no designer configured")
	}

	startTime := time.Now()
	if p.limiter != nil {
		defer p.limiter.Stop()
	}

	g := grid.New(p.config)
	p.logger.Info("grid generated",
		"count", len(g.Points),
		"columns", len(g.UniqueX),
		"rows", len(g.UniqueY),
		"slug", p.config.Slug,
		"dry_run", p.options.DryRun)

	result := &Result{Planted: make([]farmdesigner.Plant, 0, len(g.Points))}
	for i, point := range g.Points {
		plant := farmdesigner.NewPlant(point.X, point.Y, p.config.Radius, p.config.Slug, p.config.Name)

		if p.options.DryRun {
			p.logger.Warn("[DRY-RUN] would add plant",
				"x", point.X,
				"y", point.Y,
				"slug", plant.OpenFarmSlug)
			result.Planted = append(result.Planted, plant)
			continue
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return result, fmt.Errorf("rate limiter wait failed: %w", err)
			}
		}

		created, err := p.designer.AddPlant(ctx, plant)
		if err != nil {
			return result, fmt.Errorf("plant %d of %d: %w", i+1, len(g.Points), err)
		}

		p.logger.Debug("added plant",
			"id", created.ID,
			"x", point.X,
			"y", point.Y)
		result.Planted = append(result.Planted, *created)
	}

	result.Message = SuccessMessage(len(g.Points), p.config)

	if p.options.DryRun {
		p.logger.Info("planting completed (dry-run)",
			"duration", time.Since(startTime),
			"message", result.Message)
		return result, nil
	}

	if err := p.designer.Log(ctx, result.Message, farmdesigner.MessageSuccess); err != nil {
		return result, fmt.Errorf("failed to report success: %w", err)
	}

	p.logger.Info("planting completed",
		"duration", time.Since(startTime),
		"count", len(result.Planted))

	return result, nil
}

// SuccessMessage is the notice sent after all plants were added
func SuccessMessage(count int, cfg *config.Config) string {
	return fmt.Sprintf("%d %s plants added, starting at (%d, %d).", count, cfg.Slug, cfg.XStart, cfg.YStart)
}
