package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kula-app/farmware-plant-grid/internal/config"
	"github.com/kula-app/farmware-plant-grid/internal/farmdesigner"
	"github.com/kula-app/farmware-plant-grid/internal/grid"
	"github.com/kula-app/farmware-plant-grid/internal/logging"
	"github.com/kula-app/farmware-plant-grid/internal/planter"
)

// EnvAPIURL overrides the web app API base derived from the token
const EnvAPIURL = "FARMBOT_API_URL"

// The run function is like the main function, except that it takes in operating system fundamentals as arguments, and returns an error.
//
// If the run function finishes without an error, every plant of the grid was added.
// If the run function returns an error, the farmware stopped at the first failure.
func run(ctx context.Context, args []string, getenv func(key string) string, stdout io.Writer) error {
	// Parse command-line flags
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	dryRun := flags.Bool("dry-run", false, "Generate the grid and log plants without adding them")
	printGrid := flags.Bool("print", false, "Print the grid coordinates before adding plants")
	apiURL := flags.String("api-url", getenv(EnvAPIURL), "Web app API base URL (default: derived from API_TOKEN)")
	qps := flags.Float64("qps", 0, "Maximum add-plant requests per second (0 means unlimited)")
	logLevel := flags.String("log-level", "info", "Log level: debug, info, warn, error")
	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		return err
	}

	// Stop between plants when the device asks the farmware to exit
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := slog.New(logging.NewTerminalHandler(level))

	logger.Info("Plant Grid farmware starting")
	if *dryRun {
		logger.Warn("DRY-RUN MODE ENABLED: Plants will be generated but not added to the farm designer")
	}

	// Load farmware inputs
	cfg, err := config.Load(config.FarmwareName, getenv)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid grid configuration: %w", err)
	}

	logger.Info("grid configuration loaded",
		"x_num", cfg.XNum,
		"y_num", cfg.YNum,
		"x_step", cfg.XStep,
		"y_step", cfg.YStep,
		"x_start", cfg.XStart,
		"y_start", cfg.YStart,
		"radius", cfg.Radius,
		"name", cfg.Name,
		"slug", cfg.Slug)

	if *printGrid {
		if err := grid.New(cfg).Render(stdout); err != nil {
			return err
		}
	}

	// The planter never calls the designer in dry-run mode
	var designer planter.Designer
	if !*dryRun {
		opts := farmdesigner.OptionsFromEnv(getenv)
		opts.APIURL = *apiURL
		client, err := farmdesigner.NewClient(opts, logger)
		if err != nil {
			return fmt.Errorf("failed to create farm designer client: %w", err)
		}
		designer = client
	}

	p := planter.NewPlanter(designer, logger, cfg, planter.Options{
		DryRun: *dryRun,
		QPS:    float32(*qps),
	})
	if _, err := p.Run(ctx); err != nil {
		return fmt.Errorf("failed to add plants: %w", err)
	}

	return nil
}
