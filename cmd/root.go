package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kilianp07/pca-scheduler/config"
	"github.com/kilianp07/pca-scheduler/core/metrics"
	"github.com/kilianp07/pca-scheduler/core/scheduler"
	"github.com/kilianp07/pca-scheduler/infra/logger"
	_ "github.com/kilianp07/pca-scheduler/infra/metrics"
)

// cli carries what every subcommand needs once the configuration is loaded.
type cli struct {
	cfgPath  string
	cfg      *config.Config
	sink     metrics.MetricsSink
	closeLog func() error
}

// Execute runs the CLI.
func Execute() error { return newRootCmd().Execute() }

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:               "pcasched",
		Short:             "Assign PCA workers to the days of a month",
		SilenceUsage:      true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return c.setup() },
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.teardown()
		},
	}
	root.PersistentFlags().StringVarP(&c.cfgPath, "config", "c", "", "configuration file (yaml or json)")
	root.AddCommand(newParseCmd(), newGenerateCmd(c), newShellCmd(c))
	return root
}

func (c *cli) setup() error {
	// a local .env may carry PCA_ overrides; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(c.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	closeLog, err := logger.Setup(cfg.Logging.Options())
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	sink, err := metrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = closeLog()
		return fmt.Errorf("metrics sink: %w", err)
	}
	c.cfg, c.closeLog, c.sink = cfg, closeLog, sink
	return nil
}

func (c *cli) teardown() error {
	if c.sink != nil {
		if err := metrics.Flush(c.sink); err != nil {
			logger.New("main").Errorf("flush metrics: %v", err)
		}
	}
	if c.closeLog != nil {
		return c.closeLog()
	}
	return nil
}

// generator builds a Generator from the loaded configuration. A non-zero
// seed overrides the configured one.
func (c *cli) generator(component string, seed uint64) (*scheduler.Generator, error) {
	gcfg := c.cfg.Generator
	if seed != 0 {
		gcfg.Seed = seed
	}
	return scheduler.NewGenerator(gcfg,
		scheduler.WithLogger(logger.New(component)),
		scheduler.WithSink(c.sink),
	)
}
