package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pca-scheduler/core/model"
	"github.com/kilianp07/pca-scheduler/core/scheduler"
	"github.com/kilianp07/pca-scheduler/core/session"
	"github.com/kilianp07/pca-scheduler/infra/logger"
	"github.com/kilianp07/pca-scheduler/infra/mqtt"
	"github.com/kilianp07/pca-scheduler/pkg/export"
)

type generateFlags struct {
	roster  string
	count   int
	month   int
	year    int
	out     string
	formats []string
	seed    uint64
	publish bool
}

func newGenerateCmd(c *cli) *cobra.Command {
	f := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate schedules from a roster file",
		Example: `  pcasched generate --roster team.yaml --count 3 --month 2 --year 2025 --format png,csv`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.runGenerate(ctx, cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.roster, "roster", "r", "", "roster file (yaml or json)")
	cmd.Flags().IntVarP(&f.count, "count", "n", 0, "number of schedules (default from config)")
	cmd.Flags().IntVar(&f.month, "month", 0, "month 1-12 (default from roster or config)")
	cmd.Flags().IntVar(&f.year, "year", 0, "year (default from roster or config)")
	cmd.Flags().StringVarP(&f.out, "out", "o", ".", "output directory")
	cmd.Flags().StringSliceVarP(&f.formats, "format", "f", []string{"png"}, "output formats: png, json, csv, text")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed for reproducible runs")
	cmd.Flags().BoolVar(&f.publish, "publish", false, "publish the schedule set over MQTT")
	_ = cmd.MarkFlagRequired("roster")
	return cmd
}

func (c *cli) runGenerate(ctx context.Context, cmd *cobra.Command, f *generateFlags) error {
	formats, err := export.ParseFormats(f.formats)
	if err != nil {
		return err
	}
	roster, err := scheduler.LoadRoster(f.roster)
	if err != nil {
		return err
	}
	gen, err := c.generator("generator", f.seed)
	if err != nil {
		return err
	}
	log := logger.New("generate-command")
	sess := session.New(gen, log)
	if err := roster.Apply(sess.Store()); err != nil {
		return err
	}
	period, err := c.period(roster, f.month, f.year)
	if err != nil {
		return err
	}
	if err := sess.SetPeriod(int(period.Month), period.Year); err != nil {
		return err
	}

	count := f.count
	if count == 0 {
		count = gen.Config().DefaultCount
	}
	set, err := sess.Generate(count)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "generated %d of %d schedules for %s (%d workers, %d of %d permutations tried)\n",
		set.Len(), count, period.Label(), sess.Store().Len(), set.Trials, set.Space)
	if set.Partial() {
		fmt.Fprintf(out, "only %d unique schedules exist for this availability\n", set.Len())
	}

	files, err := writeSet(f.out, formats, set, period, c.cfg.Render)
	if err != nil {
		return err
	}
	for _, p := range files {
		fmt.Fprintln(out, p)
	}

	if f.publish || c.cfg.Publish.Enabled {
		if err := c.publish(ctx, set); err != nil {
			return err
		}
		fmt.Fprintf(out, "published set %s\n", set.ID)
	}
	return nil
}

// period resolves the month from flags, then the roster, then the config.
func (c *cli) period(r scheduler.Roster, month, year int) (model.Period, error) {
	p, err := c.cfg.Calendar.Period()
	if err != nil {
		return model.Period{}, err
	}
	if rp, ok, err := r.Period(); err != nil {
		return model.Period{}, err
	} else if ok {
		p = rp
	}
	if month != 0 {
		np, err := model.NewPeriod(month, p.Year)
		if err != nil {
			return model.Period{}, err
		}
		p = np
	}
	if year != 0 {
		np, err := model.NewPeriod(int(p.Month), year)
		if err != nil {
			return model.Period{}, err
		}
		p = np
	}
	return p, nil
}

func (c *cli) publish(ctx context.Context, set model.ScheduleSet) error {
	pcfg := c.cfg.Publish
	pcfg.Enabled = true
	if err := pcfg.Validate(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	pub, err := mqtt.NewPahoPublisher(pcfg)
	if err != nil {
		return err
	}
	defer pub.Close()
	return pub.Publish(ctx, set)
}
