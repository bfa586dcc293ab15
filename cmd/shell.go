package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pca-scheduler/core/session"
	"github.com/kilianp07/pca-scheduler/infra/logger"
	"github.com/kilianp07/pca-scheduler/pkg/export"
	"github.com/kilianp07/pca-scheduler/pkg/render"
)

const shellHelp = `commands:
  month M Y          plan month M of year Y
  add NAME SPEC      set availability, e.g. add Alice 1-5, 10
  add "NAME" SPEC    same, for names containing spaces
  list               show workers and their days
  generate [N]       generate N schedules
  show N [FILE]      print schedule N, or write it to FILE
  export N FILE      write schedule N to FILE (.png, .json, .csv, .txt)
  help               show this help
  quit               leave the shell
`

var errQuit = errors.New("quit")

func newShellCmd(c *cli) *cobra.Command {
	var seed uint64
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Build a roster and generate schedules interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := c.generator("generator", seed)
			if err != nil {
				return err
			}
			sess := session.New(gen, logger.New("shell"))
			p, err := c.cfg.Calendar.Period()
			if err != nil {
				return err
			}
			if err := sess.SetPeriod(int(p.Month), p.Year); err != nil {
				return err
			}
			sh := &shell{sess: sess, out: cmd.OutOrStdout(), render: c.cfg.Render, count: gen.Config().DefaultCount}
			return sh.run(cmd.InOrStdin())
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for reproducible runs")
	return cmd
}

type shell struct {
	sess   *session.Session
	out    io.Writer
	render render.Options
	count  int
}

func (sh *shell) run(in io.Reader) error {
	fmt.Fprintf(sh.out, "planning %s, type help for commands\n", sh.sess.Period().Label())
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(sh.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(sh.out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := sh.exec(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
	}
}

func (sh *shell) exec(line string) error {
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch strings.ToLower(verb) {
	case "month":
		return sh.month(rest)
	case "add":
		return sh.add(rest)
	case "list":
		return sh.list()
	case "generate":
		return sh.generate(rest)
	case "show":
		return sh.show(rest)
	case "export":
		return sh.export(rest)
	case "help", "?":
		_, err := fmt.Fprint(sh.out, shellHelp)
		return err
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, type help", verb)
	}
}

func (sh *shell) month(args string) error {
	f := strings.Fields(args)
	if len(f) != 2 {
		return fmt.Errorf("usage: month M Y")
	}
	m, err := strconv.Atoi(f[0])
	if err != nil {
		return fmt.Errorf("month: %w", err)
	}
	y, err := strconv.Atoi(f[1])
	if err != nil {
		return fmt.Errorf("year: %w", err)
	}
	if err := sh.sess.SetPeriod(m, y); err != nil {
		return err
	}
	_, err = fmt.Fprintf(sh.out, "planning %s\n", sh.sess.Period().Label())
	return err
}

func (sh *shell) add(args string) error {
	name, spec, err := splitName(args)
	if err != nil {
		return err
	}
	if err := sh.sess.AddWorker(name, spec); err != nil {
		return err
	}
	set, _ := sh.sess.Store().Get(name)
	_, err = fmt.Fprintf(sh.out, "%s: %s\n", name, set)
	return err
}

// splitName separates the worker name from the availability text. A name
// in double quotes may contain spaces.
func splitName(args string) (name, spec string, err error) {
	if strings.HasPrefix(args, `"`) {
		var ok bool
		name, spec, ok = strings.Cut(args[1:], `"`)
		if !ok {
			return "", "", fmt.Errorf("unterminated quote in %q", args)
		}
	} else {
		name, spec, _ = strings.Cut(args, " ")
	}
	name, spec = strings.TrimSpace(name), strings.TrimSpace(spec)
	if name == "" || spec == "" {
		return "", "", fmt.Errorf("usage: add NAME SPEC")
	}
	return name, spec, nil
}

func (sh *shell) list() error {
	lines := sh.sess.Workers()
	if len(lines) == 0 {
		_, err := fmt.Fprintln(sh.out, "no workers")
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(sh.out, l); err != nil {
			return err
		}
	}
	return nil
}

func (sh *shell) generate(args string) error {
	count := sh.count
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil {
			return fmt.Errorf("usage: generate [N]")
		}
		count = n
	}
	set, err := sh.sess.Generate(count)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "generated %d schedules for %s\n", set.Len(), sh.sess.Period().Label())
	if set.Partial() {
		fmt.Fprintf(sh.out, "only %d unique schedules exist for this availability\n", set.Len())
	}
	for i := range set.Schedules {
		fmt.Fprintf(sh.out, "  schedule %d\n", i+1)
	}
	return nil
}

func (sh *shell) show(args string) error {
	f := strings.Fields(args)
	if len(f) == 0 || len(f) > 2 {
		return fmt.Errorf("usage: show N [FILE]")
	}
	if len(f) == 2 {
		return sh.export(args)
	}
	n, err := strconv.Atoi(f[0])
	if err != nil {
		return fmt.Errorf("usage: show N [FILE]")
	}
	s, err := sh.sess.Schedule(n)
	if err != nil {
		return err
	}
	return export.WriteText(sh.out, s)
}

func (sh *shell) export(args string) error {
	f := strings.Fields(args)
	if len(f) != 2 {
		return fmt.Errorf("usage: export N FILE")
	}
	n, err := strconv.Atoi(f[0])
	if err != nil {
		return fmt.Errorf("usage: export N FILE")
	}
	s, err := sh.sess.Schedule(n)
	if err != nil {
		return err
	}
	format, err := export.FormatFromPath(f[1])
	if err != nil {
		return err
	}
	if err := writeSchedule(f[1], format, s, sh.sess.Period(), sh.render); err != nil {
		return err
	}
	_, err = fmt.Fprintf(sh.out, "wrote %s\n", f[1])
	return err
}
