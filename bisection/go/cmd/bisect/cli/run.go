// Package cli implements the subcommands of the bisect executable.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/hako/durafmt"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"go.skia.org/perfbisect/bisection/go/bisect"
	"go.skia.org/perfbisect/bisection/go/config"
	"go.skia.org/perfbisect/bisection/go/diff"
	"go.skia.org/perfbisect/go/now"
	"go.skia.org/perfbisect/go/sklog"
)

// flag names
const (
	configFlagName   = "config"
	firstFlagName    = "first"
	lastFlagName     = "last"
	jsonFlagName     = "json"
	verboseFlagName  = "verbose"
	promPortFlagName = "prom_port"
)

// runCmd holds the flag values and any internal state necessary for
// executing the `run` subcommand.
type runCmd struct {
	configPath string
	first      string
	last       string
	jsonPath   string
	verbose    bool
	promPort   string

	// out receives the human readable results. Defaults to stdout.
	out io.Writer
	// logs receives log lines. Defaults to stderr.
	logs sklog.SyncWriter
	// lister overrides the resolver built from the config.
	lister bisect.CommitLister
}

// RunCommand returns a [*cli.Command] that bisects a commit range.
func RunCommand() *cli.Command {
	cmd := &runCmd{}
	return &cli.Command{
		Name:        "run",
		Description: "run bisects the commits between --first and --last using the steps of --config.",
		Usage:       "bisect run --config <file> --first <git hash> --last <git hash>",
		Flags:       cmd.flags(),
		Action:      cmd.action,
	}
}

func (cmd *runCmd) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        configFlagName,
			Usage:       "YAML configuration file",
			Required:    true,
			Destination: &cmd.configPath,
		}, &cli.StringFlag{
			Name:        firstFlagName,
			Usage:       "git hash of a commit before the change",
			Required:    true,
			Destination: &cmd.first,
		}, &cli.StringFlag{
			Name:        lastFlagName,
			Usage:       "git hash of a commit on or after the change",
			Required:    true,
			Destination: &cmd.last,
		}, &cli.StringFlag{
			Name:        jsonFlagName,
			Usage:       "if set, write the JSON report of every Diff to this file",
			Destination: &cmd.jsonPath,
		}, &cli.BoolFlag{
			Name:        verboseFlagName,
			Usage:       "log debug messages",
			Destination: &cmd.verbose,
		}, &cli.StringFlag{
			Name:        promPortFlagName,
			Usage:       "if set, serve Prometheus metrics on this address, e.g. ':20000'",
			Destination: &cmd.promPort,
		},
	}
}

func (cmd *runCmd) action(cliCtx *cli.Context) error {
	ctx := cliCtx.Context
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.out
	if out == nil {
		out = os.Stdout
	}
	logs := cmd.logs
	if logs == nil {
		logs = os.Stderr
	}
	sklog.SetLogger(sklog.NewWriterLogger(logs, cmd.verbose))

	cfg, err := config.Load(cmd.configPath)
	if err != nil {
		return err
	}
	lister := cmd.lister
	if lister == nil {
		lister = cfg.Resolver()
	}

	opts := cfg.Options()
	if cmd.promPort != "" {
		reg := prometheus.NewRegistry()
		opts.Metrics = bisect.NewMetrics(reg)
		go func() {
			sklog.Infof("Serving metrics on %s", cmd.promPort)
			if err := http.ListenAndServe(cmd.promPort, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})); err != nil {
				sklog.Errorf("Metrics server failed: %s", err)
			}
		}()
	}

	start := now.Now(ctx)
	diffs, err := bisect.Run(ctx, lister, cmd.first, cmd.last, cfg.BuildSteps(), opts)
	sklog.Infof("Bisection finished in %s.", durafmt.Parse(now.Since(ctx, start)).String())
	var noChange *bisect.NoChangeError
	if errors.As(err, &noChange) {
		fmt.Fprintf(out, "%s\n\n", noChange.Message)
		noChange.Diff.WriteTable(out)
		if jsonErr := cmd.writeJSON(ctx, []*diff.Diff{noChange.Diff}); jsonErr != nil {
			sklog.Errorf("Failed to write report: %s", jsonErr)
		}
		return err
	}
	if err != nil {
		return err
	}

	for i, d := range diffs {
		commits := d.Commits()
		fmt.Fprintf(out, "Change %d of %d: %s -> %s %q\n", i+1, len(diffs), commits[0], commits[len(commits)-1], commits[len(commits)-1].Subject())
		d.WriteTable(out)
		fmt.Fprintln(out)
	}
	return cmd.writeJSON(ctx, diffs)
}

func (cmd *runCmd) writeJSON(ctx context.Context, diffs []*diff.Diff) error {
	if cmd.jsonPath == "" {
		return nil
	}
	reports := make([]*diff.Report, 0, len(diffs))
	for _, d := range diffs {
		reports = append(reports, d.Report(ctx))
	}
	b, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding report")
	}
	if err := os.WriteFile(cmd.jsonPath, b, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", cmd.jsonPath)
	}
	return nil
}
