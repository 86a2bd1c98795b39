package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cohsim/datarecording"
	"github.com/sarchlab/cohsim/mem/trace"
	"github.com/sarchlab/cohsim/monitoring"
	"github.com/sarchlab/cohsim/script"
)

type runOptions struct {
	input       string
	recordDB    string
	monitor     bool
	monitorPort int
	openBrowser bool
	keepMonitor bool
	verbose     bool
	quietEcho   bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation script.",
		Long: "Run reads a simulation script from a file, or from stdin when " +
			"no input is given, and prints the result of every access.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	monitorPort, _ := strconv.Atoi(os.Getenv(envMonitorPort))

	flags := runCmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "",
		"script file to run, stdin if empty or -")
	flags.StringVar(&opts.recordDB, "record-db", os.Getenv(envRecordDB),
		"record every access into <path>.sqlite3")
	flags.BoolVar(&opts.monitor, "monitor", false,
		"serve the simulation state over HTTP")
	flags.IntVar(&opts.monitorPort, "monitor-port", monitorPort,
		"port of the monitoring server, random if 0")
	flags.BoolVar(&opts.openBrowser, "open-browser", false,
		"open the monitoring page in a browser")
	flags.BoolVar(&opts.keepMonitor, "keep-monitor", false,
		"keep the monitoring server up after the script ends, until interrupted")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false,
		"log every access to stderr")
	flags.BoolVarP(&opts.quietEcho, "quiet-echo", "q", false,
		"do not echo the script lines")

	return runCmd
}

func (o *runOptions) run(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	source, numLines, err := o.openScript(stdin)
	if err != nil {
		return err
	}

	b := script.MakeRunnerBuilder().
		WithOutput(stdout).
		WithQuietEcho(o.quietEcho)

	if o.verbose {
		b = b.WithHook(trace.NewTracer(log.New(os.Stderr, "", 0)))
	}

	if o.recordDB != "" {
		recorder := datarecording.New(o.recordDB)
		defer recorder.Close()

		b = b.WithHook(trace.NewDBTracer(recorder))
	}

	if o.monitor || o.openBrowser {
		var finish func()

		b, finish = o.attachMonitor(b, numLines)
		defer finish()
	}

	err = b.Build("Hierarchy").Run(ctx, source)
	if err != nil {
		return err
	}

	if o.keepMonitor && (o.monitor || o.openBrowser) {
		fmt.Fprintln(os.Stderr, "Script finished, press Ctrl+C to stop the monitor.")
		<-ctx.Done()
	}

	return nil
}

func (o *runOptions) openScript(stdin io.Reader) (io.Reader, uint64, error) {
	if o.input == "" || o.input == "-" {
		return stdin, 0, nil
	}

	content, err := os.ReadFile(o.input)
	if err != nil {
		return nil, 0, err
	}

	return bytes.NewReader(content), countStatements(content), nil
}

// countStatements counts the lines that are neither blank nor comments.
func countStatements(content []byte) uint64 {
	var n uint64

	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			n++
		}
	}

	return n
}

func (o *runOptions) attachMonitor(
	b script.RunnerBuilder,
	numLines uint64,
) (script.RunnerBuilder, func()) {
	m := monitoring.NewMonitor().WithPortNumber(o.monitorPort)
	stats := trace.NewStatsTracer()
	m.RegisterStatsTracer(stats)

	url := m.StartServer()
	if o.openBrowser {
		m.OpenBrowser(url)
	}

	bar := m.CreateProgressBar("script", numLines)

	b = b.
		WithHook(stats).
		WithBuildCallback(m.RegisterHierarchy).
		WithStatementCallback(func(script.Statement) {
			bar.IncrementFinished(1)
		})

	finish := func() {
		m.CompleteProgressBar(bar)

		err := m.StopServer(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot stop monitor: %v\n", err)
		}
	}

	return b, finish
}
