package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"testexe/internal/config"
	"testexe/internal/discovery"
	"testexe/internal/domain"
	"testexe/internal/execution"
	"testexe/internal/storage"
	"testexe/internal/tree"
	"testexe/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	filter    *discovery.Filter
	storage   storage.Storage
	formatter *ui.Formatter
	viewer    ui.Viewer
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	filter *discovery.Filter,
	st storage.Storage,
	formatter *ui.Formatter,
	viewer ui.Viewer,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		filter:    filter,
		storage:   st,
		formatter: formatter,
		viewer:    viewer,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	path := args[0]
	level, err := rc.config.GetLogLevel()
	if err != nil {
		return err
	}
	writeReport, _ := cmd.Flags().GetBool("report")

	out := color.Output
	if writeReport {
		out = color.Error
	}
	console := ui.NewConsole(out, nil, level > domain.LogUnits)
	collector := execution.NewCollector(path, "", 0)

	runner, err := execution.NewRunner(path, execution.MultiObserver{console, collector},
		execution.WithParserOptions(rc.config.GetParserOptions()))
	if err != nil {
		return err
	}
	defer runner.Close()

	console.CountCases = runner.CountTestCases
	console.OnWaiting = func(string, int) {
		// The worker must not block on the terminal
		go func() {
			bufio.NewReader(os.Stdin).ReadString('\n')
			runner.Continue()
		}()
	}

	if err := rc.selectTests(runner); err != nil {
		return err
	}

	console.SetProgress(ui.NewProgressBar(enabledCases(runner), "Running "+filepath.Base(path)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	options := runner.EnabledOptions(rc.config.GetRunOptions())
	if err := runner.Run(level, options); err != nil {
		return err
	}

	finished := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			color.Yellow("Interrupted, stopping the test process")
			runner.Abort()
		case <-finished:
		}
	}()
	runner.Wait()
	close(finished)

	report := collector.Report()
	report.Meta.Dialect = runner.Dialect().String()
	report.Meta.Options = options.String()
	if report.Meta.TotalTestCases == 0 {
		report.Meta.TotalTestCases = enabledCases(runner)
	}

	if err := rc.storage.Save(&report); err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}
	rc.saveHistory(&report)

	if writeReport {
		if err := storage.Export(os.Stdout, &report, rc.config.Flags.ReportFormat); err != nil {
			return err
		}
	} else {
		rc.formatter.PrintMetaStats(&report)
	}

	if report.Success() {
		return nil
	}
	if rc.config.Flags.OpenFaills && len(report.Details) > 0 {
		if err := rc.viewer.View(&report); err != nil {
			return err
		}
	}
	if report.Meta.Crashed {
		return fmt.Errorf("test process %s ended unexpectedly", filepath.Base(path))
	}
	return fmt.Errorf("%d test case(s) failed", report.Meta.FailedTestCases)
}

// selectTests applies --only, --failed and --filter, in that order of precedence
func (rc *RunCommand) selectTests(runner *execution.Runner) error {
	flags := rc.config.Flags
	switch {
	case flags.Only >= 0:
		return runner.SelectSingle(flags.Only)
	case flags.OnlyFailed:
		last, err := rc.storage.Load()
		if err != nil {
			return fmt.Errorf("no previous run to take failures from: %w", err)
		}
		failed := make(map[string]bool)
		for _, f := range last.Details {
			if !f.Resolved {
				failed[f.TestName] = true
			}
		}
		if len(failed) == 0 {
			color.Green("✓ No unresolved failures in the last run")
		}
		return runner.SelectMatching(func(fullName string) bool { return failed[fullName] })
	case flags.Filter != "":
		return runner.SelectMatching(func(fullName string) bool {
			return rc.filter.Match(fullName, flags.Filter)
		})
	}
	return runner.SelectAll()
}

// saveHistory appends the report to the database when one is configured
func (rc *RunCommand) saveHistory(report *domain.RunReport) {
	if rc.config.DatabaseDSN == "" {
		return
	}
	db, err := storage.NewSQLStorage(rc.config.DatabaseDSN)
	if err != nil {
		color.Yellow("Run history not saved: %v", err)
		return
	}
	defer db.Close()

	if err := db.Init(context.Background()); err != nil {
		color.Yellow("Run history not saved: %v", err)
		return
	}
	if err := db.Save(report); err != nil {
		color.Yellow("Run history not saved: %v", err)
	}
}

func enabledCases(runner *execution.Runner) int {
	count := 0
	runner.TraverseTestTree(tree.Funcs{Case: func(tc *domain.TestUnit) {
		if tc.Enabled {
			count++
		}
	}})
	return count
}
