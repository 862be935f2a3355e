package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"testexe/internal/cli"
	"testexe/internal/config"
	"testexe/internal/discovery"
	"testexe/internal/storage"
	"testexe/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	Run    *RunCommand
	List   *ListCommand
	Scan   *ScanCommand
	Faills *FaillsCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	scanner := discovery.NewScanner(cfg.PathsToIgnore)
	filter := discovery.NewFilter()
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(color.Output, cfg.ProjectPath)
	errorViewer := ui.NewErrorViewer(jsonStorage)

	return &Commands{
		Run:    NewRunCommand(cfg, filter, jsonStorage, formatter, errorViewer),
		List:   NewListCommand(cfg, filter, formatter),
		Scan:   NewScanCommand(cfg, scanner, filter, formatter),
		Faills: NewFaillsCommand(cfg, jsonStorage, errorViewer),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	applyFlags := func(cmd *cobra.Command, args []string) error {
		// Update config with flags after parsing
		cfg.Flags = flags.ToConfigFlags()
		if flags.Processors > 0 {
			cfg.Processors = flags.Processors
		}
		// Errors past this point are about the tests, not the command line
		cmd.SilenceUsage = true
		return nil
	}

	// Run command
	runCmd := &cobra.Command{
		Use:     "run <executable>",
		Short:   "Run the tests of a unit test executable",
		Long:    "Discover and run the tests of a Google Test, Boost.Test or NUnit executable, reporting progress live",
		Args:    cobra.ExactArgs(1),
		RunE:    c.Run.Execute,
		PreRunE: applyFlags,
	}
	runCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Run only test cases whose full name matches the pattern (supports wildcards, e.g., 'Suite.*' or '*Payment*')")
	runCmd.Flags().IntVar(&flags.Only, "only", -1, "Run only the test unit with this id (see list)")
	runCmd.Flags().BoolVar(&flags.Shuffle, "shuffle", false, "Run test cases in random order")
	runCmd.Flags().BoolVar(&flags.Wait, "wait", false, "Pause the test process until Enter is pressed, to attach a debugger")
	runCmd.Flags().BoolVar(&flags.Repeat, "repeat", false, "Run the tests again until a test fails or the run is interrupted")
	runCmd.Flags().StringVarP(&flags.LogLevel, "log-level", "l", config.DefaultLogLevel, "Framework log level: units, messages or all")
	runCmd.Flags().StringVar(&flags.ReportFormat, "report-format", config.DefaultReportFormat, "Format of the report written to stdout with --report: json or yaml")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only test cases that failed in the last run")
	runCmd.Flags().BoolVar(&flags.OpenFaills, "open-faills", false, "Open the faills viewer when the run finishes with failures")
	runCmd.Flags().Bool("report", false, "Write the run report to stdout instead of the statistics table")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list <executable>",
		Short:   "List discovered tests",
		Long:    "Discover and list the test tree of a unit test executable without running it",
		Args:    cobra.ExactArgs(1),
		RunE:    c.List.Execute,
		PreRunE: applyFlags,
	}
	listCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Show only test cases whose full name matches the pattern")
	rootCmd.AddCommand(listCmd)

	// Scan command
	scanCmd := &cobra.Command{
		Use:     "scan [dir]",
		Short:   "Find unit test executables",
		Long:    "Scan a directory for unit test executables and list them in parallel, optionally running all of them",
		Args:    cobra.MaximumNArgs(1),
		RunE:    c.Scan.Execute,
		PreRunE: applyFlags,
	}
	scanCmd.Flags().IntVarP(&flags.Processors, "processors", "p", config.DefaultProcessors, "Number of processors to use")
	scanCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Filter executables by file name pattern")
	scanCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "With --run, stop on the first failing executable")
	scanCmd.Flags().Bool("run", false, "Run every executable found")
	rootCmd.AddCommand(scanCmd)

	// Faills command
	faillsCmd := &cobra.Command{
		Use:   "faills",
		Short: "View test failures interactively",
		Long:  "Display test failures from the last test run in an interactive viewer",
		RunE:  c.Faills.Execute,
	}
	rootCmd.AddCommand(faillsCmd)
}
