package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"testexe/internal/config"
	"testexe/internal/discovery"
	"testexe/internal/domain"
	"testexe/internal/execution"
	"testexe/internal/parser"
	"testexe/internal/ui"
)

// ScanCommand handles the scan command
type ScanCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	filter    *discovery.Filter
	formatter *ui.Formatter
}

// NewScanCommand creates a new ScanCommand
func NewScanCommand(
	cfg *config.Config,
	scanner *discovery.Scanner,
	filter *discovery.Filter,
	formatter *ui.Formatter,
) *ScanCommand {
	return &ScanCommand{
		config:    cfg,
		scanner:   scanner,
		filter:    filter,
		formatter: formatter,
	}
}

// Execute runs the command
func (sc *ScanCommand) Execute(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		sc.config.Flags.ScanPath = args[0]
	}
	runAll, _ := cmd.Flags().GetBool("run")

	candidates, err := sc.scanner.Scan(sc.config.GetScanPath())
	if err != nil {
		return err
	}
	candidates = sc.filter.FilterByName(candidates, sc.config.Flags.Filter)

	executables := classified(candidates)
	if len(executables) == 0 {
		color.Yellow("No test executables found")
		return nil
	}

	parserOptions := execution.WithParserOptions(sc.config.GetParserOptions())
	task := execution.InventoryTask(parserOptions)
	label := "Listing executables"
	if runAll {
		task = execution.RunTask(domain.LogUnits, sc.config.GetRunOptions(), parserOptions)
		label = "Running executables"
	}

	pool := execution.NewWorkerPool(sc.config.Processors, task)
	pool.SetProgress(ui.NewProgressBar(len(executables), label))

	results, duration, err := pool.ExecuteWithOptions(executables, sc.config.Flags.FailFast)
	if err != nil {
		return err
	}

	sc.formatter.PrintInventory(results)
	color.Cyan("\nProcessed %d executable(s) in %.2fs", len(results), duration.Seconds())

	if runAll {
		failed := 0
		for _, r := range results {
			if !r.Success() {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d executable(s) failed", failed)
		}
	}
	return nil
}

// classified keeps the files that look like test executables, including
// those built without gui support so the reason can be reported
func classified(paths []string) []string {
	var executables []string
	for _, path := range paths {
		dialect, err := parser.Classify(path)
		if err == nil && dialect != parser.Unsupported {
			executables = append(executables, path)
		}
	}
	return executables
}
