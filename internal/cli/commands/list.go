package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"testexe/internal/config"
	"testexe/internal/discovery"
	"testexe/internal/execution"
	"testexe/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	filter    *discovery.Filter
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	filter *discovery.Filter,
	formatter *ui.Formatter,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		filter:    filter,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	runner, err := execution.NewRunner(args[0], nil, execution.WithParserOptions(lc.config.GetParserOptions()))
	if err != nil {
		return err
	}

	pattern := lc.config.Flags.Filter
	if pattern != "" {
		if err := runner.SelectMatching(func(fullName string) bool {
			return lc.filter.Match(fullName, pattern)
		}); err != nil {
			return err
		}
		if enabledCases(runner) == 0 {
			color.Yellow("No tests found")
			return nil
		}
	}

	lc.formatter.PrintTree(runner.Tree(), pattern != "")
	return nil
}
