package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <instruction>...",
		Short: "Dispatch one plain-English instruction to a task",
		Long: `Send an instruction to the LLM, which picks one registered task and
extracts its arguments. The task then runs against the data directory.

Examples:
  dataworks run "count the Wednesdays in dates.txt"
  dataworks run sort the contacts file by last name
  dataworks run --data-root ./data "find the most similar pair of comments"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCommand,
	}
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}

	instruction := strings.Join(args, " ")
	result, err := a.dispatcher.Dispatch(cmd.Context(), instruction)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Invoked() {
		fmt.Fprintln(out, result.Output)
	} else {
		fmt.Fprintln(out, result.Text)
	}
	return nil
}
