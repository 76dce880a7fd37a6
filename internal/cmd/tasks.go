package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// NewTasksCommand creates the tasks command
func NewTasksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the registered tasks and their parameters",
		Args:  cobra.NoArgs,
		RunE:  tasksCommand,
	}
}

// tasksCommand prints the catalog in registration order.
func tasksCommand(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, desc := range a.registry.Descriptors() {
		fmt.Fprintf(out, "%s\n    %s\n", desc.Name, desc.Description)

		names := make([]string, 0, len(desc.Parameters.Properties))
		for name := range desc.Parameters.Properties {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			prop := desc.Parameters.Properties[name]
			required := ""
			for _, r := range desc.Parameters.Required {
				if r == name {
					required = " (required)"
					break
				}
			}
			fmt.Fprintf(out, "    --%s%s: %s\n", name, required, prop.Description)
		}
		fmt.Fprintln(out)
	}
	return nil
}
