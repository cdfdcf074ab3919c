package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/locator/internal/toggle"
)

func newToggleCommand(a *app) *cobra.Command {
	var value bool

	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Toggle a value through the locator-provided toggle service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("value") {
				value = a.cfg.Toggle.Initial
			}

			vm, err := toggle.NewViewModelFromLocator(a.locator, toggle.Model{Value: value}, a.cfg.Toggle.ServiceName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%t\n", vm.UpdatedValue())
			return nil
		},
	}

	cmd.Flags().BoolVar(&value, "value", true, "value to toggle (defaults to toggle.initial from config)")
	return cmd
}

func newNamesCommand(a *app) *cobra.Command {
	var resolve bool

	cmd := &cobra.Command{
		Use:   "names",
		Short: "List the keys registered at startup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if resolve {
				if _, err := toggle.Resolve(a.locator, a.cfg.Toggle.ServiceName); err != nil {
					return err
				}
			}
			for _, name := range a.locator.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&resolve, "resolve", false, "resolve the toggle service before listing, creating it if needed")
	return cmd
}
