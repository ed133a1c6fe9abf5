package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/nextbest/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Work with item catalogs",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a catalog YAML file for errors",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogValidate,
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cat, err := catalog.LoadFile(args[0])
	if err != nil {
		var invalid *catalog.InvalidCatalogError
		if !errors.As(err, &invalid) {
			return err
		}
		if jsonOutput {
			if perr := printJSON(out, map[string]any{"valid": false, "errors": invalid.Errors}); perr != nil {
				return perr
			}
		} else {
			for _, e := range invalid.Errors {
				fmt.Fprintf(out, "  %s: %s\n", e.Field, e.Message)
			}
		}
		return fmt.Errorf("%s: %d problem(s) found", args[0], len(invalid.Errors))
	}

	if jsonOutput {
		return printJSON(out, map[string]any{"valid": true, "items": cat.Len()})
	}
	fmt.Fprintf(out, "%s: OK (%d items)\n", args[0], cat.Len())
	return nil
}
