package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTypesCommand creates the types command.
func NewTypesCommand(g *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the expense types claim files may use",
		Long: `List the expense-type codes from the configuration file and the form
label each one is entered as. Items with any other type are skipped on submit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _ := commandContext(cmd)
			cfg, err := loadConfig(ctx, g)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			codes := cfg.ExpenseTypes.Codes()
			if len(codes) == 0 {
				fmt.Fprintln(out, "No expense types configured.")
				return nil
			}

			width := 0
			for _, code := range codes {
				if len(code) > width {
					width = len(code)
				}
			}
			for _, code := range codes {
				fmt.Fprintf(out, "%-*s  %s\n", width, code, cfg.ExpenseTypes[code])
			}
			return nil
		},
	}
}
