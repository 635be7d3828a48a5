package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/errors"
)

func errorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "errors [code]",
		Short: "List error codes or explain one",
		Long: `Without arguments, list every error code reactor reports. With a
code, print its category, message and explanation.

Examples:
  reactor errors
  reactor errors C001`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				code := strings.ToUpper(args[0])
				tmpl, ok := errors.Lookup(code)
				if !ok {
					return errors.New("CLI001").
						WithDetailf("unknown error code %s", args[0]).
						WithSuggestion("Run 'reactor errors' to list the codes")
				}
				fmt.Fprintf(out, "%s (%s): %s\n", code, tmpl.Category, tmpl.Message)
				if tmpl.Detail != "" {
					fmt.Fprintf(out, "\n  %s\n", tmpl.Detail)
				}
				return nil
			}
			for _, code := range errors.Codes() {
				tmpl, _ := errors.Lookup(code)
				fmt.Fprintf(out, "%-7s %-9s %s\n", code, tmpl.Category, tmpl.Message)
			}
			return nil
		},
	}
}
