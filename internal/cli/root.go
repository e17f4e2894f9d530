// Package cli is the gstcalc command line: offline access to the invoice
// calculator, the CGST/SGST/IGST splitter and the amount-in-words converter.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. A fresh tree per call keeps flag state
// out of package globals.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gstcalc",
		Short:         "GST invoice arithmetic from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTotalsCmd())
	root.AddCommand(newSplitCmd())
	root.AddCommand(newWordsCmd())
	return root
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}
