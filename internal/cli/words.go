package cli

import (
	"fmt"

	"github.com/smallbiznis/gstbill/internal/gst"
	"github.com/spf13/cobra"
)

func newWordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "words AMOUNT",
		Short:   "Write an amount in Indian rupee words",
		Example: `  gstcalc words 123456.50`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := gst.ParseField("amount", args[0])
			if err != nil {
				return err
			}
			words, err := gst.AmountToWords(amount)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), words)
			return nil
		},
	}
}
