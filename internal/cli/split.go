package cli

import (
	"fmt"

	"github.com/smallbiznis/gstbill/internal/gst"
	"github.com/spf13/cobra"
)

func newSplitCmd() *cobra.Command {
	var (
		tax    string
		seller string
		buyer  string
	)

	cmd := &cobra.Command{
		Use:     "split",
		Short:   "Split a tax total into CGST/SGST or IGST",
		Example: `  gstcalc split --tax 100 --seller "Tamil Nadu" --buyer "Kerala"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := gst.ParseField("tax", tax)
			if err != nil {
				return err
			}
			printSplit(cmd, gst.SplitTax(amount, seller, buyer))
			return nil
		},
	}

	cmd.Flags().StringVar(&tax, "tax", "", "tax total to split")
	cmd.Flags().StringVar(&seller, "seller", "", "seller state")
	cmd.Flags().StringVar(&buyer, "buyer", "", "buyer state")
	_ = cmd.MarkFlagRequired("tax")
	return cmd
}

func printSplit(cmd *cobra.Command, split gst.TaxSplit) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Mode:          %s\n", split.Mode)
	fmt.Fprintf(out, "CGST:          %s\n", split.CGST.String())
	fmt.Fprintf(out, "SGST:          %s\n", split.SGST.String())
	fmt.Fprintf(out, "IGST:          %s\n", split.IGST.String())
}
