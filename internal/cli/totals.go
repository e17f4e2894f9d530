package cli

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/gstbill/internal/gst"
	"github.com/spf13/cobra"
)

func newTotalsCmd() *cobra.Command {
	var (
		lines  []string
		seller string
		buyer  string
	)

	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Compute subtotal, tax and rounded total for invoice lines",
		Long: `Compute invoice totals. Each --line is "quantity,unit_price,tax_rate_percent";
the tax rate may be omitted for a 0% line. Pass --seller and --buyer to also
print the CGST/SGST/IGST split.`,
		Example: `  gstcalc totals --line 2,100,18 --line 1,50,5 --line 3,33.33,12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := make([]gst.LineInput, 0, len(lines))
			for i, raw := range lines {
				line, err := parseLineFlag(raw)
				if err != nil {
					return fmt.Errorf("line %d: %w", i+1, err)
				}
				inputs = append(inputs, line)
			}

			totals, err := gst.ComputeTotals(inputs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Subtotal:      %s\n", totals.Subtotal.String())
			fmt.Fprintf(out, "Tax total:     %s\n", totals.TaxTotal.String())
			fmt.Fprintf(out, "Total amount:  %s\n", totals.TotalAmount.String())
			fmt.Fprintf(out, "Round off:     %s\n", totals.RoundOff().String())
			fmt.Fprintf(out, "Rounded total: %s\n", totals.RoundedTotal.String())
			if seller != "" || buyer != "" {
				printSplit(cmd, gst.SplitTax(totals.TaxTotal, seller, buyer))
			}
			fmt.Fprintf(out, "In words:      %s\n", gst.WordsOrSentinel(totals.RoundedTotal))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&lines, "line", "l", nil, `invoice line as "qty,price,rate" (repeatable)`)
	cmd.Flags().StringVar(&seller, "seller", "", "seller state")
	cmd.Flags().StringVar(&buyer, "buyer", "", "buyer state")
	return cmd
}

func parseLineFlag(raw string) (gst.LineInput, error) {
	parts := strings.Split(raw, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return gst.LineInput{}, fmt.Errorf("want qty,price[,rate], got %q", raw)
	}
	rate := "0"
	if len(parts) == 3 && strings.TrimSpace(parts[2]) != "" {
		rate = parts[2]
	}
	line, err := gst.ParseLine(parts[0], parts[1], rate)
	if err != nil {
		return gst.LineInput{}, err
	}
	return line, line.Validate()
}
