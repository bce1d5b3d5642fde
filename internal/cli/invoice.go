package cli

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/billing"
	billingService "github.com/cmlabs-hris/guardforce-backend-go/internal/service/billing"
	timesheetService "github.com/cmlabs-hris/guardforce-backend-go/internal/service/timesheet"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// InvoiceDraft is the derived invoice of a batch.
type InvoiceDraft struct {
	Items  []billing.LineItemResponse `json:"items"`
	Totals billing.TotalsResponse     `json:"totals"`
}

// NewInvoiceCommand creates the invoice command.
func NewInvoiceCommand(rootOpts *RootOptions) *cobra.Command {
	var file, tax string

	cmd := &cobra.Command{
		Use:   "invoice -f batch.yaml [--tax 20]",
		Short: "Print derived line items and totals for a batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, billingCfg, err := loadSettings(rootOpts)
			if err != nil {
				return err
			}

			taxRate := billingCfg.DefaultTaxRatePercent
			if tax != "" {
				taxRate, err = decimal.NewFromString(tax)
				if err != nil {
					return fmt.Errorf("invalid --tax %q: %w", tax, err)
				}
				if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(100)) {
					return fmt.Errorf("--tax must be between 0 and 100")
				}
			}

			batch, err := LoadBatch(file)
			if err != nil {
				return err
			}

			draft := DeriveInvoice(billingService.NewDeriver(timesheetService.NewRuleEngine()), batch, billingCfg.DefaultHourlyRate, taxRate)
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), draft)
			}
			return printInvoice(cmd.OutOrStdout(), draft)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "batch YAML file")
	cmd.Flags().StringVar(&tax, "tax", "", "tax rate percent, defaults to the billing configuration")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// DeriveInvoice derives line items and totals for every shift of batch.
func DeriveInvoice(deriver *billingService.Deriver, batch Batch, defaultRate, taxRate decimal.Decimal) InvoiceDraft {
	shifts, byShift := batch.ToDomain()
	items := deriver.DeriveLineItems(shifts, byShift, defaultRate)
	totals := deriver.AggregateTotals(items, taxRate)

	draft := InvoiceDraft{
		Items: make([]billing.LineItemResponse, 0, len(items)),
		Totals: billing.TotalsResponse{
			Subtotal:       totals.Subtotal.StringFixed(2),
			TaxRatePercent: totals.TaxRatePercent.String(),
			TaxAmount:      totals.TaxAmount.StringFixed(2),
			Total:          totals.Total.StringFixed(2),
		},
	}
	for _, item := range items {
		draft.Items = append(draft.Items, billing.LineItemResponse{
			ShiftID:      item.ShiftID,
			AssignmentID: item.AssignmentID,
			Description:  item.Description,
			Quantity:     item.Quantity.StringFixed(2),
			Rate:         item.Rate.StringFixed(2),
			Amount:       item.Amount.StringFixed(2),
		})
	}
	return draft
}

func printInvoice(w io.Writer, draft InvoiceDraft) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tDESCRIPTION\tHOURS\tRATE\tAMOUNT")
	for i, item := range draft.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, item.Description, item.Quantity, item.Rate, item.Amount)
	}
	fmt.Fprintf(tw, "\t\t\tSubtotal\t%s\n", draft.Totals.Subtotal)
	fmt.Fprintf(tw, "\t\t\tTax (%s%%)\t%s\n", draft.Totals.TaxRatePercent, draft.Totals.TaxAmount)
	fmt.Fprintf(tw, "\t\t\tTotal\t%s\n", draft.Totals.Total)
	return tw.Flush()
}
