package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

var compareJSON bool

var compareCmd = &cobra.Command{
	Use:   "compare [query | product-a product-b]",
	Short: "Compare two products",
	Long: `Finds the best offer for each of two products and reports price per kg.

Pass one free-text query naming both products, or the two products as
separate arguments.

Examples:
  sampann compare "chia seeds vs kalmi dates"
  sampann compare "chana dal" "moong dal"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "output comparison as JSON")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	if err := loadServices(cmd); err != nil {
		return err
	}
	if compareService == nil {
		return errNotConfigured("compare")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	var (
		cmp *domain.Comparison
		err error
	)
	if len(args) == 2 {
		cmp, err = compareService.CompareTargets(ctx, [2]string{args[0], args[1]})
	} else {
		cmp, err = compareService.Compare(ctx, args[0])
	}
	if err != nil {
		return fmt.Errorf("compare failed: %w", err)
	}

	if compareJSON {
		return outputJSON(cmd, cmp)
	}
	outputComparison(cmd, cmp)
	return nil
}

func outputComparison(cmd *cobra.Command, cmp *domain.Comparison) {
	for _, o := range cmp.Offers {
		cmd.Printf("%s\n", titleStyle.Sprint(strings.ToUpper(o.Target)))
		cmd.Printf("  %s  %s", o.Hit.Title, priceStyle.Sprint(formatPrice(o.Hit.Price)))
		if o.Hit.Weight != nil {
			cmd.Printf("  %s", domain.NetQuantity{Value: o.Hit.Weight.Value, Unit: o.Hit.Weight.Unit})
		}
		cmd.Println()
		if o.UnitPricePerKg != nil {
			cmd.Printf("  ₹%.2f per kg\n", *o.UnitPricePerKg)
		} else {
			cmd.Println("  per-kg price n/a")
		}
		if o.Hit.Link != "" {
			cmd.Printf("  %s\n", o.Hit.Link)
		}
		cmd.Printf("  %s\n\n", dimStyle.Sprintf("%d matching products", o.Matches))
	}
}
