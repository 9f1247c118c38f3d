package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fjod/shopdesk/internal/units"
)

func quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote <product-id> <amount>",
		Short: "Show how much of a product an amount of money buys",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := appCtx.catalog.Get(args[0])
			if err != nil {
				return err
			}
			q := units.QuoteFor(args[1], p)
			fmt.Fprintf(appCtx.out, "%.2f buys %s of %s\n", q.Amount, q.Display, p.Name)
			return nil
		},
	}
}
