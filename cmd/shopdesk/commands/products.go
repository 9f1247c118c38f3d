package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fjod/shopdesk/internal/domain"
	"github.com/fjod/shopdesk/internal/units"
)

func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the product catalog",
	}
	cmd.AddCommand(productsListCmd(), productsAddCmd(), productsRemoveCmd())
	return cmd
}

func productsListCmd() *cobra.Command {
	var (
		search   string
		lowStock bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			var products []domain.Product
			switch {
			case lowStock:
				products = appCtx.catalog.LowStock(appCtx.cfg.LowStockThreshold)
			case search != "":
				products = appCtx.catalog.Search(search)
			default:
				products = appCtx.catalog.List()
			}
			return printProducts(appCtx.out, products, appCtx.cfg.LowStockThreshold)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive name filter")
	cmd.Flags().BoolVar(&lowStock, "low-stock", false, "only products below LOW_STOCK_THRESHOLD")
	return cmd
}

func printProducts(out io.Writer, products []domain.Product, threshold float64) error {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Category", "Price", "Stock", ""})
	for _, p := range products {
		flag := ""
		if p.Stock < threshold {
			flag = "LOW"
		}
		t.AppendRow(table.Row{p.ID, p.Name, p.Category, fmt.Sprintf("%.2f/%s", p.Price, p.Unit), units.Format(p.Stock, p.Unit), flag})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d products", len(products))})
	t.Render()
	return nil
}

func productsAddCmd() *cobra.Command {
	var in domain.ProductInput
	var unit string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Unit = domain.Unit(unit)
			p, err := appCtx.catalog.Add(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(appCtx.out, "Added %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "product name")
	cmd.Flags().Float64Var(&in.Price, "price", 0, "price per unit")
	cmd.Flags().StringVar(&unit, "unit", string(domain.UnitKg), "kg, gram, liter or piece")
	cmd.Flags().StringVar(&in.Category, "category", "", "category label")
	cmd.Flags().Float64Var(&in.Stock, "stock", 0, "quantity in stock")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func productsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.catalog.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(appCtx.out, "Removed %s\n", args[0])
			return nil
		},
	}
}
