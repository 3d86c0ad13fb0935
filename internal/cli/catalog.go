package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/domain"
)

func newProductsCmd(e *env) *cobra.Command {
	var (
		query    string
		category string
		minPrice float64
		maxPrice float64
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products matching the given filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listing, err := e.core.CatalogService.ListProducts(cmd.Context(), domain.FilterCriteria{
				SearchQuery: query,
				Category:    category,
				PriceRange:  domain.PriceRange{Min: minPrice, Max: maxPrice},
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if listing.Stale {
				fmt.Fprintf(out, "offline: showing catalog cached at %s\n", listing.LastFetched.Format("2006-01-02 15:04:05 MST"))
			}
			if listing.Empty {
				if listing.Narrowed {
					fmt.Fprintln(out, "No products match the current filters.")
				} else {
					fmt.Fprintln(out, "The catalog is empty.")
				}
				return nil
			}

			tw := newTable(cmd)
			fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE")
			for _, p := range listing.Products {
				cat, _ := p.CategoryName()
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Title, cat, e.price(p))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d of %d products\n", len(listing.Products), listing.Total)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&query, "query", "q", "", "case-insensitive title search")
	f.StringVar(&category, "category", domain.CategoryAll, "exact category name")
	f.Float64Var(&minPrice, "min", math.Inf(-1), "minimum price, inclusive")
	f.Float64Var(&maxPrice, "max", math.Inf(1), "maximum price, inclusive")
	return cmd
}

func newProductCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show a single product and its share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			detail, err := e.core.CatalogService.GetProduct(ctx, args[0])
			if err != nil {
				return err
			}
			share, err := e.core.CatalogService.ShareLink(ctx, args[0])
			if err != nil {
				return err
			}

			p := detail.Product
			cat, _ := p.CategoryName()
			tw := newTable(cmd)
			fmt.Fprintf(tw, "ID\t%s\n", p.ID)
			fmt.Fprintf(tw, "Title\t%s\n", p.Title)
			fmt.Fprintf(tw, "Category\t%s\n", cat)
			fmt.Fprintf(tw, "Price\t%s\n", e.price(p))
			fmt.Fprintf(tw, "Rating\t%.1f\n", p.Rating)
			fmt.Fprintf(tw, "Image\t%s\n", p.PrimaryImage())
			fmt.Fprintf(tw, "Share\t%s\n", share.URL)
			if detail.Stale {
				fmt.Fprintf(tw, "Source\tcache (offline)\n")
			}
			return tw.Flush()
		},
	}
}

func newCategoriesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List catalog categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cats, stale, err := e.core.CatalogService.Categories(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, strings.Join(cats, "\n"))
			if stale {
				fmt.Fprintln(out, "(from cached catalog)")
			}
			return nil
		},
	}
}

func newRefreshCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the catalog and update the offline cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := e.core.CatalogService.RefreshCatalog(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog refreshed: %d products cached\n", n)
			return nil
		},
	}
}

func newPromoCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:         "promo <code>",
		Short:       "Check whether a promo code is accepted",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationStandalone: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			promo, err := domain.ResolvePromo(args[0])
			if err != nil {
				return fmt.Errorf("%q: %w", args[0], err)
			}
			if promo.Code == "" {
				return fmt.Errorf("no promo code given")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s off\n", promo.Code, percent(promo))
			return nil
		},
	}
}

func percent(p domain.PromoState) string {
	return decimal.NewFromFloat(p.DiscountRate).Mul(decimal.NewFromInt(100)).String() + "%"
}
