package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/service"
)

func newCartCmd(e *env) *cobra.Command {
	var user, promo string

	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change a user's cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := e.core.CartService.GetCart(cmd.Context(), user, promo)
			if err != nil {
				return err
			}
			return e.printCart(cmd, view)
		},
	}
	cmd.PersistentFlags().StringVarP(&user, "user", "u", "", "user id owning the cart")
	cmd.PersistentFlags().StringVar(&promo, "promo", "", "promo code to price the cart with")
	_ = cmd.MarkPersistentFlagRequired("user")

	var quantity int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := e.core.CartService.AddItem(cmd.Context(), user, args[0], quantity, promo)
			if err != nil {
				return err
			}
			return e.printCart(cmd, view)
		},
	}
	add.Flags().IntVar(&quantity, "qty", 1, "quantity to add")

	set := &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be a number: %w", err)
			}
			view, err := e.core.CartService.SetQuantity(cmd.Context(), user, args[0], qty, promo)
			if err != nil {
				return err
			}
			return e.printCart(cmd, view)
		},
	}

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := e.core.CartService.RemoveItem(cmd.Context(), user, args[0], promo)
			if err != nil {
				return err
			}
			return e.printCart(cmd, view)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := e.core.CartService.ClearCart(cmd.Context(), user); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cart cleared")
			return nil
		},
	}

	cmd.AddCommand(add, set, remove, clearCmd)
	return cmd
}

func (e *env) printCart(cmd *cobra.Command, v *service.CartView) error {
	out := cmd.OutOrStdout()
	if len(v.Items) == 0 {
		fmt.Fprintln(out, "Your cart is empty.")
		return nil
	}

	tw := newTable(cmd)
	fmt.Fprintln(tw, "ID\tTITLE\tQTY\tPRICE")
	for _, item := range v.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", item.Product.ID, item.Product.Title, item.Quantity, e.price(item.Product))
	}
	fmt.Fprintf(tw, "\t\t\t\n")
	fmt.Fprintf(tw, "Items\t\t%d\t\n", v.ItemCount)
	fmt.Fprintf(tw, "Subtotal\t\t\t%s\n", e.format(v.Totals.Subtotal))
	switch v.PromoStatus {
	case service.PromoApplied:
		fmt.Fprintf(tw, "Discount (%s)\t\t\t-%s\n", v.Promo.Code, e.format(v.Totals.DiscountAmount))
	case service.PromoInvalid:
		fmt.Fprintf(tw, "Promo %s\t\t\tinvalid\n", v.PromoInput)
	}
	fmt.Fprintf(tw, "Total\t\t\t%s\n", e.format(v.Totals.Total))
	return tw.Flush()
}

func newFavoritesCmd(e *env) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Show or toggle a user's favorite products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := e.core.FavoritesService.List(cmd.Context(), user)
			if err != nil {
				return err
			}
			return e.printFavorites(cmd, view)
		},
	}
	cmd.PersistentFlags().StringVarP(&user, "user", "u", "", "user id owning the favorites")
	_ = cmd.MarkPersistentFlagRequired("user")

	toggle := &cobra.Command{
		Use:   "toggle <product-id>",
		Short: "Add or remove a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, favorited, err := e.core.FavoritesService.Toggle(cmd.Context(), user, args[0])
			if err != nil {
				return err
			}
			state := "removed from"
			if favorited {
				state = "added to"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "product %s %s favorites\n", args[0], state)
			return e.printFavorites(cmd, view)
		},
	}

	cmd.AddCommand(toggle)
	return cmd
}

func (e *env) printFavorites(cmd *cobra.Command, v *service.FavoritesView) error {
	if len(v.IDs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No favorites yet.")
		return nil
	}
	tw := newTable(cmd)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE")
	resolved := make(map[string]bool, len(v.Products))
	for _, p := range v.Products {
		resolved[p.ID] = true
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Title, e.price(p))
	}
	for _, id := range v.IDs {
		if !resolved[id] {
			fmt.Fprintf(tw, "%s\t(not cached)\t\n", id)
		}
	}
	return tw.Flush()
}
