package cmd

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Alturino/salesrep/cart/internal/service"
	"github.com/Alturino/salesrep/cart/pkg/request"
	"github.com/Alturino/salesrep/internal/cli"
	"github.com/Alturino/salesrep/internal/constants"
	"github.com/Alturino/salesrep/internal/log"
)

const (
	flagProduct  = "product"
	flagQuantity = "quantity"
	flagCustomer = "customer"
	flagWatch    = "watch"
)

// Commands returns the cart and order commands.
func Commands() []*cobra.Command {
	return []*cobra.Command{newCartCommand(), newOrderCommand()}
}

func newCartCommand() *cobra.Command {
	cart := &cobra.Command{
		Use:   "cart",
		Short: "Change the cart, validated against cached stock",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add units of a product to the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, app, err := cli.NewApp(cmd, constants.APP_CART_SERVICE)
			if err != nil {
				return err
			}
			defer app.Close(c)
			svc := service.NewCartService(app.Store, app.Products)

			productID, _ := cmd.Flags().GetString(flagProduct)
			quantity, _ := cmd.Flags().GetInt32(flagQuantity)
			if err := svc.AddItem(c, request.AddItem{ProductID: productID, Quantity: quantity}); err != nil {
				return err
			}
			return printCart(c, cmd, svc)
		},
	}
	add.Flags().String(flagProduct, "", "product id")
	add.Flags().Int32(flagQuantity, 1, "units to add")
	add.MarkFlagRequired(flagProduct)

	set := &cobra.Command{
		Use:   "set",
		Short: "Set the cart quantity of a product, zero removes it",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, app, err := cli.NewApp(cmd, constants.APP_CART_SERVICE)
			if err != nil {
				return err
			}
			defer app.Close(c)
			svc := service.NewCartService(app.Store, app.Products)

			productID, _ := cmd.Flags().GetString(flagProduct)
			quantity, _ := cmd.Flags().GetInt32(flagQuantity)
			if err := svc.UpdateQuantity(c, request.UpdateQuantity{ProductID: productID, Quantity: quantity}); err != nil {
				return err
			}
			return printCart(c, cmd, svc)
		},
	}
	set.Flags().String(flagProduct, "", "product id")
	set.Flags().Int32(flagQuantity, 0, "exact quantity")
	set.MarkFlagRequired(flagProduct)
	set.MarkFlagRequired(flagQuantity)

	remove := &cobra.Command{
		Use:   "remove",
		Short: "Remove a product from the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, app, err := cli.NewApp(cmd, constants.APP_CART_SERVICE)
			if err != nil {
				return err
			}
			defer app.Close(c)
			svc := service.NewCartService(app.Store, app.Products)

			productID, _ := cmd.Flags().GetString(flagProduct)
			if err := svc.RemoveItem(c, productID); err != nil {
				return err
			}
			return printCart(c, cmd, svc)
		},
	}
	remove.Flags().String(flagProduct, "", "product id")
	remove.MarkFlagRequired(flagProduct)

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the cart joined with the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, app, err := cli.NewApp(cmd, constants.APP_CART_SERVICE)
			if err != nil {
				return err
			}
			defer app.Close(c)
			svc := service.NewCartService(app.Store, app.Products)

			watch, _ := cmd.Flags().GetBool(flagWatch)
			if !watch {
				return printCart(c, cmd, svc)
			}

			logger := zerolog.Ctx(c).With().Str(log.KeyTag, "cart list").Logger()
			for st := range svc.ObserveCart(c) {
				if st.IsError() {
					logger.Error().Err(st.Err).Msg(st.Err.Error())
					continue
				}
				if err := cli.Print(cmd, st.Data); err != nil {
					return err
				}
			}
			return nil
		},
	}
	list.Flags().Bool(flagWatch, false, "keep printing the cart as it or the catalog changes")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every line from the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, app, err := cli.NewApp(cmd, constants.APP_CART_SERVICE)
			if err != nil {
				return err
			}
			defer app.Close(c)
			svc := service.NewCartService(app.Store, app.Products)

			deleted, err := svc.ClearCart(c)
			if err != nil {
				return err
			}
			return cli.Print(cmd, map[string]int64{"deleted": deleted})
		},
	}

	cart.AddCommand(add, set, remove, list, clearCmd)
	return cart
}

func printCart(c context.Context, cmd *cobra.Command, svc service.CartService) error {
	cart, err := svc.Snapshot(c)
	if err != nil {
		return err
	}
	return cli.Print(cmd, cart)
}

func newOrderCommand() *cobra.Command {
	order := &cobra.Command{
		Use:   "order",
		Short: "Submit the cart as an order",
	}

	place := &cobra.Command{
		Use:   "place",
		Short: "Submit the cart for a customer and clear it once accepted",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, app, err := cli.NewApp(cmd, constants.APP_CART_SERVICE)
			if err != nil {
				return err
			}
			defer app.Close(c)
			cartService := service.NewCartService(app.Store, app.Products)
			checkoutService := service.NewCheckoutService(cartService, app.Remote)

			customerID, _ := cmd.Flags().GetString(flagCustomer)
			placed, err := checkoutService.PlaceOrder(c, customerID)
			if placed.ID != "" {
				if printErr := cli.Print(cmd, placed); printErr != nil {
					return printErr
				}
			}
			return err
		},
	}
	place.Flags().String(flagCustomer, "", "customer id")
	place.MarkFlagRequired(flagCustomer)

	order.AddCommand(place)
	return order
}
