package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Alturino/salesrep/catalog/internal/service"
	"github.com/Alturino/salesrep/internal/cli"
	"github.com/Alturino/salesrep/internal/constants"
	"github.com/Alturino/salesrep/internal/log"
)

const (
	flagCategory   = "category"
	flagCustomer   = "customer"
	flagQuery      = "query"
	flagCategories = "categories"
	flagWatch      = "watch"
)

// Commands returns the catalog and sync commands.
func Commands() []*cobra.Command {
	return []*cobra.Command{newCatalogCommand(), newSyncCommand()}
}

func newCatalogCommand() *cobra.Command {
	catalog := &cobra.Command{
		Use:   "catalog",
		Short: "Read and refresh the local catalog cache",
	}

	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch a category, or the category list, from the remote and cache it",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, app, err := cli.NewApp(cmd, constants.APP_CATALOG_SERVICE)
			if err != nil {
				return err
			}
			defer app.Close(c)
			svc := service.NewCatalogService(app.Products, app.Categories)

			refreshCategories, _ := cmd.Flags().GetBool(flagCategories)
			if refreshCategories {
				return svc.RefreshCategories(c)
			}
			categoryID, _ := cmd.Flags().GetString(flagCategory)
			if categoryID == "" {
				return fmt.Errorf("one of --%s or --%s is required", flagCategory, flagCategories)
			}
			customerID, _ := cmd.Flags().GetString(flagCustomer)
			if err := svc.RefreshCategory(c, categoryID, customerID); err != nil {
				return err
			}
			products, err := svc.ListCategory(c, categoryID)
			if err != nil {
				return err
			}
			return cli.Print(cmd, products)
		},
	}
	refresh.Flags().String(flagCategory, "", "category id")
	refresh.Flags().String(flagCustomer, "", "customer id scoping prices and availability")
	refresh.Flags().Bool(flagCategories, false, "refresh the category list instead of a category")

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the cached products of a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, app, err := cli.NewApp(cmd, constants.APP_CATALOG_SERVICE)
			if err != nil {
				return err
			}
			defer app.Close(c)
			svc := service.NewCatalogService(app.Products, app.Categories)

			categoryID, _ := cmd.Flags().GetString(flagCategory)
			products, err := svc.ListCategory(c, categoryID)
			if err != nil {
				return err
			}
			return cli.Print(cmd, products)
		},
	}
	list.Flags().String(flagCategory, "", "category id")
	list.MarkFlagRequired(flagCategory)

	categoriesCmd := &cobra.Command{
		Use:   "categories",
		Short: "Print the cached categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, app, err := cli.NewApp(cmd, constants.APP_CATALOG_SERVICE)
			if err != nil {
				return err
			}
			defer app.Close(c)
			svc := service.NewCatalogService(app.Products, app.Categories)

			categories, err := svc.ListCategories(c)
			if err != nil {
				return err
			}
			return cli.Print(cmd, categories)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop the cached products of a category, or the category list",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, app, err := cli.NewApp(cmd, constants.APP_CATALOG_SERVICE)
			if err != nil {
				return err
			}
			defer app.Close(c)
			svc := service.NewCatalogService(app.Products, app.Categories)

			var deleted int64
			clearCategories, _ := cmd.Flags().GetBool(flagCategories)
			categoryID, _ := cmd.Flags().GetString(flagCategory)
			switch {
			case clearCategories:
				deleted, err = svc.ClearCategories(c)
			case categoryID != "":
				deleted, err = svc.ClearCategory(c, categoryID)
			default:
				return fmt.Errorf("one of --%s or --%s is required", flagCategory, flagCategories)
			}
			if err != nil {
				return err
			}
			return cli.Print(cmd, map[string]int64{"deleted": deleted})
		},
	}
	clearCmd.Flags().String(flagCategory, "", "category id")
	clearCmd.Flags().Bool(flagCategories, false, "clear the category list instead of a category")

	search := &cobra.Command{
		Use:   "search",
		Short: "Filter the cached products of a category by name or description",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, app, err := cli.NewApp(cmd, constants.APP_CATALOG_SERVICE)
			if err != nil {
				return err
			}
			defer app.Close(c)
			svc := service.NewCatalogService(app.Products, app.Categories)

			categoryID, _ := cmd.Flags().GetString(flagCategory)
			query, _ := cmd.Flags().GetString(flagQuery)
			watch, _ := cmd.Flags().GetBool(flagWatch)
			if !watch {
				products, err := svc.ListCategory(c, categoryID)
				if err != nil {
					return err
				}
				return cli.Print(cmd, service.Filter(products, query))
			}

			logger := zerolog.Ctx(c).With().Str(log.KeyTag, "catalog search").Logger()
			for st := range svc.ObserveSearch(c, categoryID, query) {
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
	search.Flags().String(flagCategory, "", "category id")
	search.Flags().String(flagQuery, "", "case-insensitive text to match")
	search.Flags().Bool(flagWatch, false, "keep printing results as the cache changes")
	search.MarkFlagRequired(flagCategory)

	catalog.AddCommand(refresh, list, categoriesCmd, clearCmd, search)
	return catalog
}
