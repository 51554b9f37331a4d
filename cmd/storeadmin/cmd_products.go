package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/afandal/storeadmin/app/models"
	"github.com/afandal/storeadmin/app/storefront"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage the catalog",
}

// storeadmin products list
var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := bootCLI()
		if err != nil {
			return err
		}
		products, err := c.svc.Catalog.List(cmd.Context(), c.sess)
		if err != nil {
			return err
		}

		w := c.table("ID", "NAME", "PRICE", "STOCK", "SIZES", "BESTSELLER")
		for _, p := range products {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%t\n",
				p.ID, p.Name, price(p.Price), p.Stock, strings.Join(p.Sizes, ","), p.Bestseller)
		}
		return w.Flush()
	},
}

// storeadmin products add --name ... --image front.png --image s3:products/back.png
var productsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a product (images: local paths or s3:/local: references)",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		name, _ := f.GetString("name")
		description, _ := f.GetString("description")
		rawPrice, _ := f.GetString("price")
		stock, _ := f.GetInt("stock")
		sizes, _ := f.GetStringSlice("size")
		bestseller, _ := f.GetBool("bestseller")
		images, _ := f.GetStringArray("image")

		if strings.TrimSpace(rawPrice) == "" {
			return storefront.NewValidationError(map[string]string{"price": "The price field is required."})
		}
		p, err := decimal.NewFromString(strings.TrimSpace(rawPrice))
		if err != nil {
			return storefront.NewValidationError(map[string]string{"price": "The price must be a number."})
		}

		c, err := bootCLI()
		if err != nil {
			return err
		}
		msg, err := c.svc.Catalog.Add(cmd.Context(), c.sess, models.NewProduct{
			Name:        name,
			Description: description,
			Price:       p,
			Stock:       stock,
			Sizes:       sizes,
			Bestseller:  bestseller,
			Images:      images,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, msg)
		return nil
	},
}

// storeadmin products remove <id>
var productsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := bootCLI()
		if err != nil {
			return err
		}
		msg, err := c.svc.Catalog.Remove(cmd.Context(), c.sess, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, msg)
		return nil
	},
}

func init() {
	f := productsAddCmd.Flags()
	f.String("name", "", "Product name")
	f.String("description", "", "Product description")
	f.String("price", "", "Base price (0 for free items)")
	f.Int("stock", 0, "Units in stock")
	f.StringSlice("size", nil, "Size (S, M, L, XL, XXL); repeatable")
	f.Bool("bestseller", false, "Mark as bestseller")
	f.StringArray("image", nil, "Image path or disk reference; up to 4")

	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsAddCmd)
	productsCmd.AddCommand(productsRemoveCmd)
}
