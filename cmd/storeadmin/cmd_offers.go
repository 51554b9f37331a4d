package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/afandal/storeadmin/app/models"
)

var offersCmd = &cobra.Command{
	Use:   "offers",
	Short: "Manage discount offers",
}

// storeadmin offers list
var offersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List offers",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := bootCLI()
		if err != nil {
			return err
		}
		offers, err := c.svc.Offers.List(cmd.Context(), c.sess)
		if err != nil {
			return err
		}

		now := time.Now()
		w := c.table("ID", "TITLE", "DISCOUNT", "VALID TILL", "STATE", "APPLIES TO")
		for _, o := range offers {
			state := "expired"
			if o.Active(now) {
				state = "active"
			}
			fmt.Fprintf(w, "%s\t%s\t%s%%\t%s\t%s\t%s\n",
				o.ID, o.Title, o.DiscountPercent.String(), o.ValidTill.Local().Format("2006-01-02 15:04"), state, appliesTo(o))
		}
		return w.Flush()
	},
}

func appliesTo(o models.Offer) string {
	if o.ApplyToAllProducts {
		return "all products"
	}
	names := make([]string, 0, len(o.ApplicableProducts))
	for _, ref := range o.ApplicableProducts {
		if ref.Name != "" {
			names = append(names, ref.Name)
		} else {
			names = append(names, ref.ID)
		}
	}
	return strings.Join(names, ", ")
}

// storeadmin offers add --title --discount --valid-till [--all | --product id...]
var offersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an offer",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		title, _ := f.GetString("title")
		discount, _ := f.GetInt("discount")
		validTill, _ := f.GetString("valid-till")
		all, _ := f.GetBool("all")
		products, _ := f.GetStringSlice("product")

		c, err := bootCLI()
		if err != nil {
			return err
		}
		msg, err := c.svc.Offers.Create(cmd.Context(), c.sess, models.NewOffer{
			Title:              title,
			DiscountPercent:    discount,
			ValidTill:          validTill,
			ApplyToAllProducts: all,
			ApplicableProducts: products,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, msg)
		return nil
	},
}

// storeadmin offers remove <id>
var offersRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete an offer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := bootCLI()
		if err != nil {
			return err
		}
		msg, err := c.svc.Offers.Delete(cmd.Context(), c.sess, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, msg)
		return nil
	},
}

// storeadmin offers board
var offersBoardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the catalog priced against active offers",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := bootCLI()
		if err != nil {
			return err
		}
		board, err := c.svc.Offers.Board(cmd.Context(), c.sess)
		if err != nil {
			return err
		}

		fmt.Fprintf(c.out, "%d of %d offers active\n\n", board.ActiveOffers, len(board.Offers))
		w := c.table("ID", "NAME", "PRICE", "FINAL PRICE")
		for _, p := range board.Products {
			final := price(p.FinalPrice)
			if p.Discounted() {
				final += " *"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, price(p.Price), final)
		}
		return w.Flush()
	},
}

func init() {
	f := offersAddCmd.Flags()
	f.String("title", "", "Offer title")
	f.Int("discount", 0, "Discount percent (1-100)")
	f.String("valid-till", "", "Expiry date (2006-01-02) or RFC 3339 timestamp")
	f.Bool("all", false, "Apply to every product")
	f.StringSlice("product", nil, "Product id; repeatable")

	offersCmd.AddCommand(offersListCmd)
	offersCmd.AddCommand(offersAddCmd)
	offersCmd.AddCommand(offersRemoveCmd)
	offersCmd.AddCommand(offersBoardCmd)
}
