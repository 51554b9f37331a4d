package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/afandal/storeadmin/app/services"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Inspect and progress orders",
}

// storeadmin orders list
var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := bootCLI()
		if err != nil {
			return err
		}
		orders, err := c.svc.Orders.List(cmd.Context(), c.sess)
		if err != nil {
			return err
		}

		w := c.table("ID", "DATE", "CUSTOMER", "ITEMS", "AMOUNT", "PAYMENT", "STATUS")
		for _, o := range orders {
			paid := "pending"
			if o.Payment {
				paid = "done"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s (%s)\t%s\n",
				o.ID, o.Date.Local().Format("2006-01-02"), o.CustomerName, len(o.Items),
				price(o.Amount), o.PaymentMethod, paid, o.StatusLabel)
		}
		return w.Flush()
	},
}

// storeadmin orders status <orderId> <label|code>
var ordersStatusCmd = &cobra.Command{
	Use:   "status <orderId> <label|code>",
	Short: "Change an order's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := bootCLI()
		if err != nil {
			return err
		}
		view, err := c.svc.Orders.UpdateStatus(cmd.Context(), c.sess, args[0], services.StatusRequest{Status: args[1]})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Order %s is now %s.\n", view.ID, view.StatusLabel)
		return nil
	},
}

func init() {
	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersStatusCmd)
}
