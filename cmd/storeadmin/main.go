package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/afandal/storeadmin/config"
	// Import migrations so their init() funcs register them.
	_ "github.com/afandal/storeadmin/database/migrations"
	"github.com/afandal/storeadmin/pkg/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

var backendFlag string

var rootCmd = &cobra.Command{
	Use:           "storeadmin",
	Short:         "Store admin dashboard service and CLI",
	Long:          "storeadmin manages a storefront's products, offers and orders through its REST backend.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		if backendFlag != "" {
			config.Set("BACKEND_URL", backendFlag)
		}
		if cmd.Name() != serveCmd.Name() {
			logger.SetOutput(os.Stderr)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Storefront backend URL (overrides BACKEND_URL)")

	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(auditCmd)

	// Admin
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(otpSendCmd)
	rootCmd.AddCommand(otpVerifyCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(offersCmd)
	rootCmd.AddCommand(ordersCmd)
}
