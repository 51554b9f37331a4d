package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/afandal/storeadmin/pkg/database"
	"github.com/afandal/storeadmin/pkg/migration"
)

// storeadmin migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		ran, err := migration.New(database.DB).Up()
		for _, name := range ran {
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated     %s\n", name)
		}
		if err != nil {
			return err
		}
		if len(ran) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to migrate.")
		}
		return nil
	},
}

// storeadmin migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		reverted, err := migration.New(database.DB).Down()
		for _, name := range reverted {
			fmt.Fprintf(cmd.OutOrStdout(), "Rolled back  %s\n", name)
		}
		if err != nil {
			return err
		}
		if len(reverted) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to roll back.")
		}
		return nil
	},
}

// storeadmin migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		states, err := migration.New(database.DB).Status()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MIGRATION\tSTATUS\tBATCH")
		for _, s := range states {
			if s.Batch == 0 {
				fmt.Fprintf(w, "%s\tPending\t-\n", s.Name)
				continue
			}
			fmt.Fprintf(w, "%s\tRan\t%d\n", s.Name, s.Batch)
		}
		return w.Flush()
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail",
}

// storeadmin audit list
var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the newest audit entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		action, _ := cmd.Flags().GetString("action")

		c, err := bootCLI()
		if err != nil {
			return err
		}
		entries, err := c.audit.Recent(cmd.Context(), action, limit)
		if err != nil {
			return err
		}

		w := c.table("ID", "WHEN", "ACTION", "TARGET", "OUTCOME", "DETAIL")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Action, e.Target, e.Outcome, e.Detail)
		}
		return w.Flush()
	},
}

func init() {
	auditListCmd.Flags().Int("limit", 50, "Number of entries to show")
	auditListCmd.Flags().String("action", "", "Only entries for this action (e.g. offer.add)")
	auditCmd.AddCommand(auditListCmd)
}
