package main

import (
	"fmt"

	"github.com/sshroot23cs/SupportSenseAI/internal/escalation"

	"github.com/spf13/cobra"
)

func ticketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "Manage escalation tickets",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pending escalation tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			store, err := escalation.NewSQLiteStore(cfg.Escalation.DBPath, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			tickets, err := store.ListPending(cmd.Context())
			if err != nil {
				return err
			}
			if len(tickets) == 0 {
				fmt.Println("No pending tickets.")
				return nil
			}
			for _, t := range tickets {
				fmt.Printf("%s  [%s]  %s\n", t.ID, t.Priority, t.CreatedAt.Format("2006-01-02 15:04"))
				fmt.Printf("    user:   %s\n", t.UserID)
				fmt.Printf("    query:  %s\n", t.Query)
				fmt.Printf("    reason: %s\n\n", t.Reason)
			}
			return nil
		},
	})

	var resolution string
	resolveCmd := &cobra.Command{
		Use:   "resolve [ticket-id]",
		Short: "Mark a ticket as resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			store, err := escalation.NewSQLiteStore(cfg.Escalation.DBPath, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Resolve(cmd.Context(), args[0], resolution); err != nil {
				return err
			}
			fmt.Printf("Resolved %s\n", args[0])
			return nil
		},
	}
	resolveCmd.Flags().StringVarP(&resolution, "note", "n", "", "resolution note")
	cmd.AddCommand(resolveCmd)

	return cmd
}
