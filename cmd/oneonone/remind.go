package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func remindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Email assignees of overdue action items",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			defer svc.Close()

			sent, err := svc.SendDueReminders()
			if err != nil {
				return err
			}

			fmt.Printf("Sent %d reminder(s)\n", sent)
			return nil
		},
	}
}
