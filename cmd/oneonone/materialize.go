package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func materializeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "materialize",
		Short: "Create meetings for schedules whose next occurrence has arrived",
		Long: `Scan all active schedules and create a meeting for each one whose
next meeting time has passed, advancing the schedule by its frequency.
Run this periodically (e.g. from cron).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			defer svc.Close()

			created, err := svc.MaterializeDue()
			if err != nil {
				return err
			}

			fmt.Printf("Created %d meeting(s)\n", created)
			return nil
		},
	}
}
