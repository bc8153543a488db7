package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nishantrana1982/oneonone/internal/core"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [file]",
		Short: "Load departments and users from a YAML seed file",
		Long: `Bootstrap an organization from a YAML file:

departments:
  - name: Engineering
users:
  - email: priya@example.com
    name: Priya Sharma
    role: reporter
    department: Engineering

Existing users (matched by email) are left untouched, so re-running
a seed is safe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := core.LoadSeedFile(args[0])
			if err != nil {
				return err
			}

			svc, err := newService()
			if err != nil {
				return err
			}
			defer svc.Close()

			created, err := svc.Seed(seed)
			if err != nil {
				return err
			}

			fmt.Printf("Created %d user(s)\n", created)
			return nil
		},
	}
}
