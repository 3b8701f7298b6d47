package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "medilink",
		Short:         "Browse and rent medical equipment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.init(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("MEDILINK_CONFIG"), "path to the YAML configuration file")
	root.PersistentFlags().BoolVar(&a.ephemeral, "ephemeral", false, "keep the session in memory for this run only")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoAmICmd(a),
		newEquipmentCmd(a),
		newBookCmd(a),
		newBookingsCmd(a),
		newAvailabilityCmd(a),
		newWatchCmd(a),
	)
	return root
}
