package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"medilink-client/internal/jobs"
	"medilink-client/internal/scheduler"
	"medilink-client/internal/session"
)

func newWatchCmd(a *app) *cobra.Command {
	var runOnce string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the session and inventory jobs until interrupted",
		Long: "Runs the jobs configured under 'scheduler' in the foreground. " +
			"With --run-once, runs one job (session-expiry, refresh-inventory or all) and exits.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := jobs.NewJobRunner(a.session, a.equipment, a.cfg)

			unsubscribe := a.session.Subscribe(func(s session.Snapshot) {
				if s.State == session.Authenticated {
					fmt.Fprintf(a.out, "Session: signed in as %s\n", s.Identity.DisplayName())
					return
				}
				fmt.Fprintln(a.out, "Session: signed out")
			})
			defer unsubscribe()

			switch runOnce {
			case "":
			case "session-expiry":
				runner.CheckSessionExpiry()
				return nil
			case "refresh-inventory":
				runner.RefreshInventory()
				a.printEquipmentList(a.equipment.Snapshot())
				return nil
			case "all":
				runner.RunAll()
				a.printEquipmentList(a.equipment.Snapshot())
				return nil
			default:
				return fmt.Errorf("unknown job %q", runOnce)
			}

			s := scheduler.NewScheduler(runner)
			if !s.IsRunning() {
				return errors.New("no jobs scheduled, set scheduler.check_session_expiry or scheduler.refresh_inventory")
			}
			s.Start()
			defer s.Stop()

			fmt.Fprintln(a.errOut, "Watching, press Ctrl-C to stop")
			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&runOnce, "run-once", "", "run a single job and exit (session-expiry, refresh-inventory, all)")
	return cmd
}
