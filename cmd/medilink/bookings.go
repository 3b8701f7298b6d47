package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"medilink-client/internal/service"
	"medilink-client/internal/utils"
)

func newBookCmd(a *app) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "book <equipmentID>",
		Short: "Book equipment for a date range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEquipmentID(args[0])
			if err != nil {
				return err
			}
			eq, err := a.equipment.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			out, err := a.workflow.Book(cmd.Context(), service.BookingRequest{
				Equipment: eq,
				StartDate: from,
				EndDate:   to,
			}, func(s service.WorkflowState) {
				switch s {
				case service.StateSubmitting:
					fmt.Fprintln(a.errOut, "Submitting booking...")
				case service.StateAwaitingOrder:
					fmt.Fprintln(a.errOut, "Waiting for the payment order...")
				case service.StateVerifying:
					fmt.Fprintln(a.errOut, "Verifying payment...")
				}
			})
			if err != nil {
				if out.Booking != nil {
					fmt.Fprintf(a.errOut, "Booking %s was created but not paid\n", out.Booking.ID)
				}
				return err
			}

			if out.State == service.StateAwaitingPayment {
				fmt.Fprintf(a.out, "Payment not completed. Booking %s is waiting for payment.\n", out.Booking.ID)
				return nil
			}
			fmt.Fprintf(a.out, "Booked %s from %s to %s (%d days, total %s)\n",
				eq.Name, from, to, out.Days, utils.FormatAmount(out.TotalPrice))
			a.printBooking(out.Booking)
			if out.Equipment != nil && !out.Equipment.Availability {
				fmt.Fprintf(a.out, "%s is now fully booked\n", out.Equipment.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day, yyyy-mm-dd")
	cmd.Flags().StringVar(&to, "to", "", "last day (inclusive), yyyy-mm-dd")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func newBookingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Manage your bookings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List your bookings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				items, err := a.bookings.List(cmd.Context())
				if err != nil {
					return err
				}
				a.printBookingList(items)
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show one booking",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := a.bookings.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.printBooking(b)
				return nil
			},
		},
		bookingActionCmd(a, "cancel", "Cancel a booking", "Cancelled", service.BookingService.Cancel),
		bookingActionCmd(a, "confirm", "Confirm a pending booking (administrators)", "Confirmed", service.BookingService.Confirm),
		bookingActionCmd(a, "complete", "Mark a confirmed booking completed (administrators)", "Completed", service.BookingService.Complete),
	)
	return cmd
}

// bookingActionCmd builds a command applying one transition to a booking.
// The action is a method expression because the service only exists once
// the command runs.
func bookingActionCmd(a *app, use, short, done string, action func(service.BookingService, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := action(a.bookings, cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s booking %s\n", done, args[0])
			return nil
		},
	}
}

func newAvailabilityCmd(a *app) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "availability <equipmentID>",
		Short: "Ask the backend whether equipment is free for a date range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEquipmentID(args[0])
			if err != nil {
				return err
			}
			ok, err := a.bookings.CheckAvailability(cmd.Context(), id, from, to)
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintf(a.out, "Equipment %d is available from %s to %s\n", id, from, to)
			} else {
				fmt.Fprintf(a.out, "Equipment %d is not available from %s to %s\n", id, from, to)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day, yyyy-mm-dd")
	cmd.Flags().StringVar(&to, "to", "", "last day (inclusive), yyyy-mm-dd")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}
