package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"medilink-client/internal/domain"
)

func parseEquipmentID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid equipment id %q", s)
	}
	return id, nil
}

func newEquipmentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "equipment",
		Aliases: []string{"eq"},
		Short:   "Browse and manage equipment",
	}
	cmd.AddCommand(
		newEquipmentListCmd(a),
		newEquipmentGetCmd(a),
		newEquipmentSearchCmd(a),
		newEquipmentAddCmd(a),
		newEquipmentUpdateCmd(a),
		newEquipmentDeleteCmd(a),
	)
	return cmd
}

func newEquipmentListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all equipment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.equipment.List(cmd.Context())
			if err != nil {
				return err
			}
			a.printEquipmentList(items)
			return nil
		},
	}
}

func newEquipmentGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one piece of equipment",
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
			a.printEquipment(eq)
			return nil
		},
	}
}

func newEquipmentSearchCmd(a *app) *cobra.Command {
	var filter domain.EquipmentFilter
	var available bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search equipment by type, location or availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("available") {
				filter.Availability = &available
			}
			items, err := a.equipment.Search(cmd.Context(), filter)
			if err != nil {
				return err
			}
			a.printEquipmentList(items)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Type, "type", "", "equipment type")
	cmd.Flags().StringVar(&filter.Location, "location", "", "location")
	cmd.Flags().BoolVar(&available, "available", true, "only available (or, with =false, only unavailable) equipment")
	return cmd
}

func newEquipmentAddCmd(a *app) *cobra.Command {
	var eq domain.Equipment

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add equipment (administrators)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := a.equipment.Create(cmd.Context(), &eq)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added equipment %d\n", created.ID)
			a.printEquipment(created)
			return nil
		},
	}

	cmd.Flags().StringVar(&eq.Name, "name", "", "name")
	cmd.Flags().StringVar(&eq.Type, "type", "", "type")
	cmd.Flags().StringVar(&eq.Location, "location", "", "location")
	cmd.Flags().Float64Var(&eq.Price, "price", 0, "price per day")
	cmd.Flags().BoolVar(&eq.Availability, "available", true, "whether it can be booked")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("price")
	return cmd
}

func newEquipmentUpdateCmd(a *app) *cobra.Command {
	var patch domain.Equipment

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change equipment you own",
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

			flags := cmd.Flags()
			if flags.Changed("name") {
				eq.Name = patch.Name
			}
			if flags.Changed("type") {
				eq.Type = patch.Type
			}
			if flags.Changed("location") {
				eq.Location = patch.Location
			}
			if flags.Changed("price") {
				eq.Price = patch.Price
			}
			if flags.Changed("available") {
				eq.Availability = patch.Availability
			}

			updated, err := a.equipment.Update(cmd.Context(), eq)
			if err != nil {
				return err
			}
			a.printEquipment(updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&patch.Name, "name", "", "new name")
	cmd.Flags().StringVar(&patch.Type, "type", "", "new type")
	cmd.Flags().StringVar(&patch.Location, "location", "", "new location")
	cmd.Flags().Float64Var(&patch.Price, "price", 0, "new price per day")
	cmd.Flags().BoolVar(&patch.Availability, "available", true, "whether it can be booked")
	return cmd
}

func newEquipmentDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete equipment you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEquipmentID(args[0])
			if err != nil {
				return err
			}
			if err := a.equipment.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted equipment %d\n", id)
			return nil
		},
	}
}
