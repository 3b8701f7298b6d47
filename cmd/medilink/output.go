package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"medilink-client/internal/domain"
	"medilink-client/internal/service"
	"medilink-client/internal/utils"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (a *app) printEquipmentList(items []domain.Equipment) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No equipment found")
		return
	}
	identity := a.session.Identity()
	w := newTable(a.out)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tLOCATION\tPRICE/DAY\tAVAILABLE\tYOURS")
	for i := range items {
		eq := &items[i]
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			eq.ID, eq.Name, eq.Type, eq.Location, utils.FormatAmount(eq.Price),
			yesNo(eq.Availability), yesNo(identity != nil && service.CanManage(eq, identity)))
	}
	w.Flush()
}

func (a *app) printEquipment(eq *domain.Equipment) {
	w := newTable(a.out)
	fmt.Fprintf(w, "ID\t%d\n", eq.ID)
	fmt.Fprintf(w, "Name\t%s\n", eq.Name)
	fmt.Fprintf(w, "Type\t%s\n", eq.Type)
	fmt.Fprintf(w, "Location\t%s\n", eq.Location)
	fmt.Fprintf(w, "Price per day\t%s\n", utils.FormatAmount(eq.Price))
	fmt.Fprintf(w, "Available\t%s\n", yesNo(eq.Availability))
	if eq.OwnerID != "" {
		fmt.Fprintf(w, "Owner\t%s\n", eq.OwnerID)
	}
	w.Flush()
}

func (a *app) printBookingList(items []domain.Booking) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No bookings found")
		return
	}
	w := newTable(a.out)
	fmt.Fprintln(w, "ID\tEQUIPMENT\tFROM\tTO\tTOTAL\tSTATUS\tPAYMENT")
	for _, b := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, equipmentLabel(&b), b.StartDate, b.EndDate,
			utils.FormatAmount(b.TotalPrice), b.Status, paymentStatus(b.Payment))
	}
	w.Flush()
}

func (a *app) printBooking(b *domain.Booking) {
	w := newTable(a.out)
	fmt.Fprintf(w, "ID\t%s\n", b.ID)
	fmt.Fprintf(w, "Equipment\t%s\n", equipmentLabel(b))
	fmt.Fprintf(w, "From\t%s\n", b.StartDate)
	fmt.Fprintf(w, "To\t%s\n", b.EndDate)
	fmt.Fprintf(w, "Total\t%s\n", utils.FormatAmount(b.TotalPrice))
	fmt.Fprintf(w, "Status\t%s\n", b.Status)
	fmt.Fprintf(w, "Payment\t%s\n", paymentStatus(b.Payment))
	w.Flush()
}

func equipmentLabel(b *domain.Booking) string {
	if b.EquipmentName != "" {
		return b.EquipmentName
	}
	return "#" + strconv.FormatInt(b.EquipmentID, 10)
}

func paymentStatus(p *domain.Payment) string {
	if p == nil || p.Status == "" {
		return "-"
	}
	return string(p.Status)
}
