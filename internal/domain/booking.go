package domain

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// BookingAction names the admin transitions exposed by the backend.
type BookingAction string

const (
	BookingActionConfirm  BookingAction = "confirm"
	BookingActionComplete BookingAction = "complete"
)

type Booking struct {
	ID            string        `json:"id,omitempty"`
	EquipmentID   int64         `json:"equipmentId"`
	EquipmentName string        `json:"equipmentName,omitempty"`
	UserID        string        `json:"userId,omitempty"`
	StartDate     string        `json:"startDate"` // yyyy-mm-dd
	EndDate       string        `json:"endDate"`   // yyyy-mm-dd, inclusive
	TotalPrice    float64       `json:"price"`
	Status        BookingStatus `json:"status"`
	Payment       *Payment      `json:"payment,omitempty"`
}
