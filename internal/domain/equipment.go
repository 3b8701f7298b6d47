package domain

type Equipment struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Location string  `json:"location"`
	Price    float64 `json:"price"` // per day
	// Availability is advisory and only as fresh as the last fetch.
	Availability bool   `json:"availability"`
	OwnerID      string `json:"ownerId,omitempty"`
}

type EquipmentFilter struct {
	Type         string
	Location     string
	Availability *bool
}
