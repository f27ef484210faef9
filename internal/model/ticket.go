package model

import "time"

// Ticket statuses, in lifecycle order.
const (
	TicketStatusWeighIn   = "weigh_in"
	TicketStatusWeighOut  = "weigh_out"
	TicketStatusFinalized = "finalized"
)

// Ticket represents one vehicle transaction spanning weigh-in, weigh-out
// and finalize.
type Ticket struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	TicketNo          *string `gorm:"uniqueIndex;size:32" json:"ticket_no"`
	Status            string  `gorm:"index;size:16;not null;default:weigh_in" json:"status"`
	Direction         string  `gorm:"index;size:16;not null" json:"direction"`
	VehiclePlate      string  `gorm:"index;size:32;not null" json:"vehicle_plate"`
	PartnerName       string  `gorm:"size:128;not null" json:"partner_name"`
	ProductName       string  `gorm:"size:128;not null" json:"product_name"`
	DeliveryReference string  `gorm:"size:64" json:"delivery_reference"`
	DriverName        string  `gorm:"size:128" json:"driver_name"`
	DriverPhone       string  `gorm:"size:32" json:"driver_phone"`
	OperatorName      string  `gorm:"size:128;not null" json:"operator_name"`

	GrossKg       float64    `json:"gross_kg"`
	TareKg        float64    `json:"tare_kg"`
	NetKg         float64    `json:"net_kg"`
	WeightInTime  *time.Time `json:"weight_in_time"`
	WeightOutTime *time.Time `json:"weight_out_time"`

	QCStatus string `gorm:"column:qc_status;size:16;not null;default:pending" json:"qc_status"`
	QCNote   string `gorm:"column:qc_note" json:"qc_note"`
	Remarks  string `json:"remarks"`

	// External identifier stamped back by the ERP after a successful sync.
	ErpExternalID string `gorm:"index;size:64" json:"erp_external_id"`

	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
