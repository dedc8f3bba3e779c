package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Donation statuses
const (
	DonationPledged   = "pledged"
	DonationConfirmed = "confirmed"
	DonationDelivered = "delivered"
	DonationCancelled = "cancelled"
)

// SupplyDonation is a supply pledge for a grid.
type SupplyDonation struct {
	ID             string    `gorm:"column:id;primaryKey" json:"id"`
	GridID         string    `gorm:"column:grid_id" json:"grid_id"`
	CreatedByID    string    `gorm:"column:created_by_id" json:"created_by_id"`
	Name           string    `gorm:"column:name" json:"name"`
	Quantity       int       `gorm:"column:quantity" json:"quantity"`
	Unit           string    `gorm:"column:unit" json:"unit"`
	DonorName      *string   `gorm:"column:donor_name" json:"donor_name,omitempty"`
	DonorPhone     *string   `gorm:"column:donor_phone" json:"donor_phone,omitempty"`
	DonorEmail     *string   `gorm:"column:donor_email" json:"donor_email,omitempty"`
	DonorContact   *string   `gorm:"column:donor_contact" json:"donor_contact,omitempty"`
	DeliveryMethod string    `gorm:"column:delivery_method" json:"delivery_method"`
	Status         string    `gorm:"column:status" json:"status"`
	Notes          string    `gorm:"column:notes" json:"notes"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// GridCreatorID is joined from grids.created_by_id and never written.
	GridCreatorID string `gorm:"column:grid_created_by_id;->" json:"-"`
}

func (SupplyDonation) TableName() string {
	return "supply_donations"
}

func (d *SupplyDonation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// CreatorID implements privacy.Record.
func (d SupplyDonation) CreatorID() string {
	return d.CreatedByID
}

// Redacted implements privacy.Record. The donor's name is personal data too.
func (d SupplyDonation) Redacted() SupplyDonation {
	d.DonorName = nil
	d.DonorPhone = nil
	d.DonorEmail = nil
	d.DonorContact = nil
	return d
}

// GridOwner returns the creator of the donation's grid.
func (d SupplyDonation) GridOwner() string {
	return d.GridCreatorID
}

// DonationSensitiveFields are the JSON names Redacted clears.
var DonationSensitiveFields = []string{"donor_name", "donor_phone", "donor_email", "donor_contact"}
