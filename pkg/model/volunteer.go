package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Registration statuses
const (
	RegistrationPending   = "pending"
	RegistrationConfirmed = "confirmed"
	RegistrationArrived   = "arrived"
	RegistrationCompleted = "completed"
	RegistrationCancelled = "cancelled"
)

// VolunteerRegistration is a volunteer signing up for a grid.
type VolunteerRegistration struct {
	ID               string    `gorm:"column:id;primaryKey" json:"id"`
	GridID           string    `gorm:"column:grid_id" json:"grid_id"`
	CreatedByID      string    `gorm:"column:created_by_id" json:"created_by_id"`
	VolunteerName    string    `gorm:"column:volunteer_name" json:"volunteer_name"`
	VolunteerPhone   *string   `gorm:"column:volunteer_phone" json:"volunteer_phone,omitempty"`
	VolunteerEmail   *string   `gorm:"column:volunteer_email" json:"volunteer_email,omitempty"`
	VolunteerContact *string   `gorm:"column:volunteer_contact" json:"volunteer_contact,omitempty"`
	AvailableTime    string    `gorm:"column:available_time" json:"available_time"`
	Skills           string    `gorm:"column:skills" json:"skills"`
	Equipment        string    `gorm:"column:equipment" json:"equipment"`
	Status           string    `gorm:"column:status" json:"status"`
	Notes            string    `gorm:"column:notes" json:"notes"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// GridCreatorID is joined from grids.created_by_id and never written.
	GridCreatorID string `gorm:"column:grid_created_by_id;->" json:"-"`
}

func (VolunteerRegistration) TableName() string {
	return "volunteer_registrations"
}

func (v *VolunteerRegistration) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// CreatorID implements privacy.Record.
func (v VolunteerRegistration) CreatorID() string {
	return v.CreatedByID
}

// Redacted implements privacy.Record.
func (v VolunteerRegistration) Redacted() VolunteerRegistration {
	v.VolunteerPhone = nil
	v.VolunteerEmail = nil
	v.VolunteerContact = nil
	return v
}

// GridOwner returns the creator of the registration's grid.
func (v VolunteerRegistration) GridOwner() string {
	return v.GridCreatorID
}

// VolunteerSensitiveFields are the JSON names Redacted clears.
var VolunteerSensitiveFields = []string{"volunteer_phone", "volunteer_email", "volunteer_contact"}
