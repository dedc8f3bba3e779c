package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Grid types
const (
	GridTypeManpower      = "manpower"
	GridTypeMudDisposal   = "mud_disposal"
	GridTypeSupplyStorage = "supply_storage"
	GridTypeAccommodation = "accommodation"
	GridTypeFoodWash      = "food_wash"
)

// Grid statuses
const (
	GridStatusOpen      = "open"
	GridStatusCompleted = "completed"
	GridStatusClosed    = "closed"
)

// ValidGridTypes lists the accepted grid_type values.
var ValidGridTypes = []string{
	GridTypeManpower, GridTypeMudDisposal, GridTypeSupplyStorage,
	GridTypeAccommodation, GridTypeFoodWash,
}

// Grid is a work zone. Its creator is the local authority for every
// registration and donation under it.
type Grid struct {
	ID                  string    `gorm:"column:id;primaryKey" json:"id"`
	Code                string    `gorm:"column:code" json:"code"`
	GridType            string    `gorm:"column:grid_type" json:"grid_type"`
	Status              string    `gorm:"column:status" json:"status"`
	CenterLat           float64   `gorm:"column:center_lat" json:"center_lat"`
	CenterLng           float64   `gorm:"column:center_lng" json:"center_lng"`
	VolunteerNeeded     int       `gorm:"column:volunteer_needed" json:"volunteer_needed"`
	VolunteerRegistered int       `gorm:"column:volunteer_registered" json:"volunteer_registered"`
	MeetingPoint        string    `gorm:"column:meeting_point" json:"meeting_point"`
	Description         string    `gorm:"column:description" json:"description"`
	ContactInfo         *string   `gorm:"column:contact_info" json:"contact_info,omitempty"`
	CreatedByID         string    `gorm:"column:created_by_id" json:"created_by_id"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Grid) TableName() string {
	return "grids"
}

func (g *Grid) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// CreatorID implements privacy.Record.
func (g Grid) CreatorID() string {
	return g.CreatedByID
}

// Redacted implements privacy.Record.
func (g Grid) Redacted() Grid {
	g.ContactInfo = nil
	return g
}

// GridSensitiveFields are the JSON names Redacted clears.
var GridSensitiveFields = []string{"contact_info"}
