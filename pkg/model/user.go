package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
)

// User is an account that can sign in.
type User struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	Email        string    `gorm:"column:email" json:"email"`
	DisplayName  string    `gorm:"column:display_name" json:"display_name"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	Role         role.Role `gorm:"column:role" json:"role"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
