package model

import "time"

// Account represents a registered user identity.
type Account struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FirstName      string    `json:"first_name" gorm:"size:255;not null"`
	LastName       string    `json:"last_name" gorm:"size:255;not null"`
	Verified       bool      `json:"verified" gorm:"not null;default:false"`
	AccountCreated time.Time `json:"account_created" gorm:"autoCreateTime"`
	AccountUpdated time.Time `json:"account_updated" gorm:"autoUpdateTime"`

	// Relations
	Images []Image `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:RESTRICT"`
}

// TableName pins the table name used by the original schema.
func (Account) TableName() string {
	return "users"
}
