package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Password  string    `json:"-" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Car is one listing in a user's inventory. OwnerID never changes after
// creation; every store operation is keyed by it.
type Car struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	OwnerID     string    `json:"ownerId" gorm:"index;size:36;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	CarType     string    `json:"carType"`
	Company     string    `json:"company"`
	Dealer      string    `json:"dealer"`
	Tags        []string  `json:"tags" gorm:"serializer:json"`
	Images      []string  `json:"images" gorm:"serializer:json"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
