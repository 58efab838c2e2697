package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a saved dropoff location owned by a user.
type Address struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	RegionID  uuid.UUID  `gorm:"column:region_id;type:uuid;not null"`
	Line1     string     `gorm:"column:line1;not null"`
	Latitude  *float64   `gorm:"column:latitude"`
	Longitude *float64   `gorm:"column:longitude"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`

	Region *Region `gorm:"foreignKey:RegionID"`
}
