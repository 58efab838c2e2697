package models

import (
	"time"

	"github.com/google/uuid"
)

// Courier is the delivery-agent profile, distinct from the user account.
// Auto-provisioned with online=false on first courier-facing call.
type Courier struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;unique"`
	Online    bool      `gorm:"column:online;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CourierShift brackets the time a courier spends online.
type CourierShift struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CourierID uuid.UUID  `gorm:"column:courier_id;type:uuid;not null;index"`
	StartedAt time.Time  `gorm:"column:started_at;autoCreateTime"`
	EndedAt   *time.Time `gorm:"column:ended_at"`
}

// CourierLocation is an append-only GPS breadcrumb.
type CourierLocation struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CourierID uuid.UUID `gorm:"column:courier_id;type:uuid;not null;index"`
	Latitude  float64   `gorm:"column:latitude;not null"`
	Longitude float64   `gorm:"column:longitude;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
