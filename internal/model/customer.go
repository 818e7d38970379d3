package model

import "time"

// Customer belongs to exactly one account; bills reference it
type Customer struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	GSTID     string    `json:"gst_id" gorm:"column:gst_id;type:varchar(50)"`
	Phone     string    `json:"phone" gorm:"type:varchar(50);index"`
	Address   string    `json:"address" gorm:"type:varchar(500)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
