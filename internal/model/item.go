package model

import "time"

// Item is a catalog entry. A nil UserID marks a shared default item that
// any account may bill against but nobody edits through the API.
type Item struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    *uint     `json:"user_id" gorm:"index"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Size      float64   `json:"size" gorm:"default:0"`
	Price     float64   `json:"price" gorm:"not null;default:0"`
	Quantity  float64   `json:"quantity" gorm:"default:0"`
	PhotoURL  string    `json:"photo_url" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
