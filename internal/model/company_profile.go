package model

import "time"

// CompanyProfile is one-to-one with a user, created lazily on first save
// or best-effort at signup.
type CompanyProfile struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	CompanyName string    `json:"company_name" gorm:"type:varchar(255);not null"`
	Address     string    `json:"address" gorm:"type:varchar(500)"`
	Phone       string    `json:"phone" gorm:"type:varchar(50)"`
	Phone2      string    `json:"phone2" gorm:"type:varchar(50)"`
	Email       string    `json:"email" gorm:"type:varchar(150)"`
	LogoURL     string    `json:"logo_url" gorm:"type:varchar(255)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
