package models

import "time"

type UserAccount struct {
	JsonModel
	Name     string   `json:"name"`
	Email    string   `json:"email" gorm:"unique"`
	Banned   bool     `gorm:"default:false" json:"-"`
	LastIp   string   `json:"-"`
	GoogleID string   `json:"-"`
	AppleID  string   `json:"-"`
	Platform Platform `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	// preferred gender filter for wardrobe queries: male, female, unisex
	Gender string `gorm:"default:unisex" json:"gender"`
	// city used for the weather context lookup
	City                string     `json:"city"`
	ConfirmedDeleteDate *time.Time `json:"-"`
	// Notifications settings
	ReceiveNotifications bool   `gorm:"default:true" json:"receive_notifications"`
	AvatarURL            string `json:"avatar_url"`
}

type UserPushToken struct {
	JsonModel
	UserAccountID uint
	UserAccount   UserAccount `json:"user_account"`
	Platform      Platform    `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	Token         string      `json:"token"`
	Active        bool        `gorm:"default:false" json:"-"`
}

type UserPushIn struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,platform"`
}

type UserSettingsIn struct {
	ReceiveNotifications *bool   `json:"receive_notifications"`
	City                 *string `json:"city"`
	Gender               *string `json:"gender" validate:"omitempty,gender"`
}
