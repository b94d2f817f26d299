package models

import "time"

type JsonModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GoogleAuthSignIn struct {
	IdToken  string `json:"idToken" validate:"required"`
	Platform string `json:"platform" validate:"required,platform"`
}

type AppleAuthRequest struct {
	IdentityToken     string `json:"identity_token" validate:"required"`
	Platform          string `json:"platform" validate:"required,platform"`
	AuthorizationCode string `json:"authorization_code" validate:"required"`
}

type RefreshTokenIn struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type SignInOut struct {
	Id           uint   `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	New          bool   `json:"new"`
	Avatar       string `json:"avatar"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserMeInfoOut struct {
	Id                   uint   `json:"id"`
	Name                 string `json:"name"`
	Email                string `json:"email"`
	AvatarURL            string `json:"avatar_url"`
	Gender               string `json:"gender"`
	City                 string `json:"city"`
	ReceiveNotifications bool   `json:"receive_notifications"`
}
