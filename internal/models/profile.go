package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Profile represents a member as the notification engine sees them.
// Registration, avatars and the rest of the member domain live elsewhere;
// only identity and the email address used for delivery matter here.
type Profile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:50;uniqueIndex"`
	Email     string    `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all profiles
	CreatedAt time.Time `json:"created_at"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	ProfileID uint   `json:"profile_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}
