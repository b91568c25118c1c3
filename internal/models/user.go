package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name" validate:"required"`
	Email string             `bson:"email" json:"email" validate:"required,email"`
	Role  Role               `bson:"role" json:"role" validate:"omitempty,oneof=user guide lead-guide admin"`
	// Image is the current photo URL; PublicID is the media-store asset
	// identifier behind it, empty when the user has no uploaded photo.
	Image    string `bson:"image" json:"image"`
	PublicID string `bson:"publicId" json:"publicId,omitempty"`
	Active   bool   `bson:"active" json:"active"`
}

func (User) CollectionName() string { return "users" }

func (u *User) ApplyDefaults() {
	if u.Role == "" {
		u.Role = RoleUser
	}
	u.Active = true
}
