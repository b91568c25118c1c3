package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Review    string             `bson:"review" json:"review" validate:"required"`
	Rating    float64            `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	Tour      primitive.ObjectID `bson:"tour" json:"tour" validate:"required"`
	User      primitive.ObjectID `bson:"user" json:"user" validate:"required"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

func (Review) CollectionName() string { return "reviews" }

func (r *Review) ApplyDefaults() {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
}
