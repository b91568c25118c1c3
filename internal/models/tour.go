package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location is a GeoJSON point. Coordinates are [lng, lat], the order the
// 2dsphere index expects.
type Location struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Day         int       `bson:"day,omitempty" json:"day,omitempty"`
}

type Tour struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name" validate:"required,min=10,max=40"`
	Duration        int                `bson:"duration" json:"duration" validate:"required"`
	MaxGroupSize    int                `bson:"maxGroupSize" json:"maxGroupSize" validate:"required"`
	Difficulty      string             `bson:"difficulty" json:"difficulty" validate:"required,oneof=easy medium difficult"`
	RatingsAverage  float64            `bson:"ratingsAverage" json:"ratingsAverage" validate:"omitempty,min=1,max=5"`
	RatingsQuantity int                `bson:"ratingsQuantity" json:"ratingsQuantity"`
	Price           float64            `bson:"price" json:"price" validate:"required,gt=0"`
	PriceDiscount   float64            `bson:"priceDiscount,omitempty" json:"priceDiscount,omitempty"`
	Summary         string             `bson:"summary" json:"summary" validate:"required"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	ImageCover      string             `bson:"imageCover" json:"imageCover"`
	Images          []string           `bson:"images,omitempty" json:"images,omitempty" validate:"max=3"`
	StartDates      []time.Time        `bson:"startDates,omitempty" json:"startDates,omitempty"`
	SecretTour      bool               `bson:"secretTour" json:"secretTour"`
	StartLocation   *Location          `bson:"startLocation,omitempty" json:"startLocation,omitempty"`
	Locations       []Location         `bson:"locations,omitempty" json:"locations,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`

	// Populated from the reviews collection on single-tour reads, never stored.
	Reviews []Review `bson:"reviews,omitempty" json:"reviews,omitempty"`
}

func (Tour) CollectionName() string { return "tours" }

func (t *Tour) ApplyDefaults() {
	if t.RatingsAverage == 0 {
		t.RatingsAverage = 4.5
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
}
