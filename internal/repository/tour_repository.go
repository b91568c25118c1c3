package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tour-app/internal/models"
)

type TourRepository struct {
	*Repository[models.Tour]
}

func NewTourRepository(db *mongo.Database) *TourRepository {
	return &TourRepository{Repository: New[models.Tour](db)}
}

// TourStats is one difficulty group of the statistics pipeline. The group
// key is the uppercased difficulty.
type TourStats struct {
	Difficulty  string  `bson:"_id" json:"difficulty"`
	TourCount   int     `bson:"tourCount" json:"tourCount"`
	RatingCount int     `bson:"ratingCount" json:"ratingCount"`
	AvgRating   float64 `bson:"avgRating" json:"avgRating"`
	AvgPrice    float64 `bson:"avgPrice" json:"avgPrice"`
	MinPrice    float64 `bson:"minPrice" json:"minPrice"`
	MaxPrice    float64 `bson:"maxPrice" json:"maxPrice"`
}

type MonthlyPlanEntry struct {
	Month     int      `bson:"month" json:"month"`
	TourCount int      `bson:"tourCount" json:"tourCount"`
	Tours     []string `bson:"tours" json:"tours"`
}

type TourDistance struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Distance float64            `bson:"distance" json:"distance"`
}

func statsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ratingsAverage": bson.M{"$gte": 4.5}}}},
		{{Key: "$group", Value: bson.M{
			"_id":         bson.M{"$toUpper": "$difficulty"},
			"tourCount":   bson.M{"$sum": 1},
			"ratingCount": bson.M{"$sum": "$ratingsQuantity"},
			"avgRating":   bson.M{"$avg": "$ratingsAverage"},
			"avgPrice":    bson.M{"$avg": "$price"},
			"minPrice":    bson.M{"$min": "$price"},
			"maxPrice":    bson.M{"$max": "$price"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
}

func monthlyPlanPipeline(year int) mongo.Pipeline {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$startDates"}},
		{{Key: "$match", Value: bson.M{
			"startDates": bson.M{"$gte": from, "$lte": to},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":       bson.M{"$month": "$startDates"},
			"tourCount": bson.M{"$sum": 1},
			"tours":     bson.M{"$push": "$name"},
		}}},
		{{Key: "$addFields", Value: bson.M{"month": "$_id"}}},
		{{Key: "$project", Value: bson.M{"_id": 0}}},
		{{Key: "$sort", Value: bson.M{"tourCount": -1}}},
	}
}

// withinFilter selects tours whose startLocation lies inside the spherical
// cap of the given radius (in radians) around [lng, lat].
func withinFilter(lng, lat, radius float64) bson.M {
	return bson.M{
		"startLocation": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{lng, lat}, radius},
			},
		},
	}
}

// distancesPipeline computes the distance from [lng, lat] to every tour's
// startLocation. $geoNear reports meters; the multiplier rescales to the
// requested unit.
func distancesPipeline(lng, lat, multiplier float64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.M{
			"near": bson.M{
				"type":        "Point",
				"coordinates": bson.A{lng, lat},
			},
			"distanceField":      "distance",
			"distanceMultiplier": multiplier,
		}}},
		{{Key: "$project", Value: bson.M{"distance": 1, "name": 1}}},
	}
}

func (r *TourRepository) Stats(ctx context.Context) ([]TourStats, error) {
	cursor, err := r.col.Aggregate(ctx, statsPipeline())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := make([]TourStats, 0)
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *TourRepository) MonthlyPlan(ctx context.Context, year int) ([]MonthlyPlanEntry, error) {
	cursor, err := r.col.Aggregate(ctx, monthlyPlanPipeline(year))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plan := make([]MonthlyPlanEntry, 0)
	if err := cursor.All(ctx, &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *TourRepository) Within(ctx context.Context, lng, lat, radius float64) ([]models.Tour, error) {
	cursor, err := r.col.Find(ctx, withinFilter(lng, lat, radius))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tours := make([]models.Tour, 0)
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, err
	}
	return tours, nil
}

func (r *TourRepository) Distances(ctx context.Context, lng, lat, multiplier float64) ([]TourDistance, error) {
	cursor, err := r.col.Aggregate(ctx, distancesPipeline(lng, lat, multiplier))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	distances := make([]TourDistance, 0)
	if err := cursor.All(ctx, &distances); err != nil {
		return nil, err
	}
	return distances, nil
}
