package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"tour-app/internal/models"
	"tour-app/internal/repository"
	"tour-app/internal/utils"
)

// Earth radii for converting a distance to radians, and the meters-to-unit
// multipliers $geoNear distances are scaled by.
const (
	EarthRadiusMiles = 3958.8
	EarthRadiusKm    = 6378.1
	MetersToMiles    = 0.000621371
	MetersToKm       = 0.001
)

const statsCacheKey = "tour_stats"

type TourQueries interface {
	Stats(ctx context.Context) ([]repository.TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]repository.MonthlyPlanEntry, error)
	Within(ctx context.Context, lng, lat, radius float64) ([]models.Tour, error)
	Distances(ctx context.Context, lng, lat, multiplier float64) ([]repository.TourDistance, error)
}

type TourService struct {
	repo  TourQueries
	cache *redis.Client
}

func NewTourService(repo TourQueries, cache *redis.Client) *TourService {
	return &TourService{repo: repo, cache: cache}
}

// ParseLatLng splits a "lat,lng" path parameter. Missing or unparseable
// components are a bad request before any store query runs.
func ParseLatLng(latlng string) (lat, lng float64, err error) {
	parts := strings.Split(latlng, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: please provide latitude and longitude in the format of lat,lng", models.ErrBadRequest)
	}
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lngErr != nil {
		return 0, 0, fmt.Errorf("%w: please provide latitude and longitude in the format of lat,lng", models.ErrBadRequest)
	}
	return lat, lng, nil
}

func (s *TourService) Stats(ctx context.Context) ([]repository.TourStats, error) {
	if s.cache != nil {
		if cached, err := utils.GetFromCache(ctx, s.cache, statsCacheKey); err == nil {
			stats := make([]repository.TourStats, 0)
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return stats, nil
			}
		}
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := utils.SetToCache(ctx, s.cache, statsCacheKey, string(data), utils.RedisCacheDuration); err != nil {
				log.Printf("[CACHE] Failed to set %s: %v", statsCacheKey, err)
			}
		}
	}
	return stats, nil
}

// InvalidateStats drops the cached statistics after a tour write.
func (s *TourService) InvalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := utils.DeleteFromCache(ctx, s.cache, statsCacheKey); err != nil {
		log.Printf("[CACHE] Failed to delete %s: %v", statsCacheKey, err)
	}
}

// MonthlyPlan keeps the loose year handling of the original endpoint: a
// non-numeric year runs the pipeline with year 0 and yields an empty plan
// rather than an error.
func (s *TourService) MonthlyPlan(ctx context.Context, yearRaw string) ([]repository.MonthlyPlanEntry, error) {
	year, _ := strconv.Atoi(yearRaw)
	return s.repo.MonthlyPlan(ctx, year)
}

func (s *TourService) Within(ctx context.Context, distance float64, latlng, unit string) ([]models.Tour, error) {
	lat, lng, err := ParseLatLng(latlng)
	if err != nil {
		return nil, err
	}
	radius := distance / EarthRadiusKm
	if unit == "mi" {
		radius = distance / EarthRadiusMiles
	}
	return s.repo.Within(ctx, lng, lat, radius)
}

func (s *TourService) Distances(ctx context.Context, latlng, unit string) ([]repository.TourDistance, error) {
	lat, lng, err := ParseLatLng(latlng)
	if err != nil {
		return nil, err
	}
	multiplier := MetersToKm
	if unit == "mi" {
		multiplier = MetersToMiles
	}
	return s.repo.Distances(ctx, lng, lat, multiplier)
}
