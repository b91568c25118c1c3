package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	MongoURI       string
	MongoDatabase  string
	RedisAddr      string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioPublicURL string
	DefaultImage   string
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{
		Port:           os.Getenv("PORT"),
		MongoURI:       os.Getenv("MONGO_URI"),
		MongoDatabase:  os.Getenv("MONGO_DATABASE"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    os.Getenv("MINIO_BUCKET"),
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),
		DefaultImage:   os.Getenv("DEFAULT_IMAGE"),
	}
	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = "tour_app"
	}
	return cfg, nil
}
