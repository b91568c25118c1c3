package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tour-app/internal/config"
	"tour-app/internal/handler"
	"tour-app/internal/media"
	"tour-app/internal/models"
	"tour-app/internal/repository"
	"tour-app/internal/services"
	"tour-app/internal/utils"
)

func main() {
	baseCtx := context.Background()
	ctx, shutdownManager := utils.NewShutdownManager(baseCtx)
	shutdownManager.StartListening()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	db := mongoClient.Database(cfg.MongoDatabase)

	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Closing MongoDB connection...")
		return mongoClient.Disconnect(ctx)
	})

	minioClient, err := utils.NewMinioClient(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket)
	if err != nil {
		log.Fatalf("minio init: %v", err)
	}
	mediaStore := media.NewMinioStore(minioClient, cfg.MinioBucket, cfg.MinioPublicURL)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		shutdownManager.Register(func(ctx context.Context) error {
			log.Println("[SHUTDOWN] Closing Redis connection...")
			return redisClient.Close()
		})
	}

	tourRepo := repository.NewTourRepository(db)
	userRepo := repository.New[models.User](db)
	reviewRepo := repository.New[models.Review](db)

	tourSvc := services.NewTourService(tourRepo, redisClient)
	photoSvc := services.NewPhotoService(mediaStore, userRepo, tourRepo, cfg.DefaultImage)

	tourCRUD := handler.NewCRUD[models.Tour](tourRepo)
	userCRUD := handler.NewCRUD[models.User](userRepo)
	reviewCRUD := handler.NewCRUD[models.Review](reviewRepo)
	tourHandler := handler.NewTourHandler(tourSvc, photoSvc)
	userHandler := handler.NewUserHandler(photoSvc, userRepo)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), cors.Default())
	router.RedirectTrailingSlash = false

	// Drop the cached stats after any successful tour write.
	invalidateStats := func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() < http.StatusBadRequest {
			tourSvc.InvalidateStats(c.Request.Context())
		}
	}

	api := router.Group("/api")

	tours := api.Group("/tours")
	{
		tours.GET("", tourCRUD.GetAll(nil))
		tours.POST("", invalidateStats, tourCRUD.CreateOne())
		tours.GET("/stats", tourHandler.Stats)
		tours.GET("/monthly-plan/:year", tourHandler.MonthlyPlan)
		tours.GET("/within/:distance/center/:latlng/unit/:unit", tourHandler.Within)
		tours.GET("/distances/:latlng/:unit", tourHandler.Distances)
		tours.GET("/:id", tourCRUD.GetOne(&repository.Populate{
			From:         "reviews",
			LocalField:   "_id",
			ForeignField: "tour",
			As:           "reviews",
		}))
		tours.PATCH("/:id", invalidateStats, tourCRUD.UpdateOne())
		tours.DELETE("/:id", invalidateStats, tourCRUD.DeleteOne())
		tours.POST("/:id/images", tourHandler.UploadImages)
	}

	users := api.Group("/users")
	{
		users.GET("", userCRUD.GetAll(bson.M{"active": bson.M{"$ne": false}}))
		users.POST("", userCRUD.CreateOne())
		users.GET("/:id", userCRUD.GetOne(nil))
		users.PATCH("/:id", userCRUD.UpdateOne())
		users.DELETE("/:id", userCRUD.DeleteOne())
		users.PATCH("/:id/photo", userHandler.UploadPhoto)
		users.DELETE("/:id/photo", userHandler.DestroyPhoto)
		users.DELETE("/:id/deactivate", userHandler.Deactivate)
	}

	reviews := api.Group("/reviews")
	{
		reviews.GET("", reviewCRUD.GetAll(nil))
		reviews.POST("", reviewCRUD.CreateOne())
		reviews.GET("/:id", reviewCRUD.GetOne(nil))
		reviews.PATCH("/:id", reviewCRUD.UpdateOne())
		reviews.DELETE("/:id", reviewCRUD.DeleteOne())
	}

	server := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Tour API running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Shutting down HTTP server...")
		return server.Shutdown(ctx)
	})

	select {}
}
