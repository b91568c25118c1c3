// Offline data tooling: seeds or wipes the store from the JSON fixtures
// and backfills media references from local image files.
//
//	go run ./cmd/seed --import | --delete | --tour-upload | --tour-upload-all | --user-upload
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"tour-app/internal/config"
	"tour-app/internal/media"
	"tour-app/internal/models"
	"tour-app/internal/repository"
	"tour-app/internal/services"
	"tour-app/internal/utils"
)

const (
	dataDir     = "dev-data"
	tourImgDir  = "dev-data/img/tours"
	userImgDir  = "dev-data/img/users"
	batchUpload = time.Hour
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: seed --import | --delete | --tour-upload | --tour-upload-all | --user-upload")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx := context.Background()
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)
	db := mongoClient.Database(cfg.MongoDatabase)

	tourRepo := repository.NewTourRepository(db)
	userRepo := repository.New[models.User](db)
	reviewRepo := repository.New[models.Review](db)

	var mediaStore media.Store
	switch os.Args[1] {
	case "--tour-upload", "--tour-upload-all", "--user-upload":
		minioClient, err := utils.NewMinioClient(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket)
		if err != nil {
			log.Fatalf("minio init: %v", err)
		}
		mediaStore = media.NewMinioStore(minioClient, cfg.MinioBucket, cfg.MinioPublicURL)
	}

	switch os.Args[1] {
	case "--import":
		importData(ctx, tourRepo, userRepo, reviewRepo)
	case "--delete":
		deleteData(ctx, tourRepo, userRepo, reviewRepo)
	case "--tour-upload":
		uploadTourCovers(ctx, tourRepo, mediaStore)
	case "--tour-upload-all":
		uploadTourImages(ctx, tourRepo, mediaStore)
	case "--user-upload":
		uploadUserPhotos(ctx, userRepo, mediaStore)
	default:
		log.Fatalf("unknown flag %q", os.Args[1])
	}
}

func readFixture[T any](name string) ([]T, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, name))
	if err != nil {
		return nil, err
	}
	var docs []T
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func importData(ctx context.Context, tours *repository.TourRepository, users *repository.Repository[models.User], reviews *repository.Repository[models.Review]) {
	if docs, err := readFixture[models.Tour]("tours.json"); err != nil {
		log.Printf("[SEED] tours fixture: %v", err)
	} else if n, err := tours.InsertMany(ctx, docs); err != nil {
		log.Printf("[SEED] tours import: %v", err)
	} else {
		log.Printf("[SEED] Imported %d tours", n)
	}

	if docs, err := readFixture[models.User]("users.json"); err != nil {
		log.Printf("[SEED] users fixture: %v", err)
	} else if n, err := users.InsertMany(ctx, docs); err != nil {
		log.Printf("[SEED] users import: %v", err)
	} else {
		log.Printf("[SEED] Imported %d users", n)
	}

	if docs, err := readFixture[models.Review]("reviews.json"); err != nil {
		log.Printf("[SEED] reviews fixture: %v", err)
	} else if n, err := reviews.InsertMany(ctx, docs); err != nil {
		log.Printf("[SEED] reviews import: %v", err)
	} else {
		log.Printf("[SEED] Imported %d reviews", n)
	}

	log.Println("[SEED] Data successfully loaded!")
}

func deleteData(ctx context.Context, tours *repository.TourRepository, users *repository.Repository[models.User], reviews *repository.Repository[models.Review]) {
	for name, del := range map[string]func(context.Context) (int64, error){
		"tours":   tours.DeleteAll,
		"users":   users.DeleteAll,
		"reviews": reviews.DeleteAll,
	} {
		n, err := del(ctx)
		if err != nil {
			log.Printf("[SEED] delete %s: %v", name, err)
			continue
		}
		log.Printf("[SEED] Deleted %d %s", n, name)
	}
	log.Println("[SEED] Data successfully deleted!")
}

// uploadTourCovers pushes every tour's local cover image to the media
// store and rewrites imageCover to the returned URL. Records succeed or
// fail independently.
func uploadTourCovers(ctx context.Context, tours *repository.TourRepository, store media.Store) {
	docs, err := tours.All(ctx)
	if err != nil {
		log.Fatalf("[SEED] load tours: %v", err)
	}

	var wg sync.WaitGroup
	for _, tour := range docs {
		wg.Add(1)
		go func() {
			defer wg.Done()

			imagePath := filepath.Join(tourImgDir, tour.ImageCover)
			f, err := os.Open(imagePath)
			if err != nil {
				log.Printf("[SEED] %s: %v", tour.Name, err)
				return
			}
			defer f.Close()

			asset, err := store.Upload(ctx, f, services.TourCoverOptions(stripExt(tour.ImageCover), batchUpload))
			if err != nil {
				log.Printf("[SEED] %s: %v", tour.Name, err)
				return
			}
			if err := tours.Patch(ctx, tour.ID.Hex(), bson.M{"imageCover": asset.SecureURL}); err != nil {
				log.Printf("[SEED] %s: %v", tour.Name, err)
				return
			}
			log.Printf("[SEED] Uploaded %s to %s", imagePath, asset.SecureURL)
		}()
	}
	wg.Wait()
}

// uploadTourImages backfills each tour's gallery. Within one tour all
// images must succeed before the array is written; across tours failures
// are independent.
func uploadTourImages(ctx context.Context, tours *repository.TourRepository, store media.Store) {
	docs, err := tours.All(ctx)
	if err != nil {
		log.Fatalf("[SEED] load tours: %v", err)
	}

	var wg sync.WaitGroup
	for _, tour := range docs {
		if len(tour.Images) == 0 {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()

			urls := make([]string, len(tour.Images))
			g, gctx := errgroup.WithContext(ctx)
			for i, image := range tour.Images {
				g.Go(func() error {
					f, err := os.Open(filepath.Join(tourImgDir, image))
					if err != nil {
						return err
					}
					defer f.Close()

					asset, err := store.Upload(gctx, f, services.TourImageOptions(stripExt(image), batchUpload))
					if err != nil {
						return err
					}
					urls[i] = asset.SecureURL
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				log.Printf("[SEED] %s: %v", tour.Name, err)
				return
			}

			if err := tours.Patch(ctx, tour.ID.Hex(), bson.M{"images": urls}); err != nil {
				log.Printf("[SEED] %s: %v", tour.Name, err)
				return
			}
			log.Printf("[SEED] Uploaded %v for %s", urls, tour.Name)
		}()
	}
	wg.Wait()
}

// uploadUserPhotos assigns photos by positional filename: the i-th user
// gets user-<i+1>.jpg.
func uploadUserPhotos(ctx context.Context, users *repository.Repository[models.User], store media.Store) {
	docs, err := users.All(ctx)
	if err != nil {
		log.Fatalf("[SEED] load users: %v", err)
	}

	var wg sync.WaitGroup
	for i, user := range docs {
		wg.Add(1)
		go func() {
			defer wg.Done()

			imagePath := filepath.Join(userImgDir, fmt.Sprintf("user-%d.jpg", i+1))
			f, err := os.Open(imagePath)
			if err != nil {
				log.Printf("[SEED] %s: %v", user.Email, err)
				return
			}
			defer f.Close()

			asset, err := store.Upload(ctx, f, services.UserPhotoOptions(fmt.Sprintf("user-%d", i+1)))
			if err != nil {
				log.Printf("[SEED] %s: %v", user.Email, err)
				return
			}
			if err := users.Patch(ctx, user.ID.Hex(), bson.M{"image": asset.SecureURL, "publicId": asset.PublicID}); err != nil {
				log.Printf("[SEED] %s: %v", user.Email, err)
				return
			}
			log.Printf("[SEED] Uploaded %s to %s", imagePath, asset.SecureURL)
		}()
	}
	wg.Wait()
}

func stripExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
