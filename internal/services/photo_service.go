package services

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"tour-app/internal/media"
	"tour-app/internal/models"
	"tour-app/internal/repository"
)

const (
	MaxUserPhotoSize = 5 << 20
	MaxTourImages    = 3
)

type UserStore interface {
	FindByID(ctx context.Context, id string, populate *repository.Populate) (*models.User, error)
	Patch(ctx context.Context, id string, set bson.M) error
}

type TourStore interface {
	FindByID(ctx context.Context, id string, populate *repository.Populate) (*models.Tour, error)
	Patch(ctx context.Context, id string, set bson.M) error
}

// PhotoService orchestrates the upload flow: validate the file, drop the
// previous remote asset, push the new one and patch the owning record.
type PhotoService struct {
	store        media.Store
	users        UserStore
	tours        TourStore
	defaultImage string
}

func NewPhotoService(store media.Store, users UserStore, tours TourStore, defaultImage string) *PhotoService {
	return &PhotoService{store: store, users: users, tours: tours, defaultImage: defaultImage}
}

func UserPhotoOptions(publicID string) media.UploadOptions {
	return media.UploadOptions{
		PublicID: publicID,
		Folder:   "user-images",
		Format:   "jpeg",
		Transformation: []media.Transform{
			{Width: 400, Height: 400, Crop: "fill", Gravity: "face", Quality: 90},
		},
	}
}

func TourCoverOptions(publicID string, timeout time.Duration) media.UploadOptions {
	return media.UploadOptions{
		PublicID: path.Join("cover", publicID),
		Folder:   "tour-images",
		Format:   "jpeg",
		Transformation: []media.Transform{
			{Width: 1000, Height: 666, Quality: 90},
		},
		Timeout: timeout,
	}
}

func TourImageOptions(publicID string, timeout time.Duration) media.UploadOptions {
	return media.UploadOptions{
		PublicID: path.Join("images", publicID),
		Folder:   "tour-images",
		Format:   "jpeg",
		Transformation: []media.Transform{
			{Width: 500, Height: 333, Quality: 90},
		},
		Timeout: timeout,
	}
}

func checkImageFile(file *multipart.FileHeader) error {
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image") {
		return fmt.Errorf("%w: not an image, please upload only images", models.ErrBadRequest)
	}
	return nil
}

// UploadUserPhoto replaces the user's photo. An existing asset is deleted
// first, best-effort: a failed delete is logged and the upload proceeds.
func (s *PhotoService) UploadUserPhoto(ctx context.Context, userID string, file *multipart.FileHeader) (*models.User, error) {
	if err := checkImageFile(file); err != nil {
		return nil, err
	}
	if file.Size > MaxUserPhotoSize {
		return nil, fmt.Errorf("%w: please upload a file with size less than 5MB", models.ErrBadRequest)
	}

	user, err := s.users.FindByID(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	if user.PublicID != "" {
		if err := s.store.Delete(ctx, user.PublicID); err != nil {
			log.Printf("[MEDIA] Failed to delete previous asset %s: %v", user.PublicID, err)
		}
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrBadRequest, err)
	}
	defer src.Close()

	asset, err := s.store.Upload(ctx, src, UserPhotoOptions(""))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}

	set := bson.M{"image": asset.SecureURL, "publicId": asset.PublicID}
	if err := s.users.Patch(ctx, userID, set); err != nil {
		return nil, err
	}

	user.Image = asset.SecureURL
	user.PublicID = asset.PublicID
	return user, nil
}

// DestroyUserPhoto removes the current asset and resets the user's image
// to the configured default.
func (s *PhotoService) DestroyUserPhoto(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID, nil)
	if err != nil {
		return err
	}
	if user.PublicID == "" {
		return models.ErrNoPhoto
	}

	if err := s.store.Delete(ctx, user.PublicID); err != nil {
		return fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}

	return s.users.Patch(ctx, userID, bson.M{"image": s.defaultImage, "publicId": ""})
}

// UploadTourImages pushes the cover and every gallery image concurrently
// and writes the resulting references back in a single update. If any
// upload fails the whole operation fails and nothing is written.
func (s *PhotoService) UploadTourImages(ctx context.Context, tourID string, cover *multipart.FileHeader, images []*multipart.FileHeader) (*models.Tour, error) {
	if cover == nil && len(images) == 0 {
		return s.tours.FindByID(ctx, tourID, nil)
	}
	if len(images) > MaxTourImages {
		return nil, fmt.Errorf("%w: at most %d tour images allowed", models.ErrBadRequest, MaxTourImages)
	}
	if cover != nil {
		if err := checkImageFile(cover); err != nil {
			return nil, err
		}
	}
	for _, file := range images {
		if err := checkImageFile(file); err != nil {
			return nil, err
		}
	}

	tour, err := s.tours.FindByID(ctx, tourID, nil)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)

	var coverURL string
	if cover != nil {
		g.Go(func() error {
			src, err := cover.Open()
			if err != nil {
				return err
			}
			defer src.Close()

			asset, err := s.store.Upload(gctx, src, TourCoverOptions(stripExt(cover.Filename), 0))
			if err != nil {
				return err
			}
			coverURL = asset.SecureURL
			return nil
		})
	}

	urls := make([]string, len(images))
	for i, file := range images {
		g.Go(func() error {
			src, err := file.Open()
			if err != nil {
				return err
			}
			defer src.Close()

			asset, err := s.store.Upload(gctx, src, TourImageOptions(stripExt(file.Filename), 0))
			if err != nil {
				return err
			}
			urls[i] = asset.SecureURL
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}

	set := bson.M{}
	if cover != nil {
		set["imageCover"] = coverURL
		tour.ImageCover = coverURL
	}
	if len(images) > 0 {
		set["images"] = urls
		tour.Images = urls
	}
	if err := s.tours.Patch(ctx, tourID, set); err != nil {
		return nil, err
	}
	return tour, nil
}

func stripExt(filename string) string {
	base := path.Base(filename)
	return strings.TrimSuffix(base, path.Ext(base))
}
