package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"reflect"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"tour-app/internal/media"
	"tour-app/internal/models"
	"tour-app/internal/repository"
)

type fakeMediaStore struct {
	mu        sync.Mutex
	calls     []string
	uploadErr error
	deleteErr error
}

func (f *fakeMediaStore) Upload(ctx context.Context, r io.Reader, opts media.UploadOptions) (*media.Asset, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "upload:"+opts.Folder)
	f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	publicID := opts.Folder + "/" + opts.PublicID + ".jpeg"
	return &media.Asset{
		SecureURL: "https://cdn.example.com/bucket/" + publicID,
		PublicID:  publicID,
	}, nil
}

func (f *fakeMediaStore) Delete(ctx context.Context, publicID string) error {
	f.mu.Lock()
	f.calls = append(f.calls, "delete:"+publicID)
	f.mu.Unlock()
	return f.deleteErr
}

type fakeUserStore struct {
	user    *models.User
	patches []bson.M
}

func (f *fakeUserStore) FindByID(ctx context.Context, id string, populate *repository.Populate) (*models.User, error) {
	if f.user == nil {
		return nil, models.ErrNotFound
	}
	u := *f.user
	return &u, nil
}

func (f *fakeUserStore) Patch(ctx context.Context, id string, set bson.M) error {
	f.patches = append(f.patches, set)
	return nil
}

type fakeTourStore struct {
	tour    *models.Tour
	patches []bson.M
}

func (f *fakeTourStore) FindByID(ctx context.Context, id string, populate *repository.Populate) (*models.Tour, error) {
	if f.tour == nil {
		return nil, models.ErrNotFound
	}
	tr := *f.tour
	return &tr, nil
}

func (f *fakeTourStore) Patch(ctx context.Context, id string, set bson.M) error {
	f.patches = append(f.patches, set)
	return nil
}

func makeFileHeader(t *testing.T, field, filename, contentType string, size int) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(bytes.Repeat([]byte("a"), size)); err != nil {
		t.Fatal(err)
	}
	w.Close()

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File[field][0]
}

func newPhotoService(store *fakeMediaStore, users *fakeUserStore, tours *fakeTourStore) *PhotoService {
	return NewPhotoService(store, users, tours, "https://cdn.example.com/default.jpg")
}

func TestUploadUserPhoto_OversizedFileRejected(t *testing.T) {
	store := &fakeMediaStore{}
	users := &fakeUserStore{user: &models.User{}}
	svc := newPhotoService(store, users, &fakeTourStore{})

	file := makeFileHeader(t, "image", "photo.jpg", "image/jpeg", 6<<20)
	_, err := svc.UploadUserPhoto(context.Background(), "abc", file)
	if !errors.Is(err, models.ErrBadRequest) {
		t.Fatalf("err = %v, want bad request", err)
	}
	if len(store.calls) != 0 {
		t.Errorf("media store called %v, want no calls", store.calls)
	}
}

func TestUploadUserPhoto_NonImageRejected(t *testing.T) {
	store := &fakeMediaStore{}
	users := &fakeUserStore{user: &models.User{}}
	svc := newPhotoService(store, users, &fakeTourStore{})

	file := makeFileHeader(t, "image", "notes.txt", "text/plain", 100)
	_, err := svc.UploadUserPhoto(context.Background(), "abc", file)
	if !errors.Is(err, models.ErrBadRequest) {
		t.Fatalf("err = %v, want bad request", err)
	}
	if len(store.calls) != 0 {
		t.Errorf("media store called %v, want no calls", store.calls)
	}
}

func TestUploadUserPhoto_ReplacesPriorAsset(t *testing.T) {
	store := &fakeMediaStore{}
	users := &fakeUserStore{user: &models.User{PublicID: "old123", Image: "https://cdn.example.com/old.jpg"}}
	svc := newPhotoService(store, users, &fakeTourStore{})

	file := makeFileHeader(t, "image", "photo.jpg", "image/jpeg", 2<<20)
	user, err := svc.UploadUserPhoto(context.Background(), "abc", file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"delete:old123", "upload:user-images"}
	if !reflect.DeepEqual(store.calls, want) {
		t.Errorf("media calls = %v, want %v", store.calls, want)
	}

	if len(users.patches) != 1 {
		t.Fatalf("patches = %v, want exactly one", users.patches)
	}
	set := users.patches[0]
	if set["publicId"] == "old123" || set["publicId"] == "" {
		t.Errorf("patched publicId = %v, want the new asset id", set["publicId"])
	}
	if user.PublicID != set["publicId"] || user.Image != set["image"] {
		t.Errorf("returned user %+v does not match patch %v", user, set)
	}
}

func TestUploadUserPhoto_NoPriorAssetSkipsDelete(t *testing.T) {
	store := &fakeMediaStore{}
	users := &fakeUserStore{user: &models.User{}}
	svc := newPhotoService(store, users, &fakeTourStore{})

	file := makeFileHeader(t, "image", "photo.jpg", "image/jpeg", 1024)
	if _, err := svc.UploadUserPhoto(context.Background(), "abc", file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(store.calls, []string{"upload:user-images"}) {
		t.Errorf("media calls = %v, want a single upload", store.calls)
	}
}

func TestUploadUserPhoto_DeleteFailureDoesNotBlock(t *testing.T) {
	store := &fakeMediaStore{deleteErr: errors.New("asset gone")}
	users := &fakeUserStore{user: &models.User{PublicID: "old123"}}
	svc := newPhotoService(store, users, &fakeTourStore{})

	file := makeFileHeader(t, "image", "photo.jpg", "image/jpeg", 1024)
	if _, err := svc.UploadUserPhoto(context.Background(), "abc", file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(store.calls, []string{"delete:old123", "upload:user-images"}) {
		t.Errorf("media calls = %v", store.calls)
	}
}

func TestUploadUserPhoto_UpstreamFailure(t *testing.T) {
	store := &fakeMediaStore{uploadErr: errors.New("host unavailable")}
	users := &fakeUserStore{user: &models.User{}}
	svc := newPhotoService(store, users, &fakeTourStore{})

	file := makeFileHeader(t, "image", "photo.jpg", "image/jpeg", 1024)
	_, err := svc.UploadUserPhoto(context.Background(), "abc", file)
	if !errors.Is(err, models.ErrUpstream) {
		t.Fatalf("err = %v, want upstream failure", err)
	}
	if len(users.patches) != 0 {
		t.Errorf("record was patched on a failed upload: %v", users.patches)
	}
}

func TestDestroyUserPhoto_NoPhoto(t *testing.T) {
	store := &fakeMediaStore{}
	users := &fakeUserStore{user: &models.User{}}
	svc := newPhotoService(store, users, &fakeTourStore{})

	err := svc.DestroyUserPhoto(context.Background(), "abc")
	if !errors.Is(err, models.ErrNoPhoto) {
		t.Fatalf("err = %v, want no-photo", err)
	}
	if len(store.calls) != 0 {
		t.Errorf("media store called %v, want no calls", store.calls)
	}
}

func TestDestroyUserPhoto_ResetsToDefault(t *testing.T) {
	store := &fakeMediaStore{}
	users := &fakeUserStore{user: &models.User{PublicID: "old123"}}
	svc := newPhotoService(store, users, &fakeTourStore{})

	if err := svc.DestroyUserPhoto(context.Background(), "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(store.calls, []string{"delete:old123"}) {
		t.Errorf("media calls = %v", store.calls)
	}
	want := bson.M{"image": "https://cdn.example.com/default.jpg", "publicId": ""}
	if len(users.patches) != 1 || !reflect.DeepEqual(users.patches[0], want) {
		t.Errorf("patches = %v, want [%v]", users.patches, want)
	}
}

func TestUploadTourImages_TooManyImages(t *testing.T) {
	store := &fakeMediaStore{}
	tours := &fakeTourStore{tour: &models.Tour{}}
	svc := newPhotoService(store, &fakeUserStore{}, tours)

	images := make([]*multipart.FileHeader, 4)
	for i := range images {
		images[i] = makeFileHeader(t, "images", fmt.Sprintf("tour-%d.jpg", i), "image/jpeg", 512)
	}
	_, err := svc.UploadTourImages(context.Background(), "abc", nil, images)
	if !errors.Is(err, models.ErrBadRequest) {
		t.Fatalf("err = %v, want bad request", err)
	}
	if len(store.calls) != 0 {
		t.Errorf("media store called %v, want no calls", store.calls)
	}
}

func TestUploadTourImages_WritesBackInOneUpdate(t *testing.T) {
	store := &fakeMediaStore{}
	tours := &fakeTourStore{tour: &models.Tour{}}
	svc := newPhotoService(store, &fakeUserStore{}, tours)

	cover := makeFileHeader(t, "imageCover", "cover.jpg", "image/jpeg", 512)
	images := []*multipart.FileHeader{
		makeFileHeader(t, "images", "tour-1.jpg", "image/jpeg", 512),
		makeFileHeader(t, "images", "tour-2.jpg", "image/jpeg", 512),
	}

	tour, err := svc.UploadTourImages(context.Background(), "abc", cover, images)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.calls) != 3 {
		t.Errorf("upload count = %d, want 3", len(store.calls))
	}
	if len(tours.patches) != 1 {
		t.Fatalf("patches = %v, want exactly one update", tours.patches)
	}

	set := tours.patches[0]
	if set["imageCover"] != "https://cdn.example.com/bucket/tour-images/cover/cover.jpeg" {
		t.Errorf("imageCover = %v", set["imageCover"])
	}
	wantImages := []string{
		"https://cdn.example.com/bucket/tour-images/images/tour-1.jpeg",
		"https://cdn.example.com/bucket/tour-images/images/tour-2.jpeg",
	}
	if !reflect.DeepEqual(set["images"], wantImages) {
		t.Errorf("images = %v, want %v", set["images"], wantImages)
	}
	if tour.ImageCover != set["imageCover"] {
		t.Errorf("returned tour cover %v does not match patch", tour.ImageCover)
	}
}

func TestUploadTourImages_FailureWritesNothing(t *testing.T) {
	store := &fakeMediaStore{uploadErr: errors.New("host unavailable")}
	tours := &fakeTourStore{tour: &models.Tour{}}
	svc := newPhotoService(store, &fakeUserStore{}, tours)

	images := []*multipart.FileHeader{
		makeFileHeader(t, "images", "tour-1.jpg", "image/jpeg", 512),
	}
	_, err := svc.UploadTourImages(context.Background(), "abc", nil, images)
	if !errors.Is(err, models.ErrUpstream) {
		t.Fatalf("err = %v, want upstream failure", err)
	}
	if len(tours.patches) != 0 {
		t.Errorf("partial array was written: %v", tours.patches)
	}
}

func TestUploadTourImages_NoFilesPassesThrough(t *testing.T) {
	store := &fakeMediaStore{}
	tours := &fakeTourStore{tour: &models.Tour{Name: "The Forest Hiker Tour"}}
	svc := newPhotoService(store, &fakeUserStore{}, tours)

	tour, err := svc.UploadTourImages(context.Background(), "abc", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tour.Name != "The Forest Hiker Tour" {
		t.Errorf("unexpected tour %+v", tour)
	}
	if len(store.calls) != 0 || len(tours.patches) != 0 {
		t.Errorf("pass-through touched store or record: %v %v", store.calls, tours.patches)
	}
}
