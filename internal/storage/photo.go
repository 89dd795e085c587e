// Package storage keeps uploaded profile photos on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ErrNotImage is returned when an upload cannot be decoded as an image.
var ErrNotImage = errors.New("not a supported image")

const (
	photoMaxSide = 800
	photoQuality = 85
)

// PhotoStore writes normalised JPEG copies of profile photos under dir.
type PhotoStore struct {
	dir string
}

// NewPhotoStore creates dir if needed.
func NewPhotoStore(dir string) (*PhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create photo dir %s: %w", dir, err)
	}
	return &PhotoStore{dir: dir}, nil
}

// Save decodes r, fits it into photoMaxSide and stores it as <uuid>.jpg.
// It returns the stored file name, which is what Performer.ProfilePhoto
// holds.
func (s *PhotoStore) Save(r io.Reader) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", ErrNotImage
	}
	img = imaging.Fit(img, photoMaxSide, photoMaxSide, imaging.Lanczos)

	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate photo name: %w", err)
	}
	name := id.String() + ".jpg"

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}
	if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(photoQuality)); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("encode photo: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return name, nil
}

// Remove deletes a stored photo. Missing files are not an error.
func (s *PhotoStore) Remove(name string) error {
	if name == "" || filepath.Base(name) != name {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Dir is served as static content under /uploads/photos.
func (s *PhotoStore) Dir() string { return s.dir }
