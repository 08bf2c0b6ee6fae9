package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/dylanbaghel/devcamper-api/internal/httpx"

	"github.com/google/uuid"
)

// PhotoStore saves bootcamp photos under a configured directory, enforcing
// the image mime type and size limit.
type PhotoStore struct {
	Dir     string
	MaxSize int64
}

func NewPhotoStore(dir string, maxSize int64) *PhotoStore {
	return &PhotoStore{Dir: dir, MaxSize: maxSize}
}

// Save validates and writes the uploaded file, returning the stored filename.
func (p *PhotoStore) Save(file multipart.File, header *multipart.FileHeader, bootcampID uint) (string, error) {
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image") {
		return "", httpx.BadRequest("Please upload a valid image file")
	}
	if header.Size > p.MaxSize {
		return "", httpx.BadRequest("Please upload an image less than %d bytes", p.MaxSize)
	}

	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return "", err
	}
	ext := filepath.Ext(header.Filename)
	name := fmt.Sprintf("photo_%d_%s%s", bootcampID, uuid.NewString()[:8], ext)

	dst, err := os.Create(filepath.Join(p.Dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return name, nil
}
