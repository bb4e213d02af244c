package file

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/storage"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/validator"
)

// FileService stores files under logical folders.
type FileService interface {
	// Save stores r under folder with a generated name and returns the storage path
	Save(ctx context.Context, r io.Reader, filename, contentType, folder string) (string, error)
	URL(ctx context.Context, path string) (string, error)
	Delete(ctx context.Context, path string) error
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

func (s *fileServiceImpl) Save(ctx context.Context, r io.Reader, filename, contentType, folder string) (string, error) {
	name := uuid.New().String()
	if ext := validator.FileExtension(filename); ext != "" {
		name += "." + ext
	}

	uploadedPath, err := s.storage.Upload(ctx, r, path.Join(folder, name), contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return uploadedPath, nil
}

func (s *fileServiceImpl) URL(ctx context.Context, p string) (string, error) {
	return s.storage.GetURL(ctx, p)
}

func (s *fileServiceImpl) Delete(ctx context.Context, p string) error {
	return s.storage.Delete(ctx, p)
}
