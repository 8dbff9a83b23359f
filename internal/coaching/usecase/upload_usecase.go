package usecase

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/domain/repository"
	apperrors "coach-portal/internal/shared/errors"
	"coach-portal/internal/shared/logger"
)

var uploadFolders = map[string]bool{
	"documents": true,
	"avatars":   true,
	"plans":     true,
	"checkins":  true,
}

// IsUploadFolder reports whether folder accepts uploads.
func IsUploadFolder(folder string) bool {
	return uploadFolders[folder]
}

// UploadInput is one multipart file.
type UploadInput struct {
	Folder      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult is the body returned by POST /upload.
type UploadResult struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type UploadUsecase interface {
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)
	Open(ctx context.Context, folder, name string) (io.ReadCloser, model.BlobInfo, error)
}

type uploadUsecase struct {
	blobs     repository.BlobStorage
	publicURL string
	maxBytes  int64
	logger    logger.Logger
	now       func() time.Time
}

func NewUploadUsecase(blobs repository.BlobStorage, publicURL string, maxBytes int64, log logger.Logger) UploadUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &uploadUsecase{
		blobs:     blobs,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxBytes:  maxBytes,
		logger:    log.WithComponent("uploads"),
		now:       time.Now,
	}
}

func (uc *uploadUsecase) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if !IsUploadFolder(in.Folder) {
		return nil, apperrors.NewValidationError("Invalid folder").WithCause(apperrors.ErrInvalidFolder)
	}
	if in.Body == nil || in.Filename == "" {
		return nil, apperrors.NewValidationError("No file provided").WithCause(apperrors.ErrMissingFile)
	}
	if uc.maxBytes > 0 && in.Size > uc.maxBytes {
		return nil, apperrors.NewValidationError(fmt.Sprintf("File exceeds %d bytes", uc.maxBytes)).
			WithCause(apperrors.ErrFileTooLarge)
	}

	name := fmt.Sprintf("%d-%s", uc.now().UnixMilli(), SanitizeFilename(in.Filename))
	key := in.Folder + "/" + name
	if err := uc.blobs.Put(ctx, key, in.ContentType, in.Body, in.Size); err != nil {
		uc.logger.WithContext(ctx).Errorf("upload %s failed: %v", key, err)
		return nil, apperrors.NewInfrastructureError("Upload failed").WithCause(err)
	}

	return &UploadResult{
		URL:  uc.publicURL + "/" + key,
		Name: in.Filename,
		Size: in.Size,
	}, nil
}

func (uc *uploadUsecase) Open(ctx context.Context, folder, name string) (io.ReadCloser, model.BlobInfo, error) {
	if !IsUploadFolder(folder) {
		return nil, model.BlobInfo{}, apperrors.ErrInvalidFolder
	}
	if name == "" || name != path.Base(name) || strings.Contains(name, "..") {
		return nil, model.BlobInfo{}, apperrors.ErrNotFound
	}
	return uc.blobs.Open(ctx, folder+"/"+name)
}

// SanitizeFilename keeps letters, digits, dot, dash and underscore and replaces
// everything else with a dash.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}
