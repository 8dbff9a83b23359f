package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/domain/repository"
	apperrors "coach-portal/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultGridFSTimeout = 30 * time.Second

// GridFSStorage keeps uploads in a MongoDB GridFS bucket. Re-uploading a key
// adds a revision; reads return the newest one.
type GridFSStorage struct {
	bucket *gridfs.Bucket
}

var _ repository.BlobStorage = (*GridFSStorage)(nil)

func NewGridFSStorage(db *mongo.Database, bucketName string) (*GridFSStorage, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket %s: %w", bucketName, err)
	}
	return &GridFSStorage{bucket: bucket}, nil
}

func (s *GridFSStorage) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	if err := s.bucket.SetWriteDeadline(deadline(ctx)); err != nil {
		return err
	}
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType, "size": size})
	if _, err := s.bucket.UploadFromStream(key, r, opts); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (s *GridFSStorage) Open(ctx context.Context, key string) (io.ReadCloser, model.BlobInfo, error) {
	if err := s.bucket.SetReadDeadline(deadline(ctx)); err != nil {
		return nil, model.BlobInfo{}, err
	}
	stream, err := s.bucket.OpenDownloadStreamByName(key)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, model.BlobInfo{}, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, model.BlobInfo{}, fmt.Errorf("download %s: %w", key, err)
	}

	file := stream.GetFile()
	info := model.BlobInfo{Key: key, Size: file.Length}
	var meta struct {
		ContentType string `bson:"contentType"`
	}
	if file.Metadata != nil && bson.Unmarshal(file.Metadata, &meta) == nil {
		info.ContentType = meta.ContentType
	}
	return stream, info, nil
}

func (s *GridFSStorage) Close() error { return nil }

func deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(defaultGridFSTimeout)
}
