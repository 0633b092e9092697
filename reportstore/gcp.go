package reportstore

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
)

type gcpStore struct {
	logger zerolog.Logger
	bucket string
	client *storage.Client
}

func NewGCPStore(logger zerolog.Logger, client *storage.Client, bucket string) *gcpStore {
	return &gcpStore{
		bucket: bucket,
		client: client,
		logger: logger,
	}
}

func (s *gcpStore) Create(ctx context.Context, r io.Reader, name string) (string, error) {
	s.logger.Debug().Str("file", name).Msgf("creating new file")
	wc := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	if _, err := io.Copy(wc, r); err != nil {
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	s.logger.Debug().Str("file", name).Msgf("gcp upload complete")
	return fmt.Sprintf("gs://%s/%s", s.bucket, name), nil
}
