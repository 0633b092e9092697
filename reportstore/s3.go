package reportstore

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/rs/zerolog"
)

type s3Store struct {
	logger  zerolog.Logger
	bucket  string
	session *session.Session
}

func NewS3Store(logger zerolog.Logger, session *session.Session, bucket string) *s3Store {
	return &s3Store{
		bucket:  bucket,
		session: session,
		logger:  logger,
	}
}

func (s *s3Store) Create(ctx context.Context, r io.Reader, name string) (string, error) {
	s.logger.Debug().Str("file", name).Msgf("creating new file")
	if _, err := s3manager.NewUploader(s.session).UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
		Body:   r,
	}); err != nil {
		return "", err
	}
	s.logger.Debug().Str("file", name).Msgf("s3 upload complete")
	return fmt.Sprintf("s3://%s/%s", s.bucket, name), nil
}
