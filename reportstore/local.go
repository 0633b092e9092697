package reportstore

import (
	"context"
	"io"
	"os"
	"path"

	"github.com/rs/zerolog"
)

type localStore struct {
	logger   zerolog.Logger
	basePath string
}

func NewLocalStore(logger zerolog.Logger, basePath string) (*localStore, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &localStore{
		logger:   logger,
		basePath: basePath,
	}, nil
}

func (l *localStore) Create(ctx context.Context, r io.Reader, name string) (string, error) {
	p := path.Join(l.basePath, name)
	if err := os.MkdirAll(path.Dir(p), os.ModePerm); err != nil {
		return "", err
	}
	logger := l.logger.With().Str("path", p).Logger()
	logger.Debug().Msgf("creating file")
	f, err := os.Create(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	logger.Debug().Msgf("wrote file")
	return p, nil
}
