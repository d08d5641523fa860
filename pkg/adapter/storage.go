package adapter

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// Storage holds conversation transcripts. Firestore documents have a hard
// size limit, so turn bodies live in object storage and only conversation
// metadata goes to the repository.
type Storage interface {
	// Put returns a writer for the transcript stored under key
	Put(ctx context.Context, key string) (io.WriteCloser, error)
	// Get opens the transcript stored under key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// storageClient implements Storage on Cloud Storage
type storageClient struct {
	bucketName string
	client     *storage.Client
}

// NewStorage creates a new Cloud Storage backed transcript store
func NewStorage(ctx context.Context, bucketName string) (Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &storageClient{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (s *storageClient) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	obj := s.client.Bucket(s.bucketName).Object(key)
	return obj.NewWriter(ctx), nil
}

func (s *storageClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj := s.client.Bucket(s.bucketName).Object(key)
	reader, err := obj.NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read transcript", goerr.V("key", key))
	}

	return reader, nil
}
