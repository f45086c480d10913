package uploads

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
)

// ObjectStore puts one object and returns its public URL. The GCS
// implementation is used in production; tests plug in a fake.
type ObjectStore interface {
	Put(ctx context.Context, objectPath string, r io.Reader) (string, error)
}

// GCSStore uploads objects to a public Google Cloud Storage bucket.
type GCSStore struct {
	cl     *storage.Client
	bucket string
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{cl: client, bucket: bucket}, nil
}

// Put writes the object under a 50s deadline and returns its public URL.
func (g *GCSStore) Put(ctx context.Context, objectPath string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*50)
	defer cancel()

	wc := g.cl.Bucket(g.bucket).Object(objectPath).NewWriter(ctx)
	if _, err := io.Copy(wc, r); err != nil {
		return "", fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("Writer.Close: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, objectPath), nil
}

func (g *GCSStore) Close() error {
	return g.cl.Close()
}
