package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"family_hub_server/internal/config"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoragePutAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root, "http://localhost:8000/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "images/a.jpg", strings.NewReader("data"), 4, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/uploads/images/a.jpg", url)

	content, err := os.ReadFile(filepath.Join(root, "images", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	require.NoError(t, store.Delete(context.Background(), "images/a.jpg"))
	require.NoError(t, store.Delete(context.Background(), "images/a.jpg"))
	_, err = os.Stat(filepath.Join(root, "images", "a.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageKeepsKeysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root, "")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../../escape.txt", strings.NewReader("x"), 1, "text/plain")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.NoError(t, err)
}

type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.failPut {
		return nil, errors.New("put failed")
	}
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.objects[*input.Key] = data
	m.mu.Unlock()
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	delete(m.objects, *input.Key)
	m.mu.Unlock()
	return &s3.DeleteObjectOutput{}, nil
}

type mockPresigner struct{}

func (mockPresigner) PresignGetObject(_ context.Context, input *s3.GetObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	var o s3.PresignOptions
	for _, fn := range opts {
		fn(&o)
	}
	return &v4.PresignedHTTPRequest{URL: "https://signed/" + *input.Key + "?ttl=" + o.Expires.String()}, nil
}

func TestS3StoragePutDeleteSign(t *testing.T) {
	client := &mockS3Client{objects: make(map[string][]byte)}
	store := newS3Storage(client, mockPresigner{}, &config.StorageConfig{Bucket: "family", Region: "eu-west-1"})

	url, err := store.Put(context.Background(), "videos/1.mp4", strings.NewReader("clip"), 4, "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "https://family.s3.eu-west-1.amazonaws.com/videos/1.mp4", url)
	assert.Equal(t, []byte("clip"), client.objects["videos/1.mp4"])

	signed, err := store.SignedURL(context.Background(), "videos/1.mp4", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://signed/videos/1.mp4?ttl=15m0s", signed)

	require.NoError(t, store.Delete(context.Background(), "videos/1.mp4"))
	assert.Empty(t, client.objects)
}

func TestS3StoragePutError(t *testing.T) {
	client := &mockS3Client{objects: make(map[string][]byte), failPut: true}
	store := newS3Storage(client, mockPresigner{}, &config.StorageConfig{Bucket: "b", Endpoint: "http://minio:9000"})

	_, err := store.Put(context.Background(), "k", strings.NewReader("x"), 1, "text/plain")
	assert.Error(t, err)
	assert.Equal(t, "http://minio:9000/b", store.baseURL)
}
