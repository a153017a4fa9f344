package storage_test

import (
	"context"
	"errors"
	"testing"

	"mulligan/core/storage"
	"mulligan/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			Bucket:    "test-bucket",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func listing(keys ...string) func(context.Context, string, minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	return func(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
		ch := make(chan minio.ObjectInfo, len(keys))
		for _, k := range keys {
			ch <- minio.ObjectInfo{Key: k}
		}
		close(ch)
		return ch
	}
}

func TestObjectExists(t *testing.T) {
	ctx := context.Background()

	t.Run("ExactKey", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "cards", mock.Anything).Return(listing("images/enUS/A.png"))

		ok, err := storage.ObjectExists(ctx, client, "cards", "images/enUS/A.png")
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("PrefixOnlyMatch", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "cards", mock.Anything).Return(listing("images/enUS/A.png.bak"))

		ok, err := storage.ObjectExists(ctx, client, "cards", "images/enUS/A.png")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ListError", func(t *testing.T) {
		client := new(mocks.Client)
		ch := make(chan minio.ObjectInfo, 1)
		ch <- minio.ObjectInfo{Err: errors.New("access denied")}
		close(ch)
		client.On("ListObjects", mock.Anything, "cards", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

		ok, err := storage.ObjectExists(ctx, client, "cards", "images/enUS/A.png")
		assert.Error(t, err)
		assert.False(t, ok)
	})
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "cards").Return(true, nil)

		assert.NoError(t, storage.EnsureBucket(ctx, client, "cards", ""))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "cards").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "cards", minio.MakeBucketOptions{Region: "eu"}).Return(nil)

		assert.NoError(t, storage.EnsureBucket(ctx, client, "cards", "eu"))
		client.AssertExpectations(t)
	})
}
