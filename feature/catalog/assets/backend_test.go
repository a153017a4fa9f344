package assets

import (
	"context"
	"errors"
	"testing"

	"mulligan/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFSBackend(t *testing.T) {
	b := NewFSBackend(t.TempDir())
	ctx := context.Background()

	ok, err := b.Exists(ctx, "enUS/A1.png")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Put(ctx, "enUS/A1.png", []byte("one")))
	require.NoError(t, b.Put(ctx, "enUS/A1.png", []byte("two")))

	ok, err = b.Exists(ctx, "enUS/A1.png")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Exists(ctx, "enUS")
	require.NoError(t, err)
	assert.False(t, ok, "directories are not objects")

	assert.Error(t, b.Put(ctx, "../escape.png", []byte("x")))
}

func TestS3Backend(t *testing.T) {
	client := new(mocks.Client)
	b := NewS3Backend(client, "cards", "/images/")
	assert.Equal(t, "images/enUS/A1.png", b.Key("enUS/A1.png"))

	client.On("ListObjects", mock.Anything, "cards", mock.MatchedBy(func(o minio.ListObjectsOptions) bool {
		return o.Prefix == "images/enUS/A1.png"
	})).Return(func(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
		ch := make(chan minio.ObjectInfo, 1)
		ch <- minio.ObjectInfo{Key: "images/enUS/A1.png"}
		close(ch)
		return ch
	})
	client.On("PutObject", mock.Anything, "cards", "images/enUS/B2.png", mock.Anything, int64(3), mock.MatchedBy(func(o minio.PutObjectOptions) bool {
		return o.ContentType == "image/png"
	})).Return(minio.UploadInfo{}, nil)
	client.On("PutObject", mock.Anything, "cards", "images/enUS/C3.png", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("denied"))

	ok, err := b.Exists(context.Background(), "enUS/A1.png")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, b.Put(context.Background(), "enUS/B2.png", []byte("png")))
	assert.ErrorContains(t, b.Put(context.Background(), "enUS/C3.png", []byte("png")), "denied")

	client.AssertExpectations(t)
}
