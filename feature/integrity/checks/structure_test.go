package checks

import (
	"context"
	"testing"

	"lot-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestCheckStructure(t *testing.T) {
	folders := []string{"hilco", "remate-norte"}

	t.Run("Bucket Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "lots").Return(false, nil)

		_, err := CheckStructure(context.Background(), mockClient, "lots", folders)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("All Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "lots").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "lots", mock.Anything).Return(mocks.ObjectsChan())

		missing, err := CheckStructure(context.Background(), mockClient, "lots", folders)
		assert.NoError(t, err)
		assert.Equal(t, folders, missing)
	})

	t.Run("One Present", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "lots").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "lots", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
			return opts.Prefix == "hilco/"
		})).Return(mocks.ObjectsChan("hilco/100/1.png"))
		mockClient.On("ListObjects", mock.Anything, "lots", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
			return opts.Prefix == "remate-norte/"
		})).Return(mocks.ObjectsChan())

		missing, err := CheckStructure(context.Background(), mockClient, "lots", folders)
		assert.NoError(t, err)
		assert.Equal(t, []string{"remate-norte"}, missing)
	})
}

func TestFixStructure(t *testing.T) {
	logger := zap.NewNop()
	mockClient := new(mocks.Client)

	mockClient.On("PutObject", mock.Anything, "lots", "hilco/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	err := FixStructure(context.Background(), mockClient, "lots", logger, []string{"hilco"})
	assert.NoError(t, err)
	mockClient.AssertNumberOfCalls(t, "PutObject", 1)
}
