package integrity

import (
	"context"
	"errors"
	"testing"

	"lot-sync/core/config"
	"lot-sync/core/reconcile"
	"lot-sync/core/storage"
	"lot-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testStore = storage.Config{Endpoint: "localhost:9000", Bucket: "test-bucket"}

type fakeLedgers map[string][]reconcile.LedgerEntry

func (f fakeLedgers) LoadLedger(ctx context.Context, auction string) (*reconcile.Ledger, error) {
	if auction == "broken" {
		return nil, errors.New("ledger unavailable")
	}
	return reconcile.NewLedger(f[auction]...), nil
}

func testAuctions() []config.Auction {
	return []config.Auction{{Name: "Hilco", URL: "https://subastas.test/hilco"}}
}

func TestService_Structure(t *testing.T) {
	mockClient := new(mocks.Client)
	svc := NewService(mockClient, testStore, nil, fakeLedgers{}, testAuctions(), zap.NewNop())

	t.Run("CheckStructure", func(t *testing.T) {
		mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(mocks.ObjectsChan())

		missing, err := svc.CheckStructure(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, []string{"hilco"}, missing)
	})

	t.Run("FixStructure", func(t *testing.T) {
		mockClient.On("PutObject", mock.Anything, "test-bucket", "hilco/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)
		err := svc.FixStructure(context.Background(), []string{"hilco"})
		assert.NoError(t, err)
	})
}

func TestService_Check(t *testing.T) {
	ledgers := fakeLedgers{"Hilco": {
		{OriginalURL: "https://site/a.jpg", DurableURL: testStore.ObjectURL("hilco/100/1.png")},
	}}

	t.Run("Consistent", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(mocks.ObjectsChan("hilco/100/1.png"))
		svc := NewService(mockClient, testStore, nil, ledgers, testAuctions(), nil)

		report, err := svc.Check(context.Background(), "Hilco")
		require.NoError(t, err)
		assert.True(t, report.OK())
		assert.Equal(t, "hilco", report.Folder)
	})

	t.Run("UnknownAuction", func(t *testing.T) {
		svc := NewService(new(mocks.Client), testStore, nil, ledgers, testAuctions(), nil)

		_, err := svc.Check(context.Background(), "other")
		assert.ErrorIs(t, err, ErrUnknownAuction)
	})
}

func TestService_CheckAll(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).
		Return(func(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
			if opts.Prefix == "hilco/" {
				return mocks.ObjectsChan("hilco/100/1.png")
			}
			return mocks.ObjectsChan()
		})

	auctions := append(testAuctions(), config.Auction{Name: "broken", URL: "https://subastas.test/broken"})
	svc := NewService(mockClient, testStore, nil, fakeLedgers{}, auctions, nil)

	report := svc.CheckAll(context.Background())
	assert.False(t, report.OK())
	assert.Equal(t, []string{"broken"}, report.Structure)
	assert.Nil(t, report.Schema)
	require.Contains(t, report.Images, "Hilco")
	assert.Equal(t, []string{"hilco/100/1.png"}, report.Images["Hilco"].Orphans)
	assert.Equal(t, []string{"broken: ledger unavailable"}, report.Errors)
}
