package file_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/containercalc/containercalc/pkg/file"
)

type mockS3Client struct {
	putInputs    []*s3.PutObjectInput
	deleteInputs []*s3.DeleteObjectInput
	putErr       error
	deleteErr    error
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.putInputs = append(m.putInputs, params)
	if m.putErr != nil {
		return nil, m.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.deleteInputs = append(m.deleteInputs, params)
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

func newS3Storage(t *testing.T, client *mockS3Client, cfg file.S3Config) *file.S3Storage {
	t.Helper()
	storage, err := file.NewS3Storage(context.Background(), cfg, file.WithS3Client(client))
	require.NoError(t, err)
	return storage
}

func TestS3Storage_Save(t *testing.T) {
	t.Parallel()

	client := &mockS3Client{}
	storage := newS3Storage(t, client, file.S3Config{
		Bucket: "assets",
		Region: "eu-west-1",
	})

	saved, err := storage.Save(context.Background(), strings.NewReader("img"), "products/p1/a.png", "image/png")
	require.NoError(t, err)

	require.Len(t, client.putInputs, 1)
	assert.Equal(t, "assets", *client.putInputs[0].Bucket)
	assert.Equal(t, "products/p1/a.png", *client.putInputs[0].Key)
	assert.Equal(t, "image/png", *client.putInputs[0].ContentType)

	assert.Equal(t, int64(3), saved.Size)
	assert.Equal(t, "https://assets.s3.eu-west-1.amazonaws.com/products/p1/a.png", saved.URL)
}

func TestS3Storage_Save_PutFailure(t *testing.T) {
	t.Parallel()

	client := &mockS3Client{putErr: assert.AnError}
	storage := newS3Storage(t, client, file.S3Config{Bucket: "assets", Region: "us-east-1"})

	_, err := storage.Save(context.Background(), strings.NewReader("img"), "a.png", "image/png")
	assert.ErrorIs(t, err, file.ErrFailedToWriteFile)
}

func TestS3Storage_Delete(t *testing.T) {
	t.Parallel()

	client := &mockS3Client{}
	storage := newS3Storage(t, client, file.S3Config{Bucket: "assets", Region: "us-east-1"})

	require.NoError(t, storage.Delete(context.Background(), "products/p1/a.png"))
	require.Len(t, client.deleteInputs, 1)
	assert.Equal(t, "products/p1/a.png", *client.deleteInputs[0].Key)
}

func TestS3Storage_CustomEndpointURL(t *testing.T) {
	t.Parallel()

	storage := newS3Storage(t, &mockS3Client{}, file.S3Config{
		Bucket:         "assets",
		Region:         "us-east-1",
		Endpoint:       "http://localhost:9000",
		ForcePathStyle: true,
	})

	assert.Equal(t, "http://localhost:9000/assets/products/x.png", storage.URL("products/x.png"))
}

func TestNewS3Storage_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := file.NewS3Storage(context.Background(), file.S3Config{})
	assert.ErrorIs(t, err, file.ErrInvalidConfig)
}
