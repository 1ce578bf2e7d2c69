package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucketName, opts).Error(0)
}

func (m *mockStore) FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, filePath, opts)
	return minio.UploadInfo{Bucket: bucketName, Key: objectName}, args.Error(0)
}

func TestNewMirror_Bucket(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		setup       func(*mockStore)
		errContains string
	}{
		{
			name: "exists",
			setup: func(s *mockStore) {
				s.On("BucketExists", ctx, "transcripts").Return(true, nil)
			},
		},
		{
			name: "created",
			setup: func(s *mockStore) {
				s.On("BucketExists", ctx, "transcripts").Return(false, nil)
				s.On("MakeBucket", ctx, "transcripts", minio.MakeBucketOptions{}).Return(nil)
			},
		},
		{
			name: "check_fails",
			setup: func(s *mockStore) {
				s.On("BucketExists", ctx, "transcripts").Return(false, errors.New("no route"))
			},
			errContains: "failed to check bucket existence",
		},
		{
			name: "create_fails",
			setup: func(s *mockStore) {
				s.On("BucketExists", ctx, "transcripts").Return(false, nil)
				s.On("MakeBucket", ctx, "transcripts", minio.MakeBucketOptions{}).Return(errors.New("denied"))
			},
			errContains: "failed to create bucket",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			tt.setup(store)

			m, err := newMirror(ctx, store, "transcripts", "")
			if tt.errContains != "" {
				assert.ErrorContains(t, err, tt.errContains)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, m)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestMinioMirror_Upload(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("FPutObject", ctx, "b", "runs/talk_transcript.txt", "/out/talk_transcript.txt", mock.Anything).Return(nil)

	m := &MinioMirror{client: store, bucket: "b", prefix: "runs"}
	key, err := m.Upload(ctx, "/out/talk_transcript.txt")
	require.NoError(t, err)
	assert.Equal(t, "runs/talk_transcript.txt", key)
	store.AssertExpectations(t)
}

func TestMinioMirror_UploadError(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("FPutObject", ctx, "b", "a_transcript.txt", "a_transcript.txt", mock.Anything).Return(errors.New("403"))

	m := &MinioMirror{client: store, bucket: "b"}
	_, err := m.Upload(ctx, "a_transcript.txt")
	assert.ErrorContains(t, err, "failed to upload")
}
