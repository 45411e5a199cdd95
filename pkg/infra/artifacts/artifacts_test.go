package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/NeuralTrust/DisasterGate/pkg/domain/model/mocks"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/httpx"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/prometheus"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(aws.ToString(in.Bucket), aws.ToString(in.Key))
	out, ok := args.Get(0).(*s3.GetObjectOutput)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected *s3.GetObjectOutput, got %T", args.Get(0))
	}
	return out, args.Error(1)
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	args := m.Called(aws.ToString(in.Bucket), aws.ToString(in.Key), string(body))
	return &s3.PutObjectOutput{}, args.Error(0)
}

func TestS3Store_Get(t *testing.T) {
	client := new(mockS3)
	client.On("GetObject", "models", "1/abc/artifacts/models/pipeline.json.zst").
		Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("payload"))}, nil)
	client.On("GetObject", "models", "missing").Return(nil, &types.NoSuchKey{})
	client.On("GetObject", "models", "broken").Return(nil, errors.New("connection reset"))

	store := NewS3StoreWithClient(client)
	ctx := context.Background()

	rc, err := store.Get(ctx, "models", "1/abc/artifacts/models/pipeline.json.zst")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = store.Get(ctx, "models", "missing")
	assert.ErrorIs(t, err, model.ErrArtifactNotFound)

	_, err = store.Get(ctx, "models", "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrArtifactNotFound)
	assert.Contains(t, err.Error(), "s3://models/broken")
}

func TestS3Store_Put(t *testing.T) {
	client := new(mockS3)
	client.On("PutObject", "models", "k", "payload").Return(nil)

	store := NewS3StoreWithClient(client)
	require.NoError(t, store.Put(context.Background(), "models", "k", strings.NewReader("payload")))
	client.AssertExpectations(t)
}

func TestFileStore_RoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "models", "1/run/artifacts/models/a.bin", bytes.NewReader([]byte("hello"))))
	rc, err := store.Get(ctx, "models", "1/run/artifacts/models/a.bin")
	require.NoError(t, err)
	defer rc.Close() //nolint:errcheck
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = store.Get(ctx, "models", "1/run/none")
	assert.ErrorIs(t, err, model.ErrArtifactNotFound)
}

func TestFileStore_RejectsEscapingKeys(t *testing.T) {
	store := NewFileStore(t.TempDir())
	_, err := store.Get(context.Background(), "models", "../../etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes bucket")
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	fs := NewFileStore(t.TempDir())
	reg.Register(model.FileScheme, fs)

	store, err := reg.Store(model.FileScheme)
	require.NoError(t, err)
	assert.Same(t, fs, store)

	_, err = reg.Store("gs")
	require.Error(t, err)
	assert.True(t, model.IsConfigurationError(err))

	_, err = reg.Store("")
	assert.True(t, model.IsConfigurationError(err), "empty scheme resolves to s3, which is not registered")
}

func TestBreakerStore_NotFoundDoesNotTrip(t *testing.T) {
	inner := new(mocks.ArtifactStore)
	inner.On("Get", mock.Anything, "b", "missing").Return(nil, model.ErrArtifactNotFound)
	store := NewBreakerStore("test-artifacts", inner, time.Minute, 1)

	for i := 0; i < 3; i++ {
		_, err := store.Get(context.Background(), "b", "missing")
		assert.ErrorIs(t, err, model.ErrArtifactNotFound)
	}
	inner.AssertNumberOfCalls(t, "Get", 3)
}

func TestBreakerStore_OpensOnFailures(t *testing.T) {
	inner := new(mocks.ArtifactStore)
	inner.On("Get", mock.Anything, "b", "k").Return(nil, errors.New("timeout"))
	store := NewBreakerStore("test-artifacts-open", inner, time.Minute, 2)

	for i := 0; i < 2; i++ {
		_, err := store.Get(context.Background(), "b", "k")
		assert.Error(t, err)
	}
	_, err := store.Get(context.Background(), "b", "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	assert.True(t, httpx.IsOpen(err))
	assert.True(t, store.Open())
	assert.Equal(t, 1.0, testutil.ToFloat64(prometheus.ArtifactStoreOpen.WithLabelValues("test-artifacts-open")))
	inner.AssertNumberOfCalls(t, "Get", 2)
}

func TestBreakerStore_PassesThrough(t *testing.T) {
	inner := new(mocks.ArtifactStore)
	inner.On("Get", mock.Anything, "b", "k").Return(io.NopCloser(strings.NewReader("x")), nil)
	inner.On("Put", mock.Anything, "b", "k", mock.Anything).Return(nil)
	store := NewBreakerStore("test-artifacts", inner, time.Minute, 2)

	rc, err := store.Get(context.Background(), "b", "k")
	require.NoError(t, err)
	assert.NotNil(t, rc)
	assert.NoError(t, store.Put(context.Background(), "b", "k", strings.NewReader("y")))
	assert.False(t, store.Open())
}
