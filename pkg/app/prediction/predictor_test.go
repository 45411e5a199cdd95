package prediction

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/NeuralTrust/DisasterGate/pkg/domain/model/mocks"
	"github.com/NeuralTrust/DisasterGate/pkg/textnorm"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var testLocator = model.NewLocator("models", "1", "abc123")

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]model.Label
	getErr  error
	setErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]model.Label)}
}

func (c *fakeCache) Get(_ context.Context, run, cleaned string) (model.Label, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return 0, false, c.getErr
	}
	l, ok := c.entries[run+"|"+cleaned]
	return l, ok, nil
}

func (c *fakeCache) Set(_ context.Context, run, cleaned string, label model.Label) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[run+"|"+cleaned] = label
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []model.PredictionEvent
}

func (s *recordingSink) Publish(e model.PredictionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func TestNewPredictor_ConfigurationErrorSkipsLoader(t *testing.T) {
	locators := []model.Locator{
		model.NewLocator("", "1", "r"),
		model.NewLocator("b", "", "r"),
		model.NewLocator("b", "1", "  "),
	}
	for _, loc := range locators {
		loader := new(mocks.Loader)
		p, err := NewPredictor(loc, loader, testLogger())
		require.Error(t, err)
		assert.Nil(t, p)
		assert.True(t, model.IsConfigurationError(err))
		loader.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
	}
}

func TestPredictor_ReturnsFirstLabelOfBatch(t *testing.T) {
	scorer := new(mocks.Scorer)
	scorer.On("Predict", mock.Anything, []string{"hello world "}).
		Return([]model.Label{model.LabelDisaster, model.LabelNonDisaster}, nil)
	loader := new(mocks.Loader)
	loader.On("Load", mock.Anything, testLocator).Return(scorer, nil)

	p, err := NewPredictor(testLocator, loader, testLogger())
	require.NoError(t, err)
	assert.False(t, p.Ready())

	label, err := p.Predict(context.Background(), "Hello, world! #Testing123")
	require.NoError(t, err)
	assert.Equal(t, model.LabelDisaster, label)
	assert.True(t, p.Ready())
	scorer.AssertExpectations(t)
}

func TestPredictor_LoadsOnce(t *testing.T) {
	scorer := new(mocks.Scorer)
	scorer.On("Predict", mock.Anything, mock.Anything).Return([]model.Label{model.LabelNonDisaster}, nil)
	loader := new(mocks.Loader)
	loader.On("Load", mock.Anything, testLocator).Return(scorer, nil).Once()

	p, err := NewPredictor(testLocator, loader, testLogger())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Predict(context.Background(), "calm day at the beach")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	require.NoError(t, p.Load(context.Background()))
	loader.AssertNumberOfCalls(t, "Load", 1)
}

func TestPredictor_LoadFailureIsRetryable(t *testing.T) {
	scorer := new(mocks.Scorer)
	scorer.On("Predict", mock.Anything, mock.Anything).Return([]model.Label{model.LabelDisaster}, nil)
	loader := new(mocks.Loader)
	loader.On("Load", mock.Anything, testLocator).Return(nil, errors.New("connection refused")).Once()
	loader.On("Load", mock.Anything, testLocator).Return(scorer, nil).Once()

	p, err := NewPredictor(testLocator, loader, testLogger())
	require.NoError(t, err)

	err = p.Load(context.Background())
	require.Error(t, err)
	assert.True(t, model.IsArtifactLoadError(err))
	assert.False(t, model.IsPredictionError(err))
	assert.Contains(t, err.Error(), "s3://models/1/abc123/artifacts/models/")
	assert.False(t, p.Ready())

	label, err := p.Predict(context.Background(), "forest fire")
	require.NoError(t, err)
	assert.Equal(t, model.LabelDisaster, label)
	loader.AssertNumberOfCalls(t, "Load", 2)
}

func TestPredictor_TypedLoadErrorIsKept(t *testing.T) {
	cause := model.NewArtifactLoadError("file://x/1/abc123/artifacts/models/", model.ErrArtifactNotFound)
	loader := new(mocks.Loader)
	loader.On("Load", mock.Anything, testLocator).Return(nil, cause)

	p, err := NewPredictor(testLocator, loader, testLogger())
	require.NoError(t, err)
	_, err = p.Predict(context.Background(), "x")
	assert.Same(t, cause, err)
	assert.ErrorIs(t, err, model.ErrArtifactNotFound)
}

func TestPredictor_PredictionErrors(t *testing.T) {
	t.Run("scorer failure", func(t *testing.T) {
		scorer := new(mocks.Scorer)
		scorer.On("Predict", mock.Anything, mock.Anything).Return(nil, errors.New("shape mismatch"))
		loader := new(mocks.Loader)
		loader.On("Load", mock.Anything, testLocator).Return(scorer, nil)

		p, err := NewPredictor(testLocator, loader, testLogger())
		require.NoError(t, err)
		_, err = p.Predict(context.Background(), "x")
		require.Error(t, err)
		assert.True(t, model.IsPredictionError(err))
		assert.False(t, model.IsArtifactLoadError(err))
	})

	t.Run("empty output", func(t *testing.T) {
		scorer := new(mocks.Scorer)
		scorer.On("Predict", mock.Anything, mock.Anything).Return([]model.Label{}, nil)
		loader := new(mocks.Loader)
		loader.On("Load", mock.Anything, testLocator).Return(scorer, nil)

		p, err := NewPredictor(testLocator, loader, testLogger())
		require.NoError(t, err)
		_, err = p.Predict(context.Background(), "x")
		assert.True(t, model.IsPredictionError(err))
		assert.ErrorIs(t, err, model.ErrEmptyPrediction)
	})
}

func TestPredictor_CacheAndEvents(t *testing.T) {
	scorer := new(mocks.Scorer)
	scorer.On("Predict", mock.Anything, []string{"flood in town"}).Return([]model.Label{model.LabelDisaster}, nil).Once()
	loader := new(mocks.Loader)
	loader.On("Load", mock.Anything, testLocator).Return(scorer, nil)
	cache := newFakeCache()
	sink := &recordingSink{}

	p, err := NewPredictor(testLocator, loader, testLogger(), WithCache(cache), WithEventSink(sink))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		label, err := p.Predict(context.Background(), "Flood in town!")
		require.NoError(t, err)
		assert.Equal(t, model.LabelDisaster, label)
	}
	scorer.AssertNumberOfCalls(t, "Predict", 1)

	require.Len(t, sink.events, 2)
	assert.False(t, sink.events[0].CacheHit)
	assert.True(t, sink.events[1].CacheHit)
	assert.Equal(t, "abc123", sink.events[0].Run)
	assert.Equal(t, "Flood in town!", sink.events[0].Raw)
	assert.Equal(t, "flood in town", sink.events[0].Cleaned)
}

func TestPredictor_CacheErrorsDoNotFail(t *testing.T) {
	scorer := new(mocks.Scorer)
	scorer.On("Predict", mock.Anything, mock.Anything).Return([]model.Label{model.LabelNonDisaster}, nil)
	loader := new(mocks.Loader)
	loader.On("Load", mock.Anything, testLocator).Return(scorer, nil)
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")

	p, err := NewPredictor(testLocator, loader, testLogger(), WithCache(cache))
	require.NoError(t, err)
	label, err := p.Predict(context.Background(), "nice weather")
	require.NoError(t, err)
	assert.Equal(t, model.LabelNonDisaster, label)
}

func TestPredictor_WithNormalizer(t *testing.T) {
	n, err := textnorm.New(textnorm.WithEmoticons([]string{"q_q"}))
	require.NoError(t, err)

	scorer := new(mocks.Scorer)
	scorer.On("Predict", mock.Anything, []string{"flood warning "}).
		Return([]model.Label{model.LabelDisaster}, nil)
	loader := new(mocks.Loader)
	loader.On("Load", mock.Anything, testLocator).Return(scorer, nil)

	p, err := NewPredictor(testLocator, loader, testLogger(), WithNormalizer(n))
	require.NoError(t, err)
	label, err := p.Predict(context.Background(), "Flood warning q_q")
	require.NoError(t, err)
	assert.Equal(t, model.LabelDisaster, label)
	scorer.AssertExpectations(t)
}
