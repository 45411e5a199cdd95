package events

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []model.PredictionEvent
	err    error
	closed bool
}

func (p *fakePublisher) Publish(_ context.Context, evt model.PredictionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *fakePublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestWorker_DeliversAndDrainsOnShutdown(t *testing.T) {
	pub := &fakePublisher{}
	w := NewWorker(quietLogger(), pub, 100)
	w.StartWorkers(3)

	for i := 0; i < 50; i++ {
		w.Publish(model.PredictionEvent{Run: "r", Label: model.LabelDisaster})
	}
	w.Shutdown()

	assert.Len(t, pub.events, 50)
	assert.True(t, pub.closed)
}

func TestWorker_DropsWhenFull(t *testing.T) {
	pub := &fakePublisher{}
	w := NewWorker(quietLogger(), pub, 2)

	for i := 0; i < 5; i++ {
		w.Publish(model.PredictionEvent{Run: "r"})
	}
	assert.Len(t, w.taskChan, 2)

	w.StartWorkers(1)
	w.Shutdown()
	assert.Len(t, pub.events, 2)
}

func TestWorker_PublishAfterShutdownIsIgnored(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	w := NewWorker(quietLogger(), pub, 1)
	w.StartWorkers(1)
	w.Shutdown()
	w.Shutdown()

	assert.NotPanics(t, func() { w.Publish(model.PredictionEvent{}) })
	assert.Empty(t, pub.events)
}

func TestDecodeKafkaConfig(t *testing.T) {
	conf, err := DecodeKafkaConfig(map[string]interface{}{
		"host":  "localhost",
		"port":  "9092",
		"topic": "predictions",
	})
	require.NoError(t, err)
	assert.Equal(t, KafkaConfig{Host: "localhost", Port: "9092", Topic: "predictions"}, conf)

	_, err = DecodeKafkaConfig(map[string]interface{}{"host": "localhost", "port": "9092"})
	assert.EqualError(t, err, "kafka topic is required")

	_, err = DecodeKafkaConfig(map[string]interface{}{"port": "9092", "topic": "t"})
	assert.EqualError(t, err, "kafka host is required")
}
