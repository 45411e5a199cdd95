package logger

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// AsyncConsoleHook mirrors formatted entries to a console stream off the
// caller's goroutine. Lines are dropped, and counted, when the buffer is full.
type AsyncConsoleHook struct {
	out     io.Writer
	levels  []logrus.Level
	lines   chan []byte
	done    chan struct{}
	dropped atomic.Uint64
	wg      sync.WaitGroup
	once    sync.Once
}

// NewAsyncConsoleHook mirrors entries at minLevel or more severe to out
// (stdout when nil).
func NewAsyncConsoleHook(out io.Writer, minLevel logrus.Level, bufferSize int) *AsyncConsoleHook {
	if out == nil {
		out = os.Stdout
	}
	levels := make([]logrus.Level, 0, len(logrus.AllLevels))
	for _, lvl := range logrus.AllLevels {
		if lvl <= minLevel {
			levels = append(levels, lvl)
		}
	}
	hook := &AsyncConsoleHook{
		out:    out,
		levels: levels,
		lines:  make(chan []byte, bufferSize),
		done:   make(chan struct{}),
	}
	hook.wg.Add(1)
	go hook.drain()
	return hook
}

func (h *AsyncConsoleHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Bytes()
	if err != nil {
		return err
	}
	select {
	case h.lines <- line:
	default:
		h.dropped.Add(1)
	}
	return nil
}

func (h *AsyncConsoleHook) drain() {
	defer h.wg.Done()
	for {
		select {
		case line := <-h.lines:
			_, _ = h.out.Write(line)
		case <-h.done:
			for len(h.lines) > 0 {
				_, _ = h.out.Write(<-h.lines)
			}
			return
		}
	}
}

// Dropped is the number of lines lost to a full buffer.
func (h *AsyncConsoleHook) Dropped() uint64 {
	return h.dropped.Load()
}

func (h *AsyncConsoleHook) Close() {
	h.once.Do(func() {
		close(h.done)
		h.wg.Wait()
	})
}

func (h *AsyncConsoleHook) Levels() []logrus.Level {
	return h.levels
}
