package hotkey

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/codespeak-dev/codespeak/internal/keys"
	"github.com/codespeak-dev/codespeak/internal/logging"
)

// Hook is a global key listener. Register installs the bindings and starts
// listening; callbacks run one at a time on a single worker goroutine.
// Stop must not be called from inside a callback.
type Hook interface {
	Register(bindings map[string]func()) error
	Stop() error
}

const queueSize = 32

// Queue runs bound callbacks serially in press order.
type Queue struct {
	bindings map[string]func()
	ch       chan func()
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
	logger   *log.Logger
}

func NewQueue(bindings map[string]func()) *Queue {
	canon := make(map[string]func(), len(bindings))
	for k, fn := range bindings {
		canon[keys.Canonical(k)] = fn
	}

	q := &Queue{
		bindings: canon,
		ch:       make(chan func(), queueSize),
		done:     make(chan struct{}),
		logger:   logging.For("hotkey"),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// Press schedules the callback bound to key. It reports whether key is bound
// and the queue still accepts work.
func (q *Queue) Press(key string) bool {
	fn, ok := q.bindings[keys.Canonical(key)]
	if !ok {
		return false
	}
	select {
	case <-q.done:
		return false
	default:
	}
	select {
	case q.ch <- fn:
		return true
	case <-q.done:
		return false
	}
}

// Close stops the worker after the callback in progress returns.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.done) })
	q.wg.Wait()
}

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		select {
		case <-q.done:
			return
		case fn := <-q.ch:
			q.call(fn)
		}
	}
}

func (q *Queue) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("hotkey callback panicked", "panic", r)
		}
	}()
	fn()
}
