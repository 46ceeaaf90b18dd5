package exit

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

var GlobalExitHandler = NewExitHandler()

// ExitHandler closes everything registered with it on shutdown. Closers run
// in reverse order of registration, so the api stops before the database
// it reads from.
type ExitHandler struct {
	sync.Mutex
	ClosingFunctions []func() error
	closed           bool
}

func NewExitHandler() *ExitHandler {
	e := new(ExitHandler)

	return e
}

func (e *ExitHandler) AddExit(f func() error) {
	e.Lock()
	defer e.Unlock()
	e.ClosingFunctions = append(e.ClosingFunctions, f)
}

func (e *ExitHandler) AddCancel(cancel context.CancelFunc) {
	e.AddExit(func() error {
		cancel()
		return nil
	})
}

// Close is only run once, later calls do nothing
func (e *ExitHandler) Close() {
	e.Lock()
	defer e.Unlock()
	if e.closed {
		return
	}
	e.closed = true

	for i := len(e.ClosingFunctions) - 1; i >= 0; i-- {
		err := e.ClosingFunctions[i]()
		if err != nil {
			log.WithError(err).Errorf("failed to close")
		}
	}
}

func (e *ExitHandler) CloseWithTimeout(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		// If something is taking too long to close
		return context.DeadlineExceeded
	}
}
