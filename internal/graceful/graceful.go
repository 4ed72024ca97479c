package graceful

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// HandleSignals blocks until SIGTERM or SIGINT, then runs every stopFunc
// concurrently and waits for them.
func HandleSignals(stopFunc ...func()) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(signals)

	<-signals
	runAll(stopFunc)
}

func runAll(stopFunc []func()) {
	wg := sync.WaitGroup{}
	wg.Add(len(stopFunc))
	for _, f := range stopFunc {
		go func(f func()) {
			defer wg.Done()
			f()
		}(f)
	}
	wg.Wait()
}

// Context returns a context cancelled on the first SIGTERM or SIGINT.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go HandleSignals(cancel)
	return ctx, cancel
}
