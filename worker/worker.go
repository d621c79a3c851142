package worker

import (
	"runtime"
	"sync"

	"github.com/getsentry/sentry-go"
)

var workerQueue = make(chan func(), runtime.NumCPU())

func init() {
	for i := 0; i < runtime.NumCPU(); i++ {
		go worker()
	}
}

func worker() {
	for f := range workerQueue {
		run(f)
	}
}

// run calls f, reporting a panic to sentry instead of letting it take down the worker.
func run(f func()) {
	defer sentry.Recover()
	f()
}

// Submit queues f to be run on a worker. To be used by a function that may be CPU intensive.
func Submit(f func()) {
	workerQueue <- f
}

// Parallel runs every function passed on the workers and blocks until all of them have returned.
// A function that panics is reported and counts as returned. Parallel must not be called from a
// function running on a worker.
func Parallel(fs ...func()) {
	switch len(fs) {
	case 0:
		return
	case 1:
		run(fs[0])
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(fs))
	for _, f := range fs {
		Submit(func() {
			defer wg.Done()
			f()
		})
	}
	wg.Wait()
}
