package worker

import (
	"sync/atomic"
	"testing"
)

func TestParallel(t *testing.T) {
	var sum atomic.Int64
	fs := make([]func(), 0, 100)
	for i := 1; i <= 100; i++ {
		fs = append(fs, func() { sum.Add(int64(i)) })
	}
	Parallel(fs...)
	if sum.Load() != 5050 {
		t.Fatalf("expected all functions to run before Parallel returns, got sum %d", sum.Load())
	}
}

func TestParallelSurvivesPanic(t *testing.T) {
	var ran atomic.Int32
	Parallel(
		func() { panic("boom") },
		func() { ran.Add(1) },
		func() { ran.Add(1) },
	)
	if ran.Load() != 2 {
		t.Fatalf("expected the other functions to run, got %d", ran.Load())
	}

	// The workers must still be alive after the panic.
	done := make(chan struct{})
	Submit(func() { close(done) })
	<-done
}
