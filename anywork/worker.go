package anywork

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/joshyorko/depclean/common"
)

// Work is one item for the shared pool, typically one document to prune.
type Work func()

var (
	pending  *WorkGroup
	queue    chan Work
	panics   chan string
	tallies  chan uint64
	started  uint64
	resizing sync.Mutex

	// WorkerCount caps the pool. Zero means one worker per CPU.
	WorkerCount int
)

func runItem(todo Work, worker uint64) {
	defer pending.done()
	defer func() {
		if problem := recover(); problem != nil {
			panics <- fmt.Sprintf("Worker #%d recovered from panic: %v", worker, problem)
		}
	}()
	todo()
}

func worker(identity uint64) {
	for todo := range queue {
		runItem(todo, identity)
	}
}

// bookkeeper logs recovered panics and hands out how many there were
// since the previous request.
func bookkeeper() {
	failed := uint64(0)
	for {
		select {
		case message := <-panics:
			failed += 1
			common.Log("%s", message)
		case tallies <- failed:
			failed = 0
		}
	}
}

func init() {
	pending = NewGroup()
	queue = make(chan Work, 1000)
	panics = make(chan string)
	tallies = make(chan uint64)
	AutoScale()
	go bookkeeper()
}

// Scale is the number of running workers.
func Scale() uint64 {
	resizing.Lock()
	defer resizing.Unlock()

	return started
}

// AutoScale starts workers up to WorkerCount, or one per CPU when unset.
// Documents are parsed in memory, so there is no point in going wider.
func AutoScale() {
	resizing.Lock()
	defer resizing.Unlock()

	limit := uint64(runtime.NumCPU())
	if WorkerCount > 0 {
		limit = uint64(WorkerCount)
	}
	for ; started < limit; started++ {
		go worker(started)
	}
}

// Backlog queues work for the pool. Nil work is ignored.
func Backlog(todo Work) {
	if todo == nil {
		return
	}
	pending.add()
	queue <- todo
}

// Sync waits for all backlogged work and reports how many items panicked
// since the previous Sync.
func Sync() error {
	pending.Wait()
	if count := <-tallies; count > 0 {
		return fmt.Errorf("%d failures in worker pool, see log above", count)
	}
	return nil
}
