package anywork

import "sync"

// WorkGroup counts outstanding work items. Unlike a bare sync.WaitGroup it
// can be waited on repeatedly between batches.
type WorkGroup struct {
	sync.Mutex
	pending uint64
	idle    *sync.Cond
}

func NewGroup() *WorkGroup {
	result := &WorkGroup{}
	result.idle = sync.NewCond(&result.Mutex)
	return result
}

func (it *WorkGroup) add() {
	it.Lock()
	defer it.Unlock()

	it.pending += 1
}

func (it *WorkGroup) done() {
	it.Lock()
	defer it.Unlock()

	if it.pending > 0 {
		it.pending -= 1
	}
	if it.pending == 0 {
		it.idle.Broadcast()
	}
}

func (it *WorkGroup) Wait() {
	it.Lock()
	defer it.Unlock()

	for it.pending > 0 {
		it.idle.Wait()
	}
}
