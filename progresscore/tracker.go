// Package progresscore tracks per-document progress of batch work. States
// only move forward, so the reported progress never goes backwards.
package progresscore

import (
	"sync"
	"time"
)

type Status int

const (
	Pending Status = iota
	Running
	Done
	Failed
)

func (it Status) String() string {
	switch it {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unknown"
}

func (it Status) terminal() bool {
	return it == Done || it == Failed
}

// Item is one tracked document.
type Item struct {
	Name    string
	Status  Status
	Message string
	Started time.Time
	Ended   time.Time
}

// Duration is how long the item took, or has been running.
func (it Item) Duration() time.Duration {
	switch {
	case it.Started.IsZero():
		return 0
	case it.Ended.IsZero():
		return time.Since(it.Started)
	}
	return it.Ended.Sub(it.Started)
}

type Tracker struct {
	sync.RWMutex
	items    []Item
	started  time.Time
	onUpdate func(Stats)
}

func NewTracker(names []string) *Tracker {
	items := make([]Item, len(names))
	for at, name := range names {
		items[at] = Item{Name: name, Status: Pending}
	}
	return &Tracker{
		items:   items,
		started: time.Now(),
	}
}

// OnUpdate registers a listener called after every accepted transition,
// outside the tracker lock.
func (it *Tracker) OnUpdate(listener func(Stats)) {
	it.Lock()
	defer it.Unlock()
	it.onUpdate = listener
}

func allowed(from, to Status) bool {
	switch from {
	case Pending:
		return to == Running || to == Failed
	case Running:
		return to.terminal()
	}
	return false
}

// Set moves an item to a new status and reports whether the move was
// accepted. Moves backwards, or out of a terminal status, are refused.
func (it *Tracker) Set(index int, status Status, message string) bool {
	it.Lock()
	if index < 0 || index >= len(it.items) || !allowed(it.items[index].Status, status) {
		it.Unlock()
		return false
	}
	now := time.Now()
	item := &it.items[index]
	item.Status = status
	item.Message = message
	if status == Running || item.Started.IsZero() {
		item.Started = now
	}
	if status.terminal() {
		item.Ended = now
	}
	listener := it.onUpdate
	stats := it.stats()
	it.Unlock()

	if listener != nil {
		listener(stats)
	}
	return true
}

func (it *Tracker) Start(index int) bool {
	return it.Set(index, Running, "")
}

func (it *Tracker) Done(index int) bool {
	return it.Set(index, Done, "")
}

func (it *Tracker) Fail(index int, reason string) bool {
	return it.Set(index, Failed, reason)
}

// Item returns a copy of one tracked item.
func (it *Tracker) Item(index int) (Item, bool) {
	it.RLock()
	defer it.RUnlock()
	if index < 0 || index >= len(it.items) {
		return Item{}, false
	}
	return it.items[index], true
}

type Stats struct {
	Total   int
	Done    int
	Failed  int
	Running int
	Pending int
	Elapsed time.Duration
	ETA     time.Duration
}

// Finished counts items in a terminal status.
func (it Stats) Finished() int {
	return it.Done + it.Failed
}

func (it Stats) Progress() float64 {
	if it.Total == 0 {
		return 1
	}
	return float64(it.Finished()) / float64(it.Total)
}

func (it *Tracker) Stats() Stats {
	it.RLock()
	defer it.RUnlock()
	return it.stats()
}

func (it *Tracker) stats() Stats {
	result := Stats{
		Total:   len(it.items),
		Elapsed: time.Since(it.started),
	}
	var spent time.Duration
	for _, item := range it.items {
		switch item.Status {
		case Done:
			result.Done++
			spent += item.Duration()
		case Failed:
			result.Failed++
		case Running:
			result.Running++
		default:
			result.Pending++
		}
	}
	if result.Done > 0 && result.Pending+result.Running > 0 {
		result.ETA = spent / time.Duration(result.Done) * time.Duration(result.Pending+result.Running)
	}
	return result
}
