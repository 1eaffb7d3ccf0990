package progresscore_test

import (
	"sync"
	"testing"

	"github.com/joshyorko/depclean/hamlet"
	"github.com/joshyorko/depclean/progresscore"
)

func TestTrackerStartsPending(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	tracker := progresscore.NewTracker([]string{"a.json", "b.json", "c.json"})
	stats := tracker.Stats()
	must_be.Equal(3, stats.Total)
	must_be.Equal(3, stats.Pending)
	must_be.Equal(0.0, stats.Progress())

	item, ok := tracker.Item(1)
	must_be.True(ok)
	must_be.Equal("b.json", item.Name)
	must_be.Equal(progresscore.Pending, item.Status)

	_, ok = tracker.Item(3)
	must_be.True(!ok)
}

func TestTrackerOnlyMovesForward(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	tracker := progresscore.NewTracker([]string{"a.json", "b.json"})
	wont_be.True(tracker.Done(0))
	must_be.True(tracker.Start(0))
	wont_be.True(tracker.Set(0, progresscore.Pending, ""))
	must_be.True(tracker.Done(0))
	wont_be.True(tracker.Start(0))
	wont_be.True(tracker.Fail(0, "too late"))

	must_be.True(tracker.Fail(1, "unreadable"))
	item, _ := tracker.Item(1)
	must_be.Equal("unreadable", item.Message)
	must_be.Equal("failed", item.Status.String())

	stats := tracker.Stats()
	must_be.Equal(1, stats.Done)
	must_be.Equal(1, stats.Failed)
	must_be.Equal(2, stats.Finished())
	must_be.Equal(1.0, stats.Progress())
	wont_be.True(tracker.Set(5, progresscore.Running, ""))
}

func TestTrackerNotifiesListener(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	names := []string{"a", "b", "c", "d"}
	tracker := progresscore.NewTracker(names)
	var guard sync.Mutex
	finished := 0
	tracker.OnUpdate(func(stats progresscore.Stats) {
		guard.Lock()
		defer guard.Unlock()
		if stats.Finished() > finished {
			finished = stats.Finished()
		}
	})

	var group sync.WaitGroup
	for at := range names {
		group.Add(1)
		go func(at int) {
			defer group.Done()
			tracker.Start(at)
			tracker.Done(at)
		}(at)
	}
	group.Wait()
	must_be.Equal(4, finished)
	must_be.Equal(4, tracker.Stats().Done)
}
