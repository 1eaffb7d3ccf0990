// Package hamlet offers "must be" / "won't be" specification helpers for
// tests, so that expectations read as sentences.
package hamlet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type Hamlet struct {
	t      testing.TB
	to_be  bool
	prefix string
}

// Specifications returns positive and negative expectation helpers bound to t.
// Failing expectations stop the test immediately.
func Specifications(t testing.TB) (*Hamlet, *Hamlet) {
	return &Hamlet{t: t, to_be: true, prefix: "must be"}, &Hamlet{t: t, to_be: false, prefix: "won't be"}
}

func (it *Hamlet) Equal(expected, actual interface{}) {
	it.t.Helper()
	if it.to_be {
		require.Equal(it.t, expected, actual, it.prefix)
	} else {
		require.NotEqual(it.t, expected, actual, it.prefix)
	}
}

func (it *Hamlet) True(value bool) {
	it.t.Helper()
	if it.to_be {
		require.True(it.t, value, it.prefix)
	} else {
		require.False(it.t, value, it.prefix)
	}
}

func (it *Hamlet) Nil(value interface{}) {
	it.t.Helper()
	if it.to_be {
		require.Nil(it.t, value, it.prefix)
	} else {
		require.NotNil(it.t, value, it.prefix)
	}
}

func (it *Hamlet) Contains(container, element interface{}) {
	it.t.Helper()
	if it.to_be {
		require.Contains(it.t, container, element, it.prefix)
	} else {
		require.NotContains(it.t, container, element, it.prefix)
	}
}

func (it *Hamlet) Length(value interface{}, size int) {
	it.t.Helper()
	if it.to_be {
		require.Len(it.t, value, size, it.prefix)
	} else {
		require.NotEqual(it.t, size, lengthOf(it.t, value), it.prefix)
	}
}

func (it *Hamlet) ErrorIs(err, target error) {
	it.t.Helper()
	if it.to_be {
		require.ErrorIs(it.t, err, target, it.prefix)
	} else {
		require.NotErrorIs(it.t, err, target, it.prefix)
	}
}

func (it *Hamlet) Panic(todo func()) {
	it.t.Helper()
	if it.to_be {
		require.Panics(it.t, todo, it.prefix)
	} else {
		require.NotPanics(it.t, todo, it.prefix)
	}
}

func lengthOf(t testing.TB, value interface{}) int {
	t.Helper()
	size := -1
	require.NotPanics(t, func() {
		size = reflectLength(value)
	})
	return size
}
