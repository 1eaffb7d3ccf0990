package hamlet_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/joshyorko/depclean/hamlet"
)

func TestHamletSpeaksBothWays(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	must_be.Equal(3, 1+2)
	wont_be.Equal(4, 1+2)
	must_be.True(true)
	wont_be.True(false)
	must_be.Nil(nil)
	wont_be.Nil(t)
	must_be.Contains([]string{"a", "b"}, "b")
	wont_be.Contains([]string{"a", "b"}, "c")
	must_be.Length([]int{1, 2}, 2)
	wont_be.Length([]int{1, 2}, 3)

	base := errors.New("base")
	must_be.ErrorIs(fmt.Errorf("wrapped: %w", base), base)
	wont_be.ErrorIs(errors.New("other"), base)
	must_be.Panic(func() { panic("boom") })
	wont_be.Panic(func() {})
}
