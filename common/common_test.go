package common_test

import (
	"testing"
	"time"

	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/hamlet"
)

func TestCanUseStopwatch(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	sut := common.Stopwatch("hello")
	wont_be.Nil(sut)
	limit := common.Duration(50 * time.Millisecond)
	must_be.True(sut.Elapsed() < limit)
}

func TestFingerprintsAreStable(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	first := common.Fingerprint([]byte(`{"packages":[]}`))
	second := common.Fingerprint([]byte(`{"packages":[]}`))
	other := common.Fingerprint([]byte(`{"packages":[1]}`))

	must_be.Equal(first, second)
	must_be.Equal(16, len(first))
	wont_be.Equal(first, other)
}

func TestVerbosityLevels(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)
	defer common.DefineVerbosity(false, false, false)

	common.DefineVerbosity(true, false, false)
	must_be.True(common.Silent())
	wont_be.True(common.DebugFlag())

	common.DefineVerbosity(false, true, false)
	must_be.True(common.DebugFlag())
	wont_be.True(common.TraceFlag())

	common.DefineVerbosity(false, false, true)
	must_be.True(common.DebugFlag())
	must_be.True(common.TraceFlag())
}

func TestSecretsAreHiddenFromOutput(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	common.HideSecret("s3cr3t-value")
	wont_be.True(common.AcceptableOutput("token is s3cr3t-value"))
	must_be.True(common.AcceptableOutput("token is hidden"))
}

func TestQueuedLogsAreFlushed(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	common.HideSecret("flush-secret")
	for index := 0; index < 20; index++ {
		common.Log("line %d", index)
		common.Log("leaks flush-secret")
		must_be.Nil(common.Debug("debug %d", index))
		must_be.Nil(common.Trace("trace %d", index))
	}
	common.Error("flushing", nil)
	done := make(chan bool)
	go func() {
		common.WaitLogs()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("logs were not flushed")
	}
}
