package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunOnceFires(t *testing.T) {
	s := New()
	defer s.Stop()

	fired := make(chan JobData, 1)
	s.RunOnce("kick_1_2", 10*time.Millisecond, JobData{ChatID: 1, UserID: 2}, func(data JobData) {
		fired <- data
	})

	select {
	case data := <-fired:
		assert.Equal(t, int64(1), data.ChatID)
		assert.Equal(t, int64(2), data.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not fire")
	}
}

func TestCancelPreventsFiring(t *testing.T) {
	s := New()
	defer s.Stop()

	var fired atomic.Int32
	s.RunOnce("kick_1_2", 50*time.Millisecond, JobData{}, func(JobData) {
		fired.Add(1)
	})
	s.Cancel("kick_1_2")

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestCancelIsIdempotent(t *testing.T) {
	s := New()
	defer s.Stop()

	require.NotPanics(t, func() {
		s.Cancel("never_scheduled")
		s.RunOnce("j", 5*time.Millisecond, JobData{}, func(JobData) {})
		time.Sleep(50 * time.Millisecond)
		s.Cancel("j") // already fired
		s.Cancel("j") // already canceled
	})
}

func TestRunOnceReplacesSameName(t *testing.T) {
	s := New()
	defer s.Stop()

	var first, second atomic.Int32
	s.RunOnce("j", 30*time.Millisecond, JobData{}, func(JobData) { first.Add(1) })
	s.RunOnce("j", 30*time.Millisecond, JobData{}, func(JobData) { second.Add(1) })

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestRunRepeatingFiresUntilCanceled(t *testing.T) {
	s := New()
	defer s.Stop()

	var fired atomic.Int32
	s.RunRepeating("tick", 20*time.Millisecond, JobData{}, func(JobData) {
		fired.Add(1)
	})

	time.Sleep(110 * time.Millisecond)
	s.Cancel("tick")
	count := fired.Load()
	assert.GreaterOrEqual(t, count, int32(2))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, count, fired.Load(), "canceled job kept firing")
}

func TestPanickingJobIsContained(t *testing.T) {
	s := New()
	defer s.Stop()

	done := make(chan struct{})
	s.RunOnce("boom", 5*time.Millisecond, JobData{}, func(JobData) {
		panic("boom")
	})
	s.RunOnce("after", 60*time.Millisecond, JobData{}, func(JobData) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler died after a panicking job")
	}
}
