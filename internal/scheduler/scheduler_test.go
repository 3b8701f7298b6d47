package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"medilink-client/internal/config"
	"medilink-client/internal/jobs"
)

type countingSession struct {
	calls chan struct{}
}

func (c *countingSession) RecheckExpiry(ctx context.Context) bool {
	select {
	case c.calls <- struct{}{}:
	default:
	}
	return false
}

type nopInventory struct{}

func (nopInventory) Refresh(ctx context.Context) error { return nil }

func newRunner(sess jobs.SessionChecker, sched config.SchedulerConfig) *jobs.JobRunner {
	cfg := &config.Config{Scheduler: sched}
	return jobs.NewJobRunner(sess, nopInventory{}, cfg)
}

func TestNewScheduler(t *testing.T) {
	t.Run("Empty schedules register nothing", func(t *testing.T) {
		s := NewScheduler(newRunner(&countingSession{}, config.SchedulerConfig{}))
		assert.False(t, s.IsRunning())
	})

	t.Run("Invalid schedule is skipped", func(t *testing.T) {
		s := NewScheduler(newRunner(&countingSession{}, config.SchedulerConfig{
			CheckSessionExpiry: "not a schedule",
			RefreshInventory:   "0 */5 * * * *",
		}))
		assert.Len(t, s.cron.Entries(), 1)
	})
}

func TestScheduler_RunsJobs(t *testing.T) {
	sess := &countingSession{calls: make(chan struct{}, 1)}
	s := NewScheduler(newRunner(sess, config.SchedulerConfig{CheckSessionExpiry: "* * * * * *"}))
	assert.True(t, s.IsRunning())

	s.Start()
	defer s.Stop()

	select {
	case <-sess.calls:
	case <-time.After(3 * time.Second):
		t.Fatal("session check never ran")
	}
}
