package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DonaldPG/pytaaa-web/pkg/config"
	"github.com/DonaldPG/pytaaa-web/pkg/logger"
)

type countingJob struct {
	name string
	runs atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return "0 0 0 1 1 *" }
func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return nil
}

func newTestScheduler() *Scheduler {
	return New(logger.New(&config.Config{LogLevel: "error", LogFormat: "json"}))
}

func TestAddJob_Duplicate(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "refresh"}

	require.NoError(t, s.AddJob(job))
	assert.Error(t, s.AddJob(job))
}

func TestAddJob_BadSchedule(t *testing.T) {
	s := newTestScheduler()
	err := s.AddJob(&badScheduleJob{})
	assert.Error(t, err)
}

type badScheduleJob struct{ countingJob }

func (j *badScheduleJob) Schedule() string { return "not a cron expression" }

func TestRunJob_Immediate(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "refresh"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("refresh"))

	require.Eventually(t, func() bool {
		return job.runs.Load() == 1
	}, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		history, err := s.History("refresh")
		if err != nil {
			return false
		}
		last := history.Last()
		return last != nil && last.Success
	}, time.Second, 10*time.Millisecond)
}

func TestRunJob_Unknown(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.RunJob("nope"))
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Nil(t, h.Last())
	assert.Zero(t, h.SuccessRate())

	h.Add(JobResult{JobName: "refresh", Success: true})
	h.Add(JobResult{JobName: "refresh", Success: false, Error: "boom"})

	require.NotNil(t, h.Last())
	assert.False(t, h.Last().Success)
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-12)

	for i := 0; i < historyLimit; i++ {
		h.Add(JobResult{JobName: "refresh", Success: true})
	}
	assert.Len(t, h.Results, historyLimit)
}
