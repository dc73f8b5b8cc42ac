package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/techboost-server-go/pkg/logger"
)

type countingJob struct {
	runs  atomic.Int32
	err   error
	panic bool
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Execute(ctx context.Context) error {
	j.runs.Add(1)
	if j.panic {
		panic("boom")
	}
	return j.err
}

func TestScheduler_RunOnStartAndTicks(t *testing.T) {
	s := NewScheduler(logger.Discard())
	job := &countingJob{}
	require.NoError(t, s.AddJob(job, 10*time.Millisecond, true))

	s.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := job.runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, job.runs.Load())
}

func TestScheduler_SurvivesPanicsAndErrors(t *testing.T) {
	s := NewScheduler(logger.Discard())
	job := &countingJob{panic: true}
	require.NoError(t, s.AddJob(job, 5*time.Millisecond, true))

	s.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestScheduler_AddJobValidation(t *testing.T) {
	s := NewScheduler(logger.Discard())
	assert.Error(t, s.AddJob(&countingJob{}, 0, false))

	require.NoError(t, s.AddJob(&countingJob{}, time.Hour, false))
	s.Start()
	defer s.Stop()
	assert.Error(t, s.AddJob(&countingJob{}, time.Hour, false))
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler(logger.Discard())
	job := &countingJob{err: errors.New("db down")}
	require.NoError(t, s.AddJob(job, time.Hour, false))

	assert.EqualError(t, s.RunOnce(context.Background(), "counting"), "db down")
	assert.Equal(t, int32(1), job.runs.Load())
	assert.Error(t, s.RunOnce(context.Background(), "missing"))
}
