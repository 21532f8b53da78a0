package window

import "sync/atomic"

// JobManager counts background work pending for one window. Managers
// outlive their window for as long as anyone holds them.
type JobManager struct {
	pending atomic.Int64
}

func (j *JobManager) Add()       { j.pending.Add(1) }
func (j *JobManager) Done()      { j.pending.Add(-1) }
func (j *JobManager) Count() int { return int(j.pending.Load()) }
