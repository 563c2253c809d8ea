package models

import "time"

// TimeLog records a span of work on a task. A nil EndTime means the
// timer is still running.
type TimeLog struct {
	Record
	TaskID      string     `json:"task_id"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Description string     `json:"description"`
}

// TimeLogPatch is a partial update; nil fields are left untouched.
type TimeLogPatch struct {
	EndTime     *time.Time
	Description *string
}

// Duration returns the logged span, measuring open logs up to now.
func (l *TimeLog) Duration(now time.Time) time.Duration {
	end := now
	if l.EndTime != nil {
		end = *l.EndTime
	}
	return end.Sub(l.StartTime)
}
