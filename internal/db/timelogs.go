package db

import (
	"context"

	"github.com/mkline/tasknest/pkg/models"
)

// TimeLogStore is the work-time log data accessor.
type TimeLogStore struct {
	*store[models.TimeLog]
}

func NewTimeLogStore(database *DB) *TimeLogStore {
	return &TimeLogStore{newStore(database, mapping[models.TimeLog]{
		table:   "task_time_logs",
		columns: []string{"task_id", "start_time", "end_time", "description"},
		values: func(l *models.TimeLog) []any {
			return []any{l.TaskID, l.StartTime, l.EndTime, l.Description}
		},
		scan:   scanTimeLog,
		record: func(l *models.TimeLog) *models.Record { return &l.Record },
	})}
}

func scanTimeLog(r rowScanner) (*models.TimeLog, error) {
	l := &models.TimeLog{}
	var deleted int
	dest := []any{&l.ID, &l.TaskID, &l.StartTime, &l.EndTime, &l.Description}
	dest = append(dest, recordDest(&l.Record, &deleted)...)
	if err := r.Scan(dest...); err != nil {
		return nil, err
	}
	l.Deleted = deleted == 1
	return l, nil
}

// ActiveForTask returns the open log (end_time unset) for a task, or nil.
func (s *TimeLogStore) ActiveForTask(ctx context.Context, taskID string) (*models.TimeLog, error) {
	return s.findOne(ctx, "task_id = ? AND end_time IS NULL", taskID)
}

func (s *TimeLogStore) ForTask(ctx context.Context, taskID string) ([]*models.TimeLog, error) {
	return s.find(ctx, "task_id = ?", "start_time ASC", taskID)
}

// Update applies the patch. Returns nil, nil when the log is missing or
// soft-deleted.
func (s *TimeLogStore) Update(ctx context.Context, id string, p models.TimeLogPatch) (*models.TimeLog, error) {
	var sets []assign
	if p.EndTime != nil {
		sets = append(sets, set("end_time", *p.EndTime))
	}
	if p.Description != nil {
		sets = append(sets, set("description", *p.Description))
	}
	return s.update(ctx, s.db.DB, id, sets)
}
