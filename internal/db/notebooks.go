package db

import (
	"context"

	"github.com/mkline/tasknest/pkg/models"
)

type NotebookStore struct {
	*store[models.Notebook]
}

func NewNotebookStore(database *DB) *NotebookStore {
	return &NotebookStore{newStore(database, mapping[models.Notebook]{
		table:   "notebooks",
		columns: []string{"name"},
		values: func(n *models.Notebook) []any {
			return []any{n.Name}
		},
		scan:   scanNotebook,
		record: func(n *models.Notebook) *models.Record { return &n.Record },
	})}
}

func scanNotebook(r rowScanner) (*models.Notebook, error) {
	n := &models.Notebook{}
	var deleted int
	dest := []any{&n.ID, &n.Name}
	dest = append(dest, recordDest(&n.Record, &deleted)...)
	if err := r.Scan(dest...); err != nil {
		return nil, err
	}
	n.Deleted = deleted == 1
	return n, nil
}

func (s *NotebookStore) ByName(ctx context.Context, name string) (*models.Notebook, error) {
	return s.findOne(ctx, "name = ?", name)
}
