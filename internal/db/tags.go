package db

import (
	"context"

	"github.com/mkline/tasknest/pkg/models"
)

type TagStore struct {
	*store[models.Tag]
}

func NewTagStore(database *DB) *TagStore {
	return &TagStore{newStore(database, mapping[models.Tag]{
		table:   "tags",
		columns: []string{"name"},
		values: func(t *models.Tag) []any {
			return []any{t.Name}
		},
		scan:   scanTag,
		record: func(t *models.Tag) *models.Record { return &t.Record },
	})}
}

func scanTag(r rowScanner) (*models.Tag, error) {
	t := &models.Tag{}
	var deleted int
	dest := []any{&t.ID, &t.Name}
	dest = append(dest, recordDest(&t.Record, &deleted)...)
	if err := r.Scan(dest...); err != nil {
		return nil, err
	}
	t.Deleted = deleted == 1
	return t, nil
}

func (s *TagStore) ByName(ctx context.Context, name string) (*models.Tag, error) {
	return s.findOne(ctx, "name = ?", name)
}
