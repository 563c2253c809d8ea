package db

import (
	"context"

	"github.com/mkline/tasknest/pkg/models"
)

type ProjectStore struct {
	*store[models.Project]
}

func NewProjectStore(database *DB) *ProjectStore {
	return &ProjectStore{newStore(database, mapping[models.Project]{
		table:   "projects",
		columns: []string{"name", "is_shared", "sort_order"},
		values: func(p *models.Project) []any {
			return []any{p.Name, boolInt(p.Shared), p.SortOrder}
		},
		scan:   scanProject,
		record: func(p *models.Project) *models.Record { return &p.Record },
	})}
}

func scanProject(r rowScanner) (*models.Project, error) {
	p := &models.Project{}
	var shared, deleted int
	dest := []any{&p.ID, &p.Name, &shared, &p.SortOrder}
	dest = append(dest, recordDest(&p.Record, &deleted)...)
	if err := r.Scan(dest...); err != nil {
		return nil, err
	}
	p.Shared = shared == 1
	p.Deleted = deleted == 1
	return p, nil
}

// Update applies the patch. Returns nil, nil when the project is missing
// or soft-deleted.
func (s *ProjectStore) Update(ctx context.Context, id string, p models.ProjectPatch) (*models.Project, error) {
	var sets []assign
	if p.Name != nil {
		sets = append(sets, set("name", *p.Name))
	}
	if p.Shared != nil {
		sets = append(sets, set("is_shared", boolInt(*p.Shared)))
	}
	if p.SortOrder != nil {
		sets = append(sets, set("sort_order", *p.SortOrder))
	}
	return s.update(ctx, s.db.DB, id, sets)
}

func (s *ProjectStore) ByName(ctx context.Context, name string) (*models.Project, error) {
	return s.findOne(ctx, "name = ?", name)
}
