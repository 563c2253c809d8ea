package db

import (
	"context"
	"fmt"

	"github.com/mkline/tasknest/pkg/models"
)

// NoteStore is the note data accessor, including the note/tag join.
type NoteStore struct {
	*store[models.Note]
}

func NewNoteStore(database *DB) *NoteStore {
	return &NoteStore{newStore(database, mapping[models.Note]{
		table: "notes",
		columns: []string{
			"title", "content", "content_type", "is_draft", "notebook_id",
			"category", "color", "is_pinned", "is_archived",
		},
		values: func(n *models.Note) []any {
			return []any{
				n.Title, n.Content, n.ContentType, boolInt(n.Draft), n.NotebookID,
				n.Category, n.Color, boolInt(n.Pinned), boolInt(n.Archived),
			}
		},
		scan:   scanNote,
		record: func(n *models.Note) *models.Record { return &n.Record },
	})}
}

func scanNote(r rowScanner) (*models.Note, error) {
	n := &models.Note{}
	var draft, pinned, archived, deleted int
	dest := []any{
		&n.ID, &n.Title, &n.Content, &n.ContentType, &draft, &n.NotebookID,
		&n.Category, &n.Color, &pinned, &archived,
	}
	dest = append(dest, recordDest(&n.Record, &deleted)...)
	if err := r.Scan(dest...); err != nil {
		return nil, err
	}
	n.Draft = draft == 1
	n.Pinned = pinned == 1
	n.Archived = archived == 1
	n.Deleted = deleted == 1
	return n, nil
}

// Create inserts a new note, defaulting the content type when unset.
func (s *NoteStore) Create(ctx context.Context, n *models.Note) error {
	if n.ContentType == "" {
		n.ContentType = models.ContentTypePlain
	}
	return s.create(ctx, s.db.DB, n)
}

// Update applies the patch. Returns nil, nil when the note is missing or
// soft-deleted.
func (s *NoteStore) Update(ctx context.Context, id string, p models.NotePatch) (*models.Note, error) {
	return s.update(ctx, s.db.DB, id, noteSets(p))
}

func noteSets(p models.NotePatch) []assign {
	var sets []assign
	if p.Title != nil {
		sets = append(sets, set("title", *p.Title))
	}
	if p.Content != nil {
		sets = append(sets, set("content", *p.Content))
	}
	if p.ContentType != nil {
		sets = append(sets, set("content_type", *p.ContentType))
	}
	if p.Draft != nil {
		sets = append(sets, set("is_draft", boolInt(*p.Draft)))
	}
	if p.NotebookID != nil {
		sets = append(sets, set("notebook_id", *p.NotebookID))
	}
	if p.Category != nil {
		sets = append(sets, set("category", *p.Category))
	}
	if p.Color != nil {
		sets = append(sets, set("color", *p.Color))
	}
	if p.Pinned != nil {
		sets = append(sets, set("is_pinned", boolInt(*p.Pinned)))
	}
	if p.Archived != nil {
		sets = append(sets, set("is_archived", boolInt(*p.Archived)))
	}
	return sets
}

func (s *NoteStore) ByNotebook(ctx context.Context, notebookID string) ([]*models.Note, error) {
	return s.find(ctx, "notebook_id = ?", "is_pinned DESC, updated_at DESC", notebookID)
}

// Search matches the query against title and content.
func (s *NoteStore) Search(ctx context.Context, query string) ([]*models.Note, error) {
	pattern := "%" + query + "%"
	return s.find(ctx, "(title LIKE ? OR content LIKE ?)", "is_pinned DESC, updated_at DESC", pattern, pattern)
}

func (s *NoteStore) ByCategory(ctx context.Context, category string) ([]*models.Note, error) {
	return s.find(ctx, "category = ?", "is_pinned DESC, updated_at DESC", category)
}

func (s *NoteStore) ByTag(ctx context.Context, tagID string) ([]*models.Note, error) {
	return s.find(ctx, "id IN (SELECT note_id FROM note_tags WHERE tag_id = ?)",
		"is_pinned DESC, updated_at DESC", tagID)
}

func (s *NoteStore) ByTagName(ctx context.Context, name string) ([]*models.Note, error) {
	return s.find(ctx,
		"id IN (SELECT nt.note_id FROM note_tags nt JOIN tags tg ON nt.tag_id = tg.id WHERE tg.name LIKE ?)",
		"is_pinned DESC, updated_at DESC", "%"+name+"%")
}

// AddTag links a tag to a note. Adding an existing link is a no-op.
func (s *NoteStore) AddTag(ctx context.Context, noteID, tagID string) error {
	query := `INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)`
	if _, err := s.db.ExecContext(ctx, query, noteID, tagID); err != nil {
		return fmt.Errorf("failed to tag note: %w", err)
	}
	return nil
}

func (s *NoteStore) RemoveTag(ctx context.Context, noteID, tagID string) error {
	query := `DELETE FROM note_tags WHERE note_id = ? AND tag_id = ?`
	if _, err := s.db.ExecContext(ctx, query, noteID, tagID); err != nil {
		return fmt.Errorf("failed to untag note: %w", err)
	}
	return nil
}

// Tags returns the tags linked to a note.
func (s *NoteStore) Tags(ctx context.Context, noteID string) ([]*models.Tag, error) {
	query := `
		SELECT tg.id, tg.name, ` + prefixColumns("tg", recordColumns) + `
		FROM tags tg
		JOIN note_tags nt ON tg.id = nt.tag_id
		WHERE nt.note_id = ? AND tg.is_deleted_locally = 0
		ORDER BY tg.name ASC
	`
	rows, err := s.db.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query note tags: %w", err)
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return tags, nil
}
