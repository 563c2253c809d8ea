package service

import (
	"context"

	"github.com/mkline/tasknest/internal/bus"
	"github.com/mkline/tasknest/pkg/apperr"
	"github.com/mkline/tasknest/pkg/models"
)

// NoteService owns note business rules: creation defaults, tag
// management, search and event emission.
type NoteService struct {
	notes NoteRepository
	tags  TagRepository
	bus   *bus.Bus
}

func NewNoteService(notes NoteRepository, tags TagRepository, b *bus.Bus) *NoteService {
	return &NoteService{notes: notes, tags: tags, bus: b}
}

// NoteForm is the creation input. Content type defaults to plain and
// the boolean flags default to false.
type NoteForm struct {
	Title       string
	Content     string
	ContentType models.ContentType
	Draft       bool
	NotebookID  *string
	Category    string
	Color       string
	Pinned      bool
	Archived    bool
}

func (s *NoteService) CreateNote(ctx context.Context, form NoteForm) (*models.Note, error) {
	if err := validateTitle(form.Title); err != nil {
		return nil, err
	}

	n := &models.Note{
		Title:       form.Title,
		Content:     form.Content,
		ContentType: form.ContentType,
		Draft:       form.Draft,
		NotebookID:  form.NotebookID,
		Category:    form.Category,
		Color:       form.Color,
		Pinned:      form.Pinned,
		Archived:    form.Archived,
	}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, err
	}

	if err := s.bus.Publish(ctx, models.NoteCreatedEvent{Note: n}); err != nil {
		return nil, err
	}
	return n, nil
}

// GetNote returns the note, or nil if it does not exist.
func (s *NoteService) GetNote(ctx context.Context, id string) (*models.Note, error) {
	return s.notes.GetByID(ctx, id)
}

func (s *NoteService) ListNotes(ctx context.Context) ([]*models.Note, error) {
	return s.notes.List(ctx, "is_pinned DESC, updated_at DESC")
}

func (s *NoteService) UpdateNote(ctx context.Context, id string, p models.NotePatch) (*models.Note, error) {
	existing, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.New(apperr.NotFound, "note not found: %s", id)
	}
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return nil, err
		}
	}

	updated, err := s.notes.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.New(apperr.NotFound, "note not found: %s", id)
	}

	if err := s.bus.Publish(ctx, models.NoteUpdatedEvent{NoteID: id, Changed: noteChanges(p)}); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *NoteService) DeleteNote(ctx context.Context, id string) error {
	ok, err := s.notes.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.NotFound, "note not found: %s", id)
	}
	return s.bus.Publish(ctx, models.NoteDeletedEvent{NoteID: id})
}

// Search matches the query against note titles and content.
func (s *NoteService) Search(ctx context.Context, query string) ([]*models.Note, error) {
	return s.notes.Search(ctx, query)
}

func (s *NoteService) SearchByCategory(ctx context.Context, category string) ([]*models.Note, error) {
	return s.notes.ByCategory(ctx, category)
}

func (s *NoteService) SearchByTagName(ctx context.Context, name string) ([]*models.Note, error) {
	return s.notes.ByTagName(ctx, name)
}

// FindByTags unions the per-tag result sets, de-duplicated by id. A
// note under several requested tags is returned once.
func (s *NoteService) FindByTags(ctx context.Context, tagIDs []string) ([]*models.Note, error) {
	seen := make(map[string]bool)
	var notes []*models.Note
	for _, tagID := range tagIDs {
		tagged, err := s.notes.ByTag(ctx, tagID)
		if err != nil {
			return nil, err
		}
		for _, n := range tagged {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			notes = append(notes, n)
		}
	}
	return notes, nil
}

// EnsureTag returns the tag with the given name, creating it if needed.
func (s *NoteService) EnsureTag(ctx context.Context, name string) (*models.Tag, error) {
	if name == "" {
		return nil, apperr.New(apperr.Validation, "tag name is required")
	}
	tag, err := s.tags.ByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if tag != nil {
		return tag, nil
	}

	tag = &models.Tag{Name: name}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *NoteService) AddTag(ctx context.Context, noteID, tagID string) error {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return err
	}
	if note == nil {
		return apperr.New(apperr.NotFound, "note not found: %s", noteID)
	}
	ok, err := s.tags.Exists(ctx, tagID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.BusinessRule, "tag not found: %s", tagID)
	}
	return s.notes.AddTag(ctx, noteID, tagID)
}

func (s *NoteService) RemoveTag(ctx context.Context, noteID, tagID string) error {
	return s.notes.RemoveTag(ctx, noteID, tagID)
}

func (s *NoteService) GetTags(ctx context.Context, noteID string) ([]*models.Tag, error) {
	return s.notes.Tags(ctx, noteID)
}

func (s *NoteService) SetPinned(ctx context.Context, id string, pinned bool) (*models.Note, error) {
	return s.UpdateNote(ctx, id, models.NotePatch{Pinned: &pinned})
}

func (s *NoteService) SetArchived(ctx context.Context, id string, archived bool) (*models.Note, error) {
	return s.UpdateNote(ctx, id, models.NotePatch{Archived: &archived})
}

func noteChanges(p models.NotePatch) map[string]any {
	changed := make(map[string]any)
	if p.Title != nil {
		changed["title"] = *p.Title
	}
	if p.Content != nil {
		changed["content"] = *p.Content
	}
	if p.ContentType != nil {
		changed["content_type"] = *p.ContentType
	}
	if p.Draft != nil {
		changed["is_draft"] = *p.Draft
	}
	if p.NotebookID != nil {
		changed["notebook_id"] = *p.NotebookID
	}
	if p.Category != nil {
		changed["category"] = *p.Category
	}
	if p.Color != nil {
		changed["color"] = *p.Color
	}
	if p.Pinned != nil {
		changed["is_pinned"] = *p.Pinned
	}
	if p.Archived != nil {
		changed["is_archived"] = *p.Archived
	}
	return changed
}
