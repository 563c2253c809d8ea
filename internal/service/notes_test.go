package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/mkline/tasknest/pkg/apperr"
	"github.com/mkline/tasknest/pkg/models"
)

func TestNoteLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var created, updated, deleted atomic.Int32
	env.bus.Subscribe(models.EventNoteCreated, func(ctx context.Context, e models.Event) error {
		created.Add(1)
		return nil
	})
	env.bus.Subscribe(models.EventNoteUpdated, func(ctx context.Context, e models.Event) error {
		updated.Add(1)
		return nil
	})
	env.bus.Subscribe(models.EventNoteDeleted, func(ctx context.Context, e models.Event) error {
		deleted.Add(1)
		return nil
	})

	// 1. Create with defaults
	note, err := env.notes.CreateNote(ctx, NoteForm{Title: "Journal"})
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}
	if note.ContentType != models.ContentTypePlain {
		t.Errorf("Expected content type plain, got %s", note.ContentType)
	}
	if note.Pinned || note.Archived || note.Draft {
		t.Errorf("Expected flags to default to false")
	}

	// 2. Empty title rejected
	_, err = env.notes.CreateNote(ctx, NoteForm{Title: ""})
	if !apperr.IsKind(err, apperr.Validation) {
		t.Errorf("Expected validation error, got %v", err)
	}

	// 3. Update publishes the changed fields
	content := "today was fine"
	got, err := env.notes.UpdateNote(ctx, note.ID, models.NotePatch{Content: &content})
	if err != nil {
		t.Fatalf("Failed to update note: %v", err)
	}
	if got.Content != content {
		t.Errorf("Expected updated content, got %s", got.Content)
	}

	// 4. Pin and archive
	got, err = env.notes.SetPinned(ctx, note.ID, true)
	if err != nil {
		t.Fatalf("Failed to pin note: %v", err)
	}
	if !got.Pinned {
		t.Errorf("Expected note pinned")
	}
	got, err = env.notes.SetArchived(ctx, note.ID, true)
	if err != nil {
		t.Fatalf("Failed to archive note: %v", err)
	}
	if !got.Archived {
		t.Errorf("Expected note archived")
	}

	// 5. Delete hides the note
	if err := env.notes.DeleteNote(ctx, note.ID); err != nil {
		t.Fatalf("Failed to delete note: %v", err)
	}
	fetched, err := env.notes.GetNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("Failed to get note: %v", err)
	}
	if fetched != nil {
		t.Errorf("Expected deleted note to be invisible")
	}

	// 6. Operating on a missing note fails
	if err := env.notes.DeleteNote(ctx, note.ID); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("Expected not-found on repeat delete, got %v", err)
	}
	_, err = env.notes.UpdateNote(ctx, note.ID, models.NotePatch{Content: &content})
	if !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("Expected not-found on update of deleted note, got %v", err)
	}

	if created.Load() != 1 || updated.Load() != 3 || deleted.Load() != 1 {
		t.Errorf("Expected 1/3/1 events, got %d/%d/%d", created.Load(), updated.Load(), deleted.Load())
	}
}

func TestNoteTagging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	note, err := env.notes.CreateNote(ctx, NoteForm{Title: "Recipe"})
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}

	// 1. EnsureTag creates once and reuses after
	tag, err := env.notes.EnsureTag(ctx, "cooking")
	if err != nil {
		t.Fatalf("Failed to ensure tag: %v", err)
	}
	again, err := env.notes.EnsureTag(ctx, "cooking")
	if err != nil {
		t.Fatalf("Failed to ensure tag again: %v", err)
	}
	if tag.ID != again.ID {
		t.Errorf("Expected EnsureTag to reuse the tag")
	}

	// 2. Empty tag name rejected
	if _, err := env.notes.EnsureTag(ctx, ""); !apperr.IsKind(err, apperr.Validation) {
		t.Errorf("Expected validation error for empty tag name, got %v", err)
	}

	// 3. Attach requires an existing note and tag
	if err := env.notes.AddTag(ctx, "no-such-note", tag.ID); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("Expected not-found for missing note, got %v", err)
	}
	if err := env.notes.AddTag(ctx, note.ID, "no-such-tag"); !apperr.IsKind(err, apperr.BusinessRule) {
		t.Errorf("Expected business-rule error for missing tag, got %v", err)
	}

	if err := env.notes.AddTag(ctx, note.ID, tag.ID); err != nil {
		t.Fatalf("Failed to add tag: %v", err)
	}

	tags, err := env.notes.GetTags(ctx, note.ID)
	if err != nil {
		t.Fatalf("Failed to get tags: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "cooking" {
		t.Errorf("Expected one tag cooking, got %d", len(tags))
	}

	// 4. Lookup by tag name
	byName, err := env.notes.SearchByTagName(ctx, "cooking")
	if err != nil {
		t.Fatalf("Failed to search by tag name: %v", err)
	}
	if len(byName) != 1 || byName[0].ID != note.ID {
		t.Errorf("Expected the note by tag name, got %d", len(byName))
	}

	// 5. Detach
	if err := env.notes.RemoveTag(ctx, note.ID, tag.ID); err != nil {
		t.Fatalf("Failed to remove tag: %v", err)
	}
	tags, err = env.notes.GetTags(ctx, note.ID)
	if err != nil {
		t.Fatalf("Failed to get tags: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("Expected no tags, got %d", len(tags))
	}
}

func TestFindByTagsDeduplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	note, err := env.notes.CreateNote(ctx, NoteForm{Title: "Doubly tagged"})
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}
	other, err := env.notes.CreateNote(ctx, NoteForm{Title: "Singly tagged"})
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}

	a, err := env.notes.EnsureTag(ctx, "alpha")
	if err != nil {
		t.Fatalf("Failed to ensure tag: %v", err)
	}
	b, err := env.notes.EnsureTag(ctx, "beta")
	if err != nil {
		t.Fatalf("Failed to ensure tag: %v", err)
	}

	for _, tagID := range []string{a.ID, b.ID} {
		if err := env.notes.AddTag(ctx, note.ID, tagID); err != nil {
			t.Fatalf("Failed to add tag: %v", err)
		}
	}
	if err := env.notes.AddTag(ctx, other.ID, b.ID); err != nil {
		t.Fatalf("Failed to add tag: %v", err)
	}

	// A note under both requested tags appears once
	found, err := env.notes.FindByTags(ctx, []string{a.ID, b.ID})
	if err != nil {
		t.Fatalf("Failed to find by tags: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("Expected 2 distinct notes, got %d", len(found))
	}
}

func TestNoteSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.notes.CreateNote(ctx, NoteForm{Title: "Groceries", Content: "buy apples", Category: "errands"}); err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}
	if _, err := env.notes.CreateNote(ctx, NoteForm{Title: "Ideas", Content: "apple pie variations", Category: "kitchen"}); err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}

	found, err := env.notes.Search(ctx, "apple")
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("Expected 2 matches, got %d", len(found))
	}

	byCategory, err := env.notes.SearchByCategory(ctx, "errands")
	if err != nil {
		t.Fatalf("Failed to search by category: %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].Title != "Groceries" {
		t.Errorf("Expected the groceries note, got %d", len(byCategory))
	}
}
