package db

import (
	"context"
	"strings"
	"testing"

	"github.com/mkline/tasknest/pkg/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Init(context.Background()); err != nil {
		t.Fatalf("Failed to init database: %v", err)
	}
	return db
}

func TestRecordBookkeeping(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	store := NewTagStore(db)

	// 1. Create assigns id, stamps and initial bookkeeping
	tag := &models.Tag{Name: "urgent"}
	if err := store.Create(ctx, tag); err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}

	if len(tag.ID) != 36 || !strings.Contains(tag.ID, "-") {
		t.Errorf("Expected UUID id, got %s", tag.ID)
	}
	if tag.CreatedAt.IsZero() || tag.UpdatedAt.IsZero() {
		t.Errorf("Expected CreatedAt and UpdatedAt to be set")
	}
	if tag.SyncStatus != models.SyncStatusPending {
		t.Errorf("Expected sync status pending, got %s", tag.SyncStatus)
	}
	if tag.LocalVersion != 1 {
		t.Errorf("Expected local version 1, got %d", tag.LocalVersion)
	}

	// 2. Each update bumps local_version by exactly one
	for want := int64(2); want <= 4; want++ {
		updated, err := store.update(ctx, db.DB, tag.ID, []assign{set("name", "urgent")})
		if err != nil {
			t.Fatalf("Failed to update tag: %v", err)
		}
		if updated.LocalVersion != want {
			t.Errorf("Expected local version %d, got %d", want, updated.LocalVersion)
		}
	}

	// 3. UpdateSyncStatus does not bump the version
	remote := "r-42"
	if err := store.UpdateSyncStatus(ctx, tag.ID, models.SyncStatusSynced, &remote); err != nil {
		t.Fatalf("Failed to update sync status: %v", err)
	}

	fetched, err := store.GetByID(ctx, tag.ID)
	if err != nil {
		t.Fatalf("Failed to get tag: %v", err)
	}
	if fetched.LocalVersion != 4 {
		t.Errorf("Expected local version 4 after sync, got %d", fetched.LocalVersion)
	}
	if fetched.SyncStatus != models.SyncStatusSynced {
		t.Errorf("Expected sync status synced, got %s", fetched.SyncStatus)
	}
	if fetched.RemoteVersion == nil || *fetched.RemoteVersion != "r-42" {
		t.Errorf("Expected remote version r-42, got %v", fetched.RemoteVersion)
	}
	if fetched.LastSyncedAt == nil {
		t.Errorf("Expected LastSyncedAt to be set")
	}

	// 4. A nil remote version leaves the stored token unchanged
	if err := store.UpdateSyncStatus(ctx, tag.ID, models.SyncStatusSynced, nil); err != nil {
		t.Fatalf("Failed to update sync status: %v", err)
	}
	fetched, _ = store.GetByID(ctx, tag.ID)
	if fetched.RemoteVersion == nil || *fetched.RemoteVersion != "r-42" {
		t.Errorf("Expected remote version to survive nil update, got %v", fetched.RemoteVersion)
	}
}

func TestSoftDelete(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	store := NewTagStore(db)

	tag := &models.Tag{Name: "stale"}
	if err := store.Create(ctx, tag); err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}

	// 1. Mark synced so the pending set is empty before deletion
	if err := store.UpdateSyncStatus(ctx, tag.ID, models.SyncStatusSynced, nil); err != nil {
		t.Fatalf("Failed to update sync status: %v", err)
	}

	// 2. Soft-delete hides the row from normal reads
	ok, err := store.SoftDelete(ctx, tag.ID)
	if err != nil {
		t.Fatalf("Failed to soft-delete tag: %v", err)
	}
	if !ok {
		t.Fatalf("Expected soft-delete to report success")
	}

	fetched, err := store.GetByID(ctx, tag.ID)
	if err != nil {
		t.Fatalf("Failed to get tag: %v", err)
	}
	if fetched != nil {
		t.Errorf("Expected soft-deleted tag to be invisible, got %+v", fetched)
	}

	list, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("Failed to list tags: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected empty list, got %d tags", len(list))
	}

	// 3. But the sync engine still sees it
	pending, err := store.PendingSync(ctx)
	if err != nil {
		t.Fatalf("Failed to query pending rows: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending row, got %d", len(pending))
	}
	if !pending[0].Deleted {
		t.Errorf("Expected pending row to carry the deleted flag")
	}

	// 4. Deleting again is a no-op
	ok, err = store.SoftDelete(ctx, tag.ID)
	if err != nil {
		t.Fatalf("Failed on repeat soft-delete: %v", err)
	}
	if ok {
		t.Errorf("Expected repeat soft-delete to report no change")
	}

	// 5. Deleting a missing id reports no change
	ok, err = store.SoftDelete(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("Failed on missing-id soft-delete: %v", err)
	}
	if ok {
		t.Errorf("Expected missing-id soft-delete to report no change")
	}
}

func TestUpdateMissingRow(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	store := NewTagStore(db)

	updated, err := store.update(ctx, db.DB, "no-such-id", []assign{set("name", "x")})
	if err != nil {
		t.Fatalf("Failed to run update: %v", err)
	}
	if updated != nil {
		t.Errorf("Expected nil for missing row, got %+v", updated)
	}
}

func TestCreateBatchRollsBack(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	store := NewTaskStore(db)

	// Two tasks sharing an id: the second insert violates the primary
	// key and the whole batch must roll back.
	a := &models.Task{Title: "first"}
	a.ID = "fixed-id"
	b := &models.Task{Title: "second"}
	b.ID = "fixed-id"

	if err := store.CreateBatch(ctx, []*models.Task{a, b}); err == nil {
		t.Fatalf("Expected batch create to fail")
	}

	count, err := store.Count(ctx, "")
	if err != nil {
		t.Fatalf("Failed to count tasks: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 tasks after rollback, got %d", count)
	}
}

func TestUpdateBatchRollsBack(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	store := NewTaskStore(db)

	task := &models.Task{Title: "keep me"}
	if err := store.Create(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	newTitle := "changed"
	ups := []TaskBatchUpdate{
		{ID: task.ID, Patch: models.TaskPatch{Title: &newTitle}},
		{ID: "no-such-id", Patch: models.TaskPatch{Title: &newTitle}},
	}
	if err := store.UpdateBatch(ctx, ups); err == nil {
		t.Fatalf("Expected batch update to fail on missing row")
	}

	fetched, err := store.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if fetched.Title != "keep me" {
		t.Errorf("Expected title unchanged after rollback, got %s", fetched.Title)
	}
	if fetched.LocalVersion != 1 {
		t.Errorf("Expected local version 1 after rollback, got %d", fetched.LocalVersion)
	}
}
