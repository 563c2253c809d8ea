package models

import "time"

type SyncStatus string

const (
	SyncStatusPending  SyncStatus = "pending"
	SyncStatusSynced   SyncStatus = "synced"
	SyncStatusConflict SyncStatus = "conflict"
	SyncStatusFailed   SyncStatus = "sync_failed"
)

// Record carries the bookkeeping fields every stored entity shares.
// SyncStatus, LocalVersion and Deleted are maintained by the store layer
// and must not be set by callers.
type Record struct {
	ID            string      `json:"id"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	SyncStatus    SyncStatus  `json:"sync_status"`
	LocalVersion  int64       `json:"local_version"`
	RemoteVersion *string     `json:"remote_version,omitempty"`
	LastSyncedAt  *time.Time  `json:"last_synced_at,omitempty"`
	Deleted       bool        `json:"is_deleted_locally"`
}
