package cli

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/bandsync/internal/client/sync"
	"github.com/iudanet/bandsync/internal/models"
)

func TestSync_AllGroups(t *testing.T) {
	h := newHarness(t)
	h.addGroup(t, "g1", "Friday Band")
	h.addGroup(t, "g2", "Covers")

	h.sync.SyncFunc = func(ctx context.Context, groupID string) (*sync.SyncResult, error) {
		if groupID == "g2" {
			return &sync.SyncResult{Status: models.StatusOffline}, errors.New("network unreachable")
		}
		return &sync.SyncResult{
			Status:    models.StatusConflictsDetected,
			Pulled:    3,
			Pushed:    2,
			Applied:   3,
			Merged:    1,
			Conflicts: []models.SyncConflict{{ConflictID: "c1"}},
			Devices: []models.DeviceInfo{
				{DeviceName: "Laptop", IsOnline: true},
				{DeviceName: "Tablet"},
			},
		}, nil
	}

	err := h.run(t, "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network unreachable")
	assert.Len(t, h.sync.SyncCalls(), 2, "failure of one group does not stop the others")

	out := h.console.String()
	assert.Contains(t, out, "=== Friday Band ===")
	assert.Contains(t, out, "Status:    CONFLICTS_DETECTED")
	assert.Contains(t, out, "Pulled:    3 entries")
	assert.Contains(t, out, "Pushed:    2 entries")
	assert.Contains(t, out, "Merged:    1")
	assert.Contains(t, out, "Conflicts: 1")
	assert.Contains(t, out, "Devices:   Laptop (online), Tablet (offline)")
	assert.Contains(t, out, "=== Covers ===")
	assert.Contains(t, out, "Status:    OFFLINE")
}

func TestSync_SelectedGroup(t *testing.T) {
	h := newHarness(t)
	h.addGroup(t, "g1", "Friday Band")
	h.addGroup(t, "g2", "Covers")
	h.sync.SyncFunc = func(ctx context.Context, groupID string) (*sync.SyncResult, error) {
		return &sync.SyncResult{Status: models.StatusUpToDate}, nil
	}

	require.NoError(t, h.run(t, "sync", "Covers"))
	require.Len(t, h.sync.SyncCalls(), 1)
	assert.Equal(t, "g2", h.sync.SyncCalls()[0].GroupID)

	assert.ErrorIs(t, h.run(t, "sync", "Unknown"), ErrUnknownGroup)
}

func TestSync_NoGroups(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "sync"))
	assert.Contains(t, h.console.String(), "No groups joined yet")
	assert.Empty(t, h.sync.SyncCalls())
}

func TestStatus(t *testing.T) {
	h := newHarness(t)
	h.addGroup(t, "g1", "Friday Band")
	h.addGroup(t, "g2", "Covers")
	require.NoError(t, h.state.SaveConflicts(context.Background(), "g1", []models.SyncConflict{
		{ConflictID: "c1", GroupID: "g1", EntityID: "song-1", ConflictType: models.ConflictSimultaneousEdit},
	}))

	h.sync.StatusFunc = func(groupID string) models.SyncStatus { return models.StatusUpToDate }
	h.sync.PendingCountFunc = func(ctx context.Context, groupID string) (int, error) {
		if groupID == "g1" {
			return 2, nil
		}
		return 0, nil
	}

	require.NoError(t, h.run(t, "status"))
	assert.Empty(t, h.sync.SyncCalls())

	out := h.console.String()
	friday := out[strings.Index(out, "Friday Band"):strings.Index(out, "Covers")]
	assert.Contains(t, friday, "status:    CONFLICTS_DETECTED")
	assert.Contains(t, friday, "pending:   2")
	assert.Contains(t, friday, "conflicts: 1")

	covers := out[strings.Index(out, "Covers"):]
	assert.Contains(t, covers, "status:    UP_TO_DATE")
	assert.Contains(t, covers, "conflicts: 0")
}

func TestStatus_Refresh(t *testing.T) {
	h := newHarness(t)
	h.addGroup(t, "g1", "Friday Band")
	h.sync.SyncFunc = func(ctx context.Context, groupID string) (*sync.SyncResult, error) {
		return &sync.SyncResult{Status: models.StatusAuthenticationRequired}, errors.New("forbidden")
	}
	h.sync.PendingCountFunc = func(ctx context.Context, groupID string) (int, error) { return 1, nil }

	require.NoError(t, h.run(t, "status", "--sync"))
	assert.Len(t, h.sync.SyncCalls(), 1)
	assert.Empty(t, h.sync.StatusCalls())
	assert.Contains(t, h.console.String(), "status:    AUTHENTICATION_REQUIRED")
}

func TestConflicts(t *testing.T) {
	h := newHarness(t)
	h.addGroup(t, "g1", "Friday Band")

	require.NoError(t, h.run(t, "conflicts", "g1"))
	assert.Contains(t, h.console.String(), "No conflicts.")

	ts := time.Date(2026, 3, 1, 20, 0, 0, 0, time.Local).UnixMilli()
	require.NoError(t, h.state.SaveConflicts(context.Background(), "g1", []models.SyncConflict{{
		ConflictID:   "c1",
		GroupID:      "g1",
		EntityType:   models.EntitySong,
		EntityID:     "song-1",
		EntityName:   "Blue",
		ConflictType: models.ConflictSimultaneousEdit,
		LocalVersion: models.ConflictVersion{
			DeviceName: "Laptop", AuthorName: "Ann", Description: "renamed song Blue to Blues", Timestamp: ts,
		},
		RemoteVersion: models.ConflictVersion{
			DeviceName: "Tablet", AuthorName: "Bob", Description: "renamed song Blue to Blue Train", Timestamp: ts,
		},
	}}))

	require.NoError(t, h.run(t, "conflicts", "Friday Band"))
	out := h.console.String()
	assert.Contains(t, out, `c1  SIMULTANEOUS_EDIT  song "Blue"`)
	assert.Contains(t, out, "local:  renamed song Blue to Blues by Ann on Laptop, 2026-03-01 20:00:00")
	assert.Contains(t, out, "remote: renamed song Blue to Blue Train by Bob on Tablet")
	assert.Contains(t, out, "actions: KEEP_LOCAL, ACCEPT_REMOTE, MANUAL_MERGE")
}

func TestActionsFor(t *testing.T) {
	tests := []struct {
		name string
		typ  models.ConflictType
		want []string
	}{
		{name: "annotations", typ: models.ConflictAnnotationOverlap, want: []string{"KEEP_LOCAL", "ACCEPT_REMOTE", "MERGE_ANNOTATIONS", "LAYER_SEPARATE"}},
		{name: "structure", typ: models.ConflictStructureChange, want: []string{"KEEP_LOCAL", "ACCEPT_REMOTE", "MANUAL_MERGE"}},
		{name: "delete", typ: models.ConflictDeleteModify, want: []string{"KEEP_LOCAL", "ACCEPT_REMOTE"}},
		{name: "version", typ: models.ConflictVersionMismatch, want: []string{"KEEP_LOCAL", "ACCEPT_REMOTE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, actionsFor(&models.SyncConflict{ConflictType: tt.typ}))
		})
	}
}

func TestResolve(t *testing.T) {
	h := newHarness(t)
	h.addGroup(t, "g1", "Friday Band")

	payload := `{"id":"song-1","title":"Blue Blues"}`
	path := filepath.Join(t.TempDir(), "merged.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	h.sync.ResolveConflictFunc = func(
		ctx context.Context, groupID, conflictID string, action models.ResolutionAction, manual json.RawMessage,
	) ([]models.ChangeLogEntry, error) {
		return []models.ChangeLogEntry{{ChangeID: "e1"}}, nil
	}

	require.NoError(t, h.run(t, "resolve", "g1", "c1", "manual_merge", "--payload", path))
	calls := h.sync.ResolveConflictCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "g1", calls[0].GroupID)
	assert.Equal(t, "c1", calls[0].ConflictID)
	assert.Equal(t, models.ActionManualMerge, calls[0].Action)
	assert.JSONEq(t, payload, string(calls[0].ManualPayload))
	assert.Contains(t, h.console.String(), "Conflict c1 resolved with MANUAL_MERGE")
	assert.Contains(t, h.console.String(), "1 change(s) will be sent on the next sync")

	assert.ErrorIs(t, h.run(t, "resolve", "g1", "c1", "FLIP_A_COIN"), ErrInvalidAction)
	assert.Len(t, h.sync.ResolveConflictCalls(), 1)
}

func TestWatch_StopsOnCancel(t *testing.T) {
	h := newHarness(t)
	h.addGroup(t, "g1", "Friday Band")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.sync.SyncFunc = func(_ context.Context, groupID string) (*sync.SyncResult, error) {
		cancel()
		return &sync.SyncResult{Status: models.StatusUpToDate}, nil
	}

	require.NoError(t, h.app.Execute(ctx, []string{"watch"}))
	require.Len(t, h.sync.SyncCalls(), 1)
	assert.Equal(t, "g1", h.sync.SyncCalls()[0].GroupID)
	assert.Contains(t, h.console.String(), "Stopped after 1 round(s)")
}
