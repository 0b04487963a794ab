package sync

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	stdsync "sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/client/storage/boltdb"
	"github.com/iudanet/bandsync/internal/client/storage/sqlite"
	"github.com/iudanet/bandsync/internal/client/tracker"
	"github.com/iudanet/bandsync/internal/cloud"
	"github.com/iudanet/bandsync/internal/crdt"
	"github.com/iudanet/bandsync/internal/crypto"
	"github.com/iudanet/bandsync/internal/manifest"
	"github.com/iudanet/bandsync/internal/models"
	"github.com/iudanet/bandsync/internal/resolver"
	"github.com/iudanet/bandsync/internal/sharecode"
	"github.com/iudanet/bandsync/internal/writequeue"
)

const testAppVersion = "1.2.0"

type testDevice struct {
	local     *sqlite.Storage
	state     *boltdb.Storage
	tracker   *tracker.Tracker
	manifests *manifest.Manager
	svc       Service
	device    models.Device
}

type deviceOption func(*Deps, *Config)

func withAppVersion(v string) deviceOption {
	return func(_ *Deps, cfg *Config) { cfg.AppVersion = v }
}

func withPassphrase(passphrase string) deviceOption {
	return func(deps *Deps, _ *Config) {
		deps.Keys = func(groupID string) (*crypto.BlobCipher, error) {
			key, err := crypto.DeriveGroupKey(passphrase, groupID)
			if err != nil {
				return nil, err
			}
			return crypto.NewBlobCipher(key)
		}
	}
}

func newTestDevice(t *testing.T, mem *cloud.Memory, id, name string, opts ...deviceOption) *testDevice {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	local, err := sqlite.New(ctx, filepath.Join(dir, "local.db"))
	require.NoError(t, err)
	state, err := boltdb.New(ctx, filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	queue := writequeue.New()
	t.Cleanup(func() {
		queue.Close()
		_ = local.Close()
		_ = state.Close()
	})

	device := models.Device{ID: id, Name: name}
	tr := tracker.New(local, queue, crdt.NewHybridClock(id), device, logger)

	manifests := manifest.NewManager(mem, logger, manifest.WithRetryBase(time.Millisecond))
	codes, err := sharecode.NewService(mem, []byte("band-secret"), logger)
	require.NoError(t, err)

	deps := Deps{
		Local:     local,
		State:     state,
		Tracker:   tr,
		Queue:     queue,
		Manifests: manifests,
		Codes:     codes,
	}
	cfg := Config{AppVersion: testAppVersion, Parallelism: 2}
	for _, opt := range opts {
		opt(&deps, &cfg)
	}

	return &testDevice{
		local:     local,
		state:     state,
		tracker:   tr,
		manifests: manifests,
		svc:       NewService(deps, cfg, logger),
		device:    device,
	}
}

// band группа из двух устройств с общим облаком
type band struct {
	mem   *cloud.Memory
	a, b  *testDevice
	group *models.JoinedGroup
}

func newBand(t *testing.T, opts ...deviceOption) *band {
	t.Helper()
	ctx := context.Background()

	mem := cloud.NewMemory()
	a := newTestDevice(t, mem, "dev-a", "Laptop", opts...)
	b := newTestDevice(t, mem, "dev-b", "Tablet", opts...)

	group, err := a.svc.CreateGroup(ctx, "The Band", Profile{Name: "Anna", Instrument: "guitar"})
	require.NoError(t, err)
	_, err = a.svc.Sync(ctx, group.GroupID)
	require.NoError(t, err)

	sc, err := a.svc.CreateShareCode(ctx, group.GroupID, time.Hour)
	require.NoError(t, err)
	_, res, err := b.svc.JoinGroup(ctx, sc.DeepLink, Profile{Name: "Boris", Instrument: "drums"})
	require.NoError(t, err)
	require.Equal(t, models.StatusUpToDate, res.Status)

	_, err = a.svc.Sync(ctx, group.GroupID)
	require.NoError(t, err)

	return &band{mem: mem, a: a, b: b, group: group}
}

func (d *testDevice) sync(t *testing.T, groupID string) *SyncResult {
	t.Helper()
	res, err := d.svc.Sync(context.Background(), groupID)
	require.NoError(t, err)
	return res
}

func (d *testDevice) saveSong(t *testing.T, groupID, id, title string, changeType models.ChangeType) {
	t.Helper()
	rec, err := models.NewEntityRecord(models.EntitySong, id, "", groupID, models.Song{ID: id, GroupID: groupID, Title: title})
	require.NoError(t, err)
	_, err = d.tracker.Track(context.Background(), rec, changeType, "song "+title, nil)
	require.NoError(t, err)
}

func (d *testDevice) deleteEntity(t *testing.T, groupID, id string) {
	t.Helper()
	rec, err := d.local.GetEntity(context.Background(), id)
	require.NoError(t, err)
	rec.GroupID = groupID
	_, err = d.tracker.Track(context.Background(), rec, models.ChangeDelete, "deleted", nil)
	require.NoError(t, err)
}

func (d *testDevice) song(t *testing.T, id string) (*models.EntityRecord, models.Song) {
	t.Helper()
	rec, err := d.local.GetEntity(context.Background(), id)
	require.NoError(t, err)
	var song models.Song
	require.NoError(t, rec.Decode(&song))
	return rec, song
}

func (d *testDevice) saveAnnotation(t *testing.T, groupID, id string, strokeIDs ...string) {
	t.Helper()
	strokes := make([]models.Stroke, 0, len(strokeIDs))
	for _, sid := range strokeIDs {
		strokes = append(strokes, models.Stroke{
			ID:     sid,
			Tool:   "pen",
			Color:  "#000000",
			Width:  2,
			Points: []models.Point{{X: 1, Y: 1}, {X: 2, Y: 2}},
		})
	}
	rec, err := models.NewEntityRecord(models.EntityAnnotation, id, "", groupID, models.Annotation{
		ID:         id,
		SongFileID: "file-1",
		MemberID:   "m1",
		Page:       1,
		Strokes:    strokes,
	})
	require.NoError(t, err)
	_, err = d.tracker.Track(context.Background(), rec, models.ChangeUpdate, "annotated", nil)
	require.NoError(t, err)
}

func strokeIDs(t *testing.T, rec *models.EntityRecord) []string {
	t.Helper()
	var a models.Annotation
	require.NoError(t, rec.Decode(&a))
	ids := make([]string, 0, len(a.Strokes))
	for _, s := range a.Strokes {
		ids = append(ids, s.ID)
	}
	return ids
}

func logLen(t *testing.T, b *band) int {
	t.Helper()
	log, err := b.a.manifests.FetchChangeLog(context.Background(), b.group.FolderID)
	require.NoError(t, err)
	return len(log.Changes)
}

func TestCreateAndJoin(t *testing.T) {
	ctx := context.Background()
	b := newBand(t)

	gm, err := b.a.manifests.FetchManifest(ctx, b.group.FolderID)
	require.NoError(t, err)
	require.Len(t, gm.Members, 2)
	assert.Equal(t, int64(2), gm.Version)

	joined, err := b.b.state.GetGroup(ctx, b.group.GroupID)
	require.NoError(t, err)
	assert.Equal(t, b.group.FolderID, joined.FolderID)
	member, ok := gm.MemberByDevice("dev-b")
	require.True(t, ok)
	assert.Equal(t, models.RoleMember, member.Role)
	assert.Equal(t, member.MemberID, joined.MemberID)

	// GROUP и участник A пришли на B, участник B пришел на A
	groupRec, err := b.b.local.GetEntity(ctx, b.group.GroupID)
	require.NoError(t, err)
	assert.Equal(t, "The Band", groupRec.Name)
	memberRec, err := b.a.local.GetEntity(ctx, joined.MemberID)
	require.NoError(t, err)
	assert.Equal(t, "Boris", memberRec.Name)

	assert.Equal(t, models.StatusUpToDate, b.a.svc.Status(b.group.GroupID))
	assert.Equal(t, models.StatusOffline, b.a.svc.Status("unknown-group"))
}

func TestJoinGroup_Twice(t *testing.T) {
	ctx := context.Background()
	b := newBand(t)

	sc, err := b.a.svc.CreateShareCode(ctx, b.group.GroupID, time.Hour)
	require.NoError(t, err)
	_, _, err = b.b.svc.JoinGroup(ctx, sc.Code, Profile{Name: "Boris"})
	require.NoError(t, err)

	gm, err := b.a.manifests.FetchManifest(ctx, b.group.FolderID)
	require.NoError(t, err)
	assert.Len(t, gm.Members, 2, "known device must not add a member")
	assert.Equal(t, int64(2), gm.Version, "known device must not rewrite the manifest")
}

func TestJoinGroup_InvalidCode(t *testing.T) {
	d := newTestDevice(t, cloud.NewMemory(), "dev-c", "Phone")

	_, _, err := d.svc.JoinGroup(context.Background(), "ABCD2345", Profile{Name: "Chris"})
	assert.ErrorIs(t, err, sharecode.ErrShareCodeInvalid)
}

func TestCreateShareCode_PermissionDenied(t *testing.T) {
	b := newBand(t)

	_, err := b.b.svc.CreateShareCode(context.Background(), b.group.GroupID, time.Hour)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSync_Idempotent(t *testing.T) {
	ctx := context.Background()
	b := newBand(t)

	songID := uuid.New().String()
	b.a.saveSong(t, b.group.GroupID, songID, "Blue", models.ChangeCreate)

	pending, err := b.a.svc.PendingCount(ctx, b.group.GroupID)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	res := b.a.sync(t, b.group.GroupID)
	assert.Equal(t, 1, res.Pushed)
	before := logLen(t, b)

	res = b.a.sync(t, b.group.GroupID)
	assert.Equal(t, models.StatusUpToDate, res.Status)
	assert.Zero(t, res.Pushed)
	assert.Zero(t, res.Pulled)
	assert.Equal(t, before, logLen(t, b))

	pending, err = b.a.svc.PendingCount(ctx, b.group.GroupID)
	require.NoError(t, err)
	assert.Zero(t, pending)

	res = b.b.sync(t, b.group.GroupID)
	assert.Equal(t, 1, res.Applied)
	_, song := b.b.song(t, songID)
	assert.Equal(t, "Blue", song.Title)

	res = b.b.sync(t, b.group.GroupID)
	assert.Zero(t, res.Applied)
	assert.Equal(t, before, logLen(t, b))
}

func TestSync_ReplayFromEmptyCursor(t *testing.T) {
	ctx := context.Background()
	b := newBand(t)

	songID := uuid.New().String()
	b.a.saveSong(t, b.group.GroupID, songID, "Blue", models.ChangeCreate)
	b.a.sync(t, b.group.GroupID)
	b.b.sync(t, b.group.GroupID)

	// повторная обработка всего журнала ничего не меняет
	require.NoError(t, b.b.state.SaveCursors(ctx, b.group.GroupID, models.Cursors{}))
	before := logLen(t, b)
	res := b.b.sync(t, b.group.GroupID)
	assert.Zero(t, res.Applied)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, before, logLen(t, b))
}

func TestSync_SimultaneousEdit(t *testing.T) {
	ctx := context.Background()
	b := newBand(t)

	songID := uuid.New().String()
	b.a.saveSong(t, b.group.GroupID, songID, "Untitled", models.ChangeCreate)
	b.a.sync(t, b.group.GroupID)
	b.b.sync(t, b.group.GroupID)

	b.a.saveSong(t, b.group.GroupID, songID, "Blue", models.ChangeUpdate)
	b.b.saveSong(t, b.group.GroupID, songID, "Blues", models.ChangeUpdate)
	localBefore, _ := b.b.song(t, songID)

	b.a.sync(t, b.group.GroupID)
	res := b.b.sync(t, b.group.GroupID)

	assert.Equal(t, models.StatusConflictsDetected, res.Status)
	require.Len(t, res.Conflicts, 1)
	c := res.Conflicts[0]
	assert.Equal(t, models.ConflictSimultaneousEdit, c.ConflictType)
	assert.Equal(t, songID, c.EntityID)
	assert.Equal(t, "dev-b", c.LocalVersion.DeviceID)
	assert.Equal(t, "dev-a", c.RemoteVersion.DeviceID)
	assert.Equal(t, "Anna", c.RemoteVersion.AuthorName)
	assert.False(t, c.CanAutoResolve)

	// локальное хранилище не тронуто
	localAfter, song := b.b.song(t, songID)
	assert.Equal(t, "Blues", song.Title)
	assert.Equal(t, localBefore.Checksum, localAfter.Checksum)
	assert.Equal(t, localBefore.Version, localAfter.Version)

	// конфликт переживает следующий цикл
	res = b.b.sync(t, b.group.GroupID)
	assert.Equal(t, models.StatusConflictsDetected, res.Status)
	assert.Equal(t, models.StatusConflictsDetected, b.b.svc.Status(b.group.GroupID))

	// A отправил свою правку раньше, но конфликт видит и он
	resA := b.a.sync(t, b.group.GroupID)
	assert.Equal(t, models.StatusConflictsDetected, resA.Status)
	assert.Zero(t, resA.Applied)
	require.Len(t, resA.Conflicts, 1)
	assert.Equal(t, models.ConflictSimultaneousEdit, resA.Conflicts[0].ConflictType)
	assert.Equal(t, "dev-a", resA.Conflicts[0].LocalVersion.DeviceID)
	assert.Equal(t, "dev-b", resA.Conflicts[0].RemoteVersion.DeviceID)
	_, song = b.a.song(t, songID)
	assert.Equal(t, "Blue", song.Title)

	entries, err := b.b.svc.ResolveConflict(ctx, b.group.GroupID, c.ConflictID, models.ActionAcceptRemote, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ACCEPT_REMOTE", entries[0].Metadata.Value(models.MetaResolution))

	_, song = b.b.song(t, songID)
	assert.Equal(t, "Blue", song.Title)

	res = b.b.sync(t, b.group.GroupID)
	assert.Equal(t, models.StatusUpToDate, res.Status)
	assert.Empty(t, res.Conflicts)

	// решение B снимает конфликт и у A
	resA = b.a.sync(t, b.group.GroupID)
	assert.Equal(t, models.StatusUpToDate, resA.Status)
	assert.Empty(t, resA.Conflicts)
	_, song = b.a.song(t, songID)
	assert.Equal(t, "Blue", song.Title)
}

func TestSync_PeerEditOnNewerVersionApplies(t *testing.T) {
	b := newBand(t)

	songID := uuid.New().String()
	b.a.saveSong(t, b.group.GroupID, songID, "Untitled", models.ChangeCreate)
	b.a.sync(t, b.group.GroupID)
	b.b.sync(t, b.group.GroupID)

	b.a.saveSong(t, b.group.GroupID, songID, "Blue", models.ChangeUpdate)
	b.a.sync(t, b.group.GroupID)
	b.b.sync(t, b.group.GroupID)

	// B правит уже полученную версию A, это не конкурентная правка
	b.b.saveSong(t, b.group.GroupID, songID, "Blues", models.ChangeUpdate)
	b.b.sync(t, b.group.GroupID)
	res := b.a.sync(t, b.group.GroupID)

	assert.Empty(t, res.Conflicts)
	assert.Equal(t, 1, res.Applied)
	_, song := b.a.song(t, songID)
	assert.Equal(t, "Blues", song.Title)
}

func TestSync_DeleteVsUpdate(t *testing.T) {
	b := newBand(t)

	songID := uuid.New().String()
	b.a.saveSong(t, b.group.GroupID, songID, "Blue", models.ChangeCreate)
	b.a.sync(t, b.group.GroupID)
	b.b.sync(t, b.group.GroupID)

	b.a.deleteEntity(t, b.group.GroupID, songID)
	b.b.saveSong(t, b.group.GroupID, songID, "Blue (live)", models.ChangeUpdate)

	b.a.sync(t, b.group.GroupID)
	res := b.b.sync(t, b.group.GroupID)

	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, models.ConflictDeleteModify, res.Conflicts[0].ConflictType)

	rec, song := b.b.song(t, songID)
	assert.False(t, rec.Deleted)
	assert.Equal(t, "Blue (live)", song.Title)

	// KEEP_LOCAL воскрешает песню у удалившего устройства
	_, err := b.b.svc.ResolveConflict(context.Background(), b.group.GroupID, res.Conflicts[0].ConflictID, models.ActionKeepLocal, nil)
	require.NoError(t, err)
	b.b.sync(t, b.group.GroupID)
	b.a.sync(t, b.group.GroupID)

	rec, song = b.a.song(t, songID)
	assert.False(t, rec.Deleted)
	assert.Equal(t, "Blue (live)", song.Title)
}

func TestSync_RemoteDeleteApplied(t *testing.T) {
	b := newBand(t)

	songID := uuid.New().String()
	b.a.saveSong(t, b.group.GroupID, songID, "Blue", models.ChangeCreate)
	b.a.sync(t, b.group.GroupID)
	b.b.sync(t, b.group.GroupID)

	b.a.deleteEntity(t, b.group.GroupID, songID)
	b.a.sync(t, b.group.GroupID)
	res := b.b.sync(t, b.group.GroupID)

	assert.Equal(t, 1, res.Applied)
	rec, _ := b.b.song(t, songID)
	assert.True(t, rec.Deleted)
	assert.Equal(t, crypto.TombstoneChecksum, rec.Checksum)
}

func TestSync_LastWriterWinsOutsideWindow(t *testing.T) {
	ctx := context.Background()
	b := newBand(t)

	_, err := b.a.manifests.UpdateManifest(ctx, b.group.FolderID, func(m *models.GroupManifest) error {
		m.SyncSettings.ConflictWindow = 1
		return nil
	})
	require.NoError(t, err)

	songID := uuid.New().String()
	b.a.saveSong(t, b.group.GroupID, songID, "Untitled", models.ChangeCreate)
	b.a.sync(t, b.group.GroupID)
	b.b.sync(t, b.group.GroupID)

	b.b.saveSong(t, b.group.GroupID, songID, "Blues", models.ChangeUpdate)
	time.Sleep(20 * time.Millisecond)
	b.a.saveSong(t, b.group.GroupID, songID, "Blue", models.ChangeUpdate)

	b.a.sync(t, b.group.GroupID)
	res := b.b.sync(t, b.group.GroupID)

	assert.Empty(t, res.Conflicts)
	assert.Equal(t, 1, res.Applied)
	_, song := b.b.song(t, songID)
	assert.Equal(t, "Blue", song.Title, "later writer wins")

	// проигравшее изменение B все равно попало в журнал, но A его не применяет
	b.a.sync(t, b.group.GroupID)
	_, song = b.a.song(t, songID)
	assert.Equal(t, "Blue", song.Title)
}

func TestSync_AnnotationAutoMerge(t *testing.T) {
	b := newBand(t)

	annID := uuid.New().String()
	b.a.saveAnnotation(t, b.group.GroupID, annID, "a")
	b.a.sync(t, b.group.GroupID)
	b.b.sync(t, b.group.GroupID)

	b.a.saveAnnotation(t, b.group.GroupID, annID, "a", "b")
	b.b.saveAnnotation(t, b.group.GroupID, annID, "a", "c")

	b.a.sync(t, b.group.GroupID)
	res := b.b.sync(t, b.group.GroupID)

	assert.Equal(t, models.StatusUpToDate, res.Status)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, 1, res.Merged)

	rec, err := b.b.local.GetEntity(context.Background(), annID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, strokeIDs(t, rec))

	b.a.sync(t, b.group.GroupID)
	rec, err = b.a.local.GetEntity(context.Background(), annID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, strokeIDs(t, rec))
}

func TestSync_AnnotationOverlapWithoutAutoMerge(t *testing.T) {
	ctx := context.Background()
	b := newBand(t)

	_, err := b.a.manifests.UpdateManifest(ctx, b.group.FolderID, func(m *models.GroupManifest) error {
		m.SyncSettings.AutoMergeAnnotations = false
		return nil
	})
	require.NoError(t, err)

	annID := uuid.New().String()
	b.a.saveAnnotation(t, b.group.GroupID, annID, "a")
	b.a.sync(t, b.group.GroupID)
	b.b.sync(t, b.group.GroupID)

	b.a.saveAnnotation(t, b.group.GroupID, annID, "a", "b")
	b.b.saveAnnotation(t, b.group.GroupID, annID, "a", "c")
	b.a.sync(t, b.group.GroupID)
	res := b.b.sync(t, b.group.GroupID)

	require.Len(t, res.Conflicts, 1)
	c := res.Conflicts[0]
	assert.Equal(t, models.ConflictAnnotationOverlap, c.ConflictType)

	entries, err := b.b.svc.ResolveConflict(ctx, b.group.GroupID, c.ConflictID, models.ActionLayerSeparate, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	own, err := b.b.local.GetEntity(ctx, annID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, strokeIDs(t, own))

	layer, err := b.b.local.GetEntity(ctx, resolver.LayerID(annID, "dev-a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, strokeIDs(t, layer))
}

func TestResolveConflict_ManualMerge(t *testing.T) {
	ctx := context.Background()
	b := newBand(t)

	songID := uuid.New().String()
	b.a.saveSong(t, b.group.GroupID, songID, "Untitled", models.ChangeCreate)
	b.a.sync(t, b.group.GroupID)
	b.b.sync(t, b.group.GroupID)

	b.a.saveSong(t, b.group.GroupID, songID, "Blue", models.ChangeUpdate)
	b.b.saveSong(t, b.group.GroupID, songID, "Blues", models.ChangeUpdate)
	b.a.sync(t, b.group.GroupID)
	res := b.b.sync(t, b.group.GroupID)
	require.Len(t, res.Conflicts, 1)

	_, err := b.b.svc.ResolveConflict(ctx, b.group.GroupID, res.Conflicts[0].ConflictID, models.ActionManualMerge, json.RawMessage(`"nope"`))
	assert.ErrorIs(t, err, resolver.ErrInvalidPayload)

	payload, err := json.Marshal(models.Song{ID: songID, GroupID: b.group.GroupID, Title: "Blue Blues"})
	require.NoError(t, err)
	_, err = b.b.svc.ResolveConflict(ctx, b.group.GroupID, res.Conflicts[0].ConflictID, models.ActionManualMerge, payload)
	require.NoError(t, err)

	rec, song := b.b.song(t, songID)
	assert.Equal(t, "Blue Blues", song.Title)
	assert.Equal(t, "Blue Blues", rec.Name)

	_, err = b.b.svc.ResolveConflict(ctx, b.group.GroupID, res.Conflicts[0].ConflictID, models.ActionKeepLocal, nil)
	assert.ErrorIs(t, err, storage.ErrConflictNotFound)
}

func TestSync_Offline(t *testing.T) {
	ctx := context.Background()
	b := newBand(t)

	songID := uuid.New().String()
	b.a.saveSong(t, b.group.GroupID, songID, "Blue", models.ChangeCreate)

	b.mem.SetOffline(true)
	res, err := b.a.svc.Sync(ctx, b.group.GroupID)
	require.Error(t, err)
	assert.ErrorIs(t, err, cloud.ErrOffline)
	require.NotNil(t, res)
	assert.Equal(t, models.StatusOffline, res.Status)
	assert.Equal(t, models.StatusOffline, b.a.svc.Status(b.group.GroupID))

	// курсоры не сдвинулись
	pending, err := b.a.svc.PendingCount(ctx, b.group.GroupID)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	b.mem.SetOffline(false)
	res = b.a.sync(t, b.group.GroupID)
	assert.Equal(t, 1, res.Pushed)
}

func TestSync_FailedUploadKeepsCursors(t *testing.T) {
	ctx := context.Background()
	b := newBand(t)

	songID := uuid.New().String()
	b.a.saveSong(t, b.group.GroupID, songID, "Blue", models.ChangeCreate)
	before := logLen(t, b)

	b.mem.FailNext("put", cloud.ErrAuthenticationRequired)
	res, err := b.a.svc.Sync(ctx, b.group.GroupID)
	require.Error(t, err)
	assert.Equal(t, models.StatusAuthenticationRequired, res.Status)
	assert.Equal(t, before, logLen(t, b))

	pending, err := b.a.svc.PendingCount(ctx, b.group.GroupID)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestSync_IncompatibleVersion(t *testing.T) {
	ctx := context.Background()
	b := newBand(t)

	_, err := b.a.manifests.UpdateManifest(ctx, b.group.FolderID, func(m *models.GroupManifest) error {
		m.MinAppVersion = "2.0.0"
		return nil
	})
	require.NoError(t, err)

	res, err := b.b.svc.Sync(ctx, b.group.GroupID)
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
	assert.Equal(t, models.StatusError, res.Status)
}

func TestSync_ManifestRegression(t *testing.T) {
	ctx := context.Background()
	b := newBand(t)

	cursors, err := b.a.state.GetCursors(ctx, b.group.GroupID)
	require.NoError(t, err)
	actual := cursors.ManifestVersion
	cursors.ManifestVersion = actual + 5
	require.NoError(t, b.a.state.SaveCursors(ctx, b.group.GroupID, cursors))

	res := b.a.sync(t, b.group.GroupID)
	require.Len(t, res.Conflicts, 1)
	c := res.Conflicts[0]
	assert.Equal(t, models.EntityGroup, c.EntityType)
	assert.Equal(t, models.ConflictVersionMismatch, c.ConflictType)

	_, err = b.a.svc.ResolveConflict(ctx, b.group.GroupID, c.ConflictID, models.ActionMergeAnnotations, nil)
	assert.ErrorIs(t, err, resolver.ErrUnsupportedAction)

	_, err = b.a.svc.ResolveConflict(ctx, b.group.GroupID, c.ConflictID, models.ActionAcceptRemote, nil)
	require.NoError(t, err)

	cursors, err = b.a.state.GetCursors(ctx, b.group.GroupID)
	require.NoError(t, err)
	assert.Equal(t, actual, cursors.ManifestVersion)

	res = b.a.sync(t, b.group.GroupID)
	assert.Equal(t, models.StatusUpToDate, res.Status)
}

func TestSync_EncryptedGroup(t *testing.T) {
	ctx := context.Background()
	b := newBand(t, withPassphrase("open sesame"))

	_, err := b.a.manifests.UpdateManifest(ctx, b.group.FolderID, func(m *models.GroupManifest) error {
		m.SyncSettings.EncryptBlobs = true
		return nil
	})
	require.NoError(t, err)

	songID := uuid.New().String()
	b.a.saveSong(t, b.group.GroupID, songID, "Blue", models.ChangeCreate)
	b.a.sync(t, b.group.GroupID)

	rec, _ := b.a.song(t, songID)
	raw, _, err := b.mem.Get(ctx, manifest.ObjectPath(b.group.FolderID, songID, rec.Checksum))
	require.NoError(t, err)
	assert.True(t, crypto.IsSealed(raw))

	b.b.sync(t, b.group.GroupID)
	_, song := b.b.song(t, songID)
	assert.Equal(t, "Blue", song.Title)
}

func TestSync_EncryptedGroupWithoutKey(t *testing.T) {
	ctx := context.Background()
	b := newBand(t)

	_, err := b.a.manifests.UpdateManifest(ctx, b.group.FolderID, func(m *models.GroupManifest) error {
		m.SyncSettings.EncryptBlobs = true
		return nil
	})
	require.NoError(t, err)

	res, err := b.a.svc.Sync(ctx, b.group.GroupID)
	assert.ErrorIs(t, err, ErrEncryptionKeyRequired)
	assert.Equal(t, models.StatusError, res.Status)
}

func TestSync_SongFileContent(t *testing.T) {
	ctx := context.Background()
	b := newBand(t)

	content := []byte("%PDF-1.4 lead sheet")
	sum := crypto.ChecksumBytes(content)
	require.NoError(t, b.a.local.PutBlob(ctx, sum, content))

	fileID := uuid.New().String()
	rec, err := models.NewEntityRecord(models.EntitySongFile, fileID, "", b.group.GroupID, models.SongFile{
		ID:           fileID,
		SongID:       uuid.New().String(),
		FileName:     "blue.pdf",
		MimeType:     "application/pdf",
		FileChecksum: sum,
		Size:         int64(len(content)),
	})
	require.NoError(t, err)
	_, err = b.a.tracker.Track(ctx, rec, models.ChangeCreate, "added file", nil)
	require.NoError(t, err)

	b.a.sync(t, b.group.GroupID)
	b.b.sync(t, b.group.GroupID)

	got, err := b.b.local.GetBlob(ctx, sum)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestSync_MissingSnapshotSkipped(t *testing.T) {
	ctx := context.Background()
	b := newBand(t)

	songID := uuid.New().String()
	b.a.saveSong(t, b.group.GroupID, songID, "Blue", models.ChangeCreate)
	b.a.sync(t, b.group.GroupID)

	rec, _ := b.a.song(t, songID)
	require.NoError(t, b.mem.Delete(ctx, manifest.ObjectPath(b.group.FolderID, songID, rec.Checksum)))

	res := b.b.sync(t, b.group.GroupID)
	assert.Equal(t, 1, res.Skipped)
	_, err := b.b.local.GetEntity(ctx, songID)
	assert.ErrorIs(t, err, storage.ErrEntityNotFound)
}

func TestSync_ConcurrentCallsCoalesce(t *testing.T) {
	b := newBand(t)

	for range 5 {
		b.a.saveSong(t, b.group.GroupID, uuid.New().String(), "Song", models.ChangeCreate)
	}
	before := logLen(t, b)

	var wg stdsync.WaitGroup
	errs := make(chan error, 4)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.a.svc.Sync(context.Background(), b.group.GroupID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, before+5, logLen(t, b))
}

func TestSync_UnknownGroup(t *testing.T) {
	d := newTestDevice(t, cloud.NewMemory(), "dev-c", "Phone")

	res, err := d.svc.Sync(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrGroupNotFound)
	assert.Equal(t, models.StatusError, res.Status)
}

func TestSync_Devices(t *testing.T) {
	b := newBand(t)

	res := b.b.sync(t, b.group.GroupID)
	require.Len(t, res.Devices, 2)
	assert.Equal(t, "dev-a", res.Devices[0].DeviceID)
	assert.Equal(t, "dev-b", res.Devices[1].DeviceID)
	assert.True(t, res.Devices[1].IsOnline)
	assert.Equal(t, testAppVersion, res.Devices[1].AppVersion)
}

func TestCheckCompatibility(t *testing.T) {
	tests := []struct {
		name      string
		installed string
		manifest  models.GroupManifest
		wantErr   bool
	}{
		{name: "same version", installed: "1.2.0", manifest: models.GroupManifest{AppVersion: "1.2.0"}},
		{name: "newer minor writer", installed: "1.2.0", manifest: models.GroupManifest{AppVersion: "v1.9.0"}},
		{name: "newer major writer", installed: "1.2.0", manifest: models.GroupManifest{AppVersion: "2.0.0"}, wantErr: true},
		{name: "below minimum", installed: "1.2.0", manifest: models.GroupManifest{MinAppVersion: "1.3.0"}, wantErr: true},
		{name: "at minimum", installed: "v1.3.0", manifest: models.GroupManifest{MinAppVersion: "1.3.0"}},
		{name: "dev build", installed: "dev", manifest: models.GroupManifest{MinAppVersion: "9.0.0"}},
		{name: "garbage in manifest", installed: "1.2.0", manifest: models.GroupManifest{AppVersion: "latest"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCompatibility(tt.installed, &tt.manifest)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIncompatibleVersion)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want models.SyncStatus
	}{
		{err: nil, want: models.StatusUpToDate},
		{err: cloud.ErrOffline, want: models.StatusOffline},
		{err: cloud.ErrAuthenticationRequired, want: models.StatusAuthenticationRequired},
		{err: manifest.ErrManifestCorrupt, want: models.StatusError},
		{err: ErrIncompatibleVersion, want: models.StatusError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFromError(tt.err))
	}
}
