package manifest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/bandsync/internal/cloud"
	"github.com/iudanet/bandsync/internal/crypto"
	"github.com/iudanet/bandsync/internal/models"
)

func newTestManager(t *testing.T, transport cloud.Transport, opts ...Option) *Manager {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithRetryBase(time.Millisecond)}, opts...)
	return NewManager(transport, logger, opts...)
}

func testManifest(groupID string) *models.GroupManifest {
	return &models.GroupManifest{
		GroupID:       groupID,
		Name:          "Blue Notes",
		CreatedBy:     "m1",
		AppVersion:    "v1.2.0",
		MinAppVersion: "v1.0.0",
		Members: []models.MemberInfo{
			{MemberID: "m1", Name: "Ann", Role: models.RoleLeader, DeviceIDs: []string{"dev-a"}},
		},
		Permissions:  models.DefaultPermissions(),
		SyncSettings: models.DefaultSyncSettings(),
	}
}

func entry(id string, ts int64) models.ChangeLogEntry {
	return models.ChangeLogEntry{
		ChangeID:   id,
		DeviceID:   "dev-a",
		Timestamp:  ts,
		ChangeType: models.ChangeUpdate,
		EntityType: models.EntitySong,
		EntityID:   "song-1",
	}
}

func TestFetchManifest_Errors(t *testing.T) {
	ctx := context.Background()
	mem := cloud.NewMemory()
	m := newTestManager(t, mem)

	_, err := m.FetchManifest(ctx, "f1")
	assert.ErrorIs(t, err, ErrManifestNotFound)

	_, err = mem.Put(ctx, ManifestPath("f1"), []byte("{not json"), cloud.PutOptions{})
	require.NoError(t, err)
	_, err = m.FetchManifest(ctx, "f1")
	assert.ErrorIs(t, err, ErrManifestCorrupt)

	// разбирается, но не проходит проверку
	_, err = mem.Put(ctx, ManifestPath("f1"), []byte(`{"groupId":"g1","version":0}`), cloud.PutOptions{})
	require.NoError(t, err)
	_, err = m.FetchManifest(ctx, "f1")
	assert.ErrorIs(t, err, ErrManifestCorrupt)

	mem.SetOffline(true)
	_, err = m.FetchManifest(ctx, "f1")
	assert.ErrorIs(t, err, cloud.ErrOffline)
}

func TestCreateManifest(t *testing.T) {
	ctx := context.Background()
	mem := cloud.NewMemory()
	fixed := time.UnixMilli(1_700_000_000_000)
	m := newTestManager(t, mem, WithClock(func() time.Time { return fixed }))

	require.NoError(t, m.CreateManifest(ctx, "f1", testManifest("g1")))

	got, err := m.FetchManifest(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, fixed.UnixMilli(), got.CreatedAt)
	assert.Equal(t, "Blue Notes", got.Name)

	log, err := m.FetchChangeLog(ctx, "f1")
	require.NoError(t, err)
	assert.Empty(t, log.Changes)

	err = m.CreateManifest(ctx, "f1", testManifest("g1"))
	assert.ErrorIs(t, err, ErrManifestExists)

	assert.Error(t, m.CreateManifest(ctx, "f2", &models.GroupManifest{}))
}

func TestUpdateManifest_IncrementsVersion(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, cloud.NewMemory())
	require.NoError(t, m.CreateManifest(ctx, "f1", testManifest("g1")))

	for want := int64(2); want <= 4; want++ {
		got, err := m.UpdateManifest(ctx, "f1", func(gm *models.GroupManifest) error {
			gm.Name = "Renamed"
			gm.Version = 100 // мутатор не управляет версией
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, want, got.Version)
	}

	boom := errors.New("boom")
	_, err := m.UpdateManifest(ctx, "f1", func(gm *models.GroupManifest) error { return boom })
	assert.ErrorIs(t, err, boom)

	_, err = m.UpdateManifest(ctx, "missing", func(gm *models.GroupManifest) error { return nil })
	assert.ErrorIs(t, err, ErrManifestNotFound)
}

func TestUpdateManifest_ConcurrentUpdatersBothSucceed(t *testing.T) {
	ctx := context.Background()
	conflicts := 0
	var mu sync.Mutex
	m := newTestManager(t, cloud.NewMemory(), WithMaxRetries(20), WithOnConflict(func() {
		mu.Lock()
		conflicts++
		mu.Unlock()
	}))
	require.NoError(t, m.CreateManifest(ctx, "f1", testManifest("g1")))

	// оба участника прочитали версию 1 до записи
	var ready sync.WaitGroup
	ready.Add(2)
	var once [2]sync.Once

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = m.UpdateManifest(ctx, "f1", func(gm *models.GroupManifest) error {
				once[i].Do(func() {
					ready.Done()
					ready.Wait()
				})
				gm.AddDevice(models.MemberInfo{MemberID: uuid.New().String(), Role: models.RoleMember}, "dev-x")
				return nil
			})
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	got, err := m.FetchManifest(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Version)
	assert.Len(t, got.Members, 3)
	assert.GreaterOrEqual(t, conflicts, 1)
}

func TestUpdateManifest_GivesUp(t *testing.T) {
	ctx := context.Background()
	mem := cloud.NewMemory()
	m := newTestManager(t, mem, WithMaxRetries(2))
	require.NoError(t, m.CreateManifest(ctx, "f1", testManifest("g1")))

	mem.FailNext("put", cloud.ErrPreconditionFailed, cloud.ErrPreconditionFailed, cloud.ErrPreconditionFailed)
	_, err := m.UpdateManifest(ctx, "f1", func(gm *models.GroupManifest) error { return nil })
	assert.ErrorIs(t, err, ErrManifestConflict)

	got, err := m.FetchManifest(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
}

func TestAppendChanges(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, cloud.NewMemory())

	// журнал создается при первой записи
	log, err := m.AppendChanges(ctx, "f1", []models.ChangeLogEntry{entry("c1", 1), entry("c2", 2)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), log.Version)
	assert.Equal(t, "c2", log.LastChangeID)

	log, err = m.AppendChanges(ctx, "f1", []models.ChangeLogEntry{entry("c2", 2), entry("c3", 3)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), log.Version)
	assert.Len(t, log.Changes, 3)

	// повтор без новых записей не пишет
	log, err = m.AppendChanges(ctx, "f1", []models.ChangeLogEntry{entry("c1", 1)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), log.Version)

	tests := []struct {
		name   string
		cursor string
		want   []string
	}{
		{name: "empty cursor", cursor: "", want: []string{"c1", "c2", "c3"}},
		{name: "unknown cursor", cursor: "zz", want: []string{"c1", "c2", "c3"}},
		{name: "middle", cursor: "c1", want: []string{"c2", "c3"}},
		{name: "last", cursor: "c3", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.FetchChangesSince(ctx, "f1", tt.cursor)
			require.NoError(t, err)
			ids := []string{}
			for _, e := range got {
				ids = append(ids, e.ChangeID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestAppendChanges_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, cloud.NewMemory(), WithMaxRetries(30))
	require.NoError(t, m.CreateManifest(ctx, "f1", testManifest("g1")))

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.AppendChanges(ctx, "f1", []models.ChangeLogEntry{entry(uuid.New().String(), int64(i))})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	log, err := m.FetchChangeLog(ctx, "f1")
	require.NoError(t, err)
	assert.Len(t, log.Changes, 4)
	assert.Equal(t, int64(4), log.Version)
}

func TestChangeLog_Corrupt(t *testing.T) {
	ctx := context.Background()
	mem := cloud.NewMemory()
	m := newTestManager(t, mem)

	_, err := mem.Put(ctx, ChangeLogPath("f1"), []byte("]"), cloud.PutOptions{})
	require.NoError(t, err)

	_, err = m.FetchChangesSince(ctx, "f1", "")
	assert.ErrorIs(t, err, ErrManifestCorrupt)
}

func TestSnapshots(t *testing.T) {
	ctx := context.Background()
	mem := cloud.NewMemory()
	m := newTestManager(t, mem)

	id := uuid.New().String()
	rec, err := models.NewEntityRecord(models.EntitySong, id, "Blue", "g1", models.Song{ID: id, Title: "Blue"})
	require.NoError(t, err)
	rec.Checksum, err = rec.ComputeChecksum()
	require.NoError(t, err)

	require.NoError(t, m.PutSnapshot(ctx, "f1", rec))
	// повторная загрузка идемпотентна
	require.NoError(t, m.PutSnapshot(ctx, "f1", rec))

	got, err := m.GetSnapshot(ctx, "f1", id, rec.Checksum)
	require.NoError(t, err)
	assert.JSONEq(t, string(rec.Data), string(got.Data))

	ok, err := m.HasObject(ctx, ObjectPath("f1", id, rec.Checksum))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = m.GetSnapshot(ctx, "f1", id, "other")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	// подмененное содержимое не проходит проверку
	_, err = mem.Put(ctx, ObjectPath("f1", id, "bad"), []byte(`{"id":"`+id+`","data":{"title":"x"}}`), cloud.PutOptions{})
	require.NoError(t, err)
	_, err = m.GetSnapshot(ctx, "f1", id, "bad")
	assert.ErrorIs(t, err, ErrObjectCorrupt)
}

func TestFiles_Encrypted(t *testing.T) {
	ctx := context.Background()
	mem := cloud.NewMemory()

	key, err := crypto.DeriveGroupKey("secret", "g1")
	require.NoError(t, err)
	cipher, err := crypto.NewBlobCipher(key)
	require.NoError(t, err)
	m := newTestManager(t, mem, WithCipher(cipher))

	content := []byte("%PDF-1.7 sheet music")
	sum := crypto.ChecksumBytes(content)
	require.NoError(t, m.PutFile(ctx, "f1", "file-1", sum, content))

	raw, _, err := mem.Get(ctx, FilePath("f1", "file-1", sum))
	require.NoError(t, err)
	assert.True(t, crypto.IsSealed(raw))

	got, err := m.GetFile(ctx, "f1", "file-1", sum)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	// без ключа зашифрованный blob не читается
	plain := newTestManager(t, mem)
	_, err = plain.GetFile(ctx, "f1", "file-1", sum)
	assert.ErrorIs(t, err, crypto.ErrDecrypt)
}

func TestDevices(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_600_000)
	m := newTestManager(t, cloud.NewMemory(), WithClock(func() time.Time { return now }))

	require.NoError(t, m.PublishDevice(ctx, "f1", models.DeviceInfo{DeviceID: "dev-b", LastSeen: now.UnixMilli() - 1000}))
	require.NoError(t, m.PublishDevice(ctx, "f1", models.DeviceInfo{DeviceID: "dev-a", LastSeen: now.UnixMilli() - 600_000}))

	devices, err := m.ListDevices(ctx, "f1", 5*60*1000)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "dev-a", devices[0].DeviceID)
	assert.False(t, devices[0].IsOnline)
	assert.True(t, devices[1].IsOnline)
}
