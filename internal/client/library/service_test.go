package library

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/client/storage/sqlite"
	"github.com/iudanet/bandsync/internal/client/tracker"
	"github.com/iudanet/bandsync/internal/crdt"
	"github.com/iudanet/bandsync/internal/crypto"
	"github.com/iudanet/bandsync/internal/models"
	"github.com/iudanet/bandsync/internal/writequeue"
)

type fixture struct {
	store   *sqlite.Storage
	tracker *tracker.Tracker
	svc     Service
	groupID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	queue := writequeue.New()
	t.Cleanup(func() {
		queue.Close()
		_ = store.Close()
	})

	tr := tracker.New(store, queue, crdt.NewHybridClock("dev-a"), models.Device{ID: "dev-a", Name: "Laptop"}, logger)
	return &fixture{
		store:   store,
		tracker: tr,
		svc:     NewService(store, tr, queue, logger),
		groupID: uuid.New().String(),
	}
}

func (f *fixture) log(t *testing.T) []models.ChangeLogEntry {
	t.Helper()
	entries, err := f.tracker.CollectSince(context.Background(), f.groupID, "")
	require.NoError(t, err)
	return entries
}

func TestSong_FullCycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	song := &models.Song{Title: "Blue", Key: "E"}
	require.NoError(t, f.svc.AddSong(ctx, f.groupID, song))
	require.NotEmpty(t, song.ID)

	got, err := f.svc.GetSong(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blue", got.Title)
	assert.Equal(t, f.groupID, got.GroupID)

	song.Title = "Blues"
	require.NoError(t, f.svc.UpdateSong(ctx, f.groupID, song))

	songs, err := f.svc.ListSongs(ctx, f.groupID)
	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, "Blues", songs[0].Title)

	require.NoError(t, f.svc.DeleteSong(ctx, f.groupID, song.ID))
	_, err = f.svc.GetSong(ctx, song.ID)
	assert.ErrorIs(t, err, ErrDeleted)

	entries := f.log(t)
	require.Len(t, entries, 3)
	assert.Equal(t, models.ChangeCreate, entries[0].ChangeType)
	assert.Equal(t, models.ChangeUpdate, entries[1].ChangeType)
	assert.Equal(t, "renamed song Blue to Blues", entries[1].Description)
	assert.Equal(t, "title", entries[1].Metadata.Value(models.MetaFields))
	assert.Equal(t, models.ChangeDelete, entries[2].ChangeType)
	assert.Equal(t, crypto.TombstoneChecksum, entries[2].Checksum)
}

func TestSong_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assert.Error(t, f.svc.AddSong(ctx, f.groupID, &models.Song{Title: "  "}))

	_, err := f.svc.GetSong(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrEntityNotFound)

	setlist := &models.Setlist{Name: "Friday"}
	require.NoError(t, f.svc.AddSetlist(ctx, f.groupID, setlist))
	_, err = f.svc.GetSong(ctx, setlist.ID)
	assert.ErrorIs(t, err, ErrWrongType)

	err = f.svc.UpdateSong(ctx, f.groupID, &models.Song{ID: uuid.New().String(), Title: "Ghost"})
	assert.ErrorIs(t, err, storage.ErrEntityNotFound)
}

func TestSongFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	song := &models.Song{Title: "Blue"}
	require.NoError(t, f.svc.AddSong(ctx, f.groupID, song))

	content := []byte("%PDF-1.4 chart")
	file := &models.SongFile{SongID: song.ID, FileName: "blue.pdf", MimeType: "application/pdf"}
	require.NoError(t, f.svc.AddSongFile(ctx, f.groupID, file, content))
	assert.Equal(t, crypto.ChecksumBytes(content), file.FileChecksum)
	assert.Equal(t, int64(len(content)), file.Size)

	got, data, err := f.svc.GetSongFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "blue.pdf", got.FileName)
	assert.Equal(t, content, data)

	entries := f.log(t)
	assert.Equal(t, file.FileChecksum, entries[len(entries)-1].Metadata.Value(models.MetaFileChecksum))

	// файлы удаляются вместе с песней
	require.NoError(t, f.svc.DeleteSong(ctx, f.groupID, song.ID))
	_, _, err = f.svc.GetSongFile(ctx, file.ID)
	assert.ErrorIs(t, err, ErrDeleted)

	err = f.svc.AddSongFile(ctx, f.groupID, &models.SongFile{SongID: uuid.New().String(), FileName: "x.pdf"}, content)
	assert.ErrorIs(t, err, storage.ErrEntityNotFound)
}

func TestSetlist_Order(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	setlist := &models.Setlist{Name: "Friday", Venue: "Club"}
	require.NoError(t, f.svc.AddSetlist(ctx, f.groupID, setlist))

	var items []*models.SetlistItem
	for _, title := range []string{"Intro", "Blue", "Encore"} {
		song := &models.Song{Title: title}
		require.NoError(t, f.svc.AddSong(ctx, f.groupID, song))
		item, err := f.svc.AddToSetlist(ctx, f.groupID, setlist.ID, song.ID)
		require.NoError(t, err)
		items = append(items, item)
	}

	got, err := f.svc.GetSetlist(ctx, setlist.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{items[0].ID, items[1].ID, items[2].ID}, got.Items)
	assert.Equal(t, 2, items[2].Position)

	before := len(f.log(t))
	require.NoError(t, f.svc.MoveSetlistItem(ctx, f.groupID, setlist.ID, items[2].ID, 0))

	got, err = f.svc.GetSetlist(ctx, setlist.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{items[2].ID, items[0].ID, items[1].ID}, got.Items)

	entries := f.log(t)[before:]
	require.Len(t, entries, 4, "setlist plus three repositioned items")
	for _, e := range entries {
		assert.Equal(t, models.ChangeMove, e.ChangeType)
	}

	// перемещение на то же место ничего не пишет
	before = len(f.log(t))
	require.NoError(t, f.svc.MoveSetlistItem(ctx, f.groupID, setlist.ID, items[2].ID, -5))
	assert.Len(t, f.log(t), before)

	err = f.svc.MoveSetlistItem(ctx, f.groupID, setlist.ID, uuid.New().String(), 1)
	assert.ErrorIs(t, err, storage.ErrEntityNotFound)

	require.NoError(t, f.svc.DeleteSetlist(ctx, f.groupID, setlist.ID))
	lists, err := f.svc.ListSetlists(ctx, f.groupID)
	require.NoError(t, err)
	assert.Empty(t, lists)
	item, err := f.store.GetEntity(ctx, items[0].ID)
	require.NoError(t, err)
	assert.True(t, item.Deleted)
}

func TestAnnotations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	song := &models.Song{Title: "Blue"}
	require.NoError(t, f.svc.AddSong(ctx, f.groupID, song))
	file := &models.SongFile{SongID: song.ID, FileName: "blue.pdf"}
	require.NoError(t, f.svc.AddSongFile(ctx, f.groupID, file, []byte("pdf")))
	other := &models.SongFile{SongID: song.ID, FileName: "blue-bass.pdf"}
	require.NoError(t, f.svc.AddSongFile(ctx, f.groupID, other, []byte("bass pdf")))

	ann := &models.Annotation{
		SongFileID: file.ID,
		MemberID:   "m1",
		Page:       1,
		Strokes:    []models.Stroke{{Tool: "pen", Color: "#ff0000", Width: 2, Points: []models.Point{{X: 1, Y: 2}}}},
	}
	require.NoError(t, f.svc.SaveAnnotation(ctx, f.groupID, ann))
	require.NotEmpty(t, ann.ID)
	require.NotEmpty(t, ann.Strokes[0].ID)

	ann.Strokes = append(ann.Strokes, models.Stroke{Tool: "highlighter", Color: "#ffff00", Width: 8})
	require.NoError(t, f.svc.SaveAnnotation(ctx, f.groupID, ann))

	entries := f.log(t)
	last := entries[len(entries)-1]
	assert.Equal(t, models.ChangeUpdate, last.ChangeType)
	assert.Equal(t, "m1", last.MemberID)

	list, err := f.svc.ListAnnotations(ctx, f.groupID, file.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Strokes, 2)

	list, err = f.svc.ListAnnotations(ctx, f.groupID, other.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
