// Package library provides typed operations on the band library (songs,
// song files, setlists, annotations). Every mutation is recorded in the
// change log by the tracker and reaches the other devices on the next sync.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/client/tracker"
	"github.com/iudanet/bandsync/internal/crypto"
	"github.com/iudanet/bandsync/internal/models"
	"github.com/iudanet/bandsync/internal/validation"
	"github.com/iudanet/bandsync/internal/writequeue"
)

//go:generate moq -out service_mock.go . Service

// Service определяет интерфейс для клиентского library сервиса
type Service interface {
	AddSong(ctx context.Context, groupID string, song *models.Song) error
	UpdateSong(ctx context.Context, groupID string, song *models.Song) error
	GetSong(ctx context.Context, id string) (*models.Song, error)
	ListSongs(ctx context.Context, groupID string) ([]*models.Song, error)
	DeleteSong(ctx context.Context, groupID, id string) error

	AddSongFile(ctx context.Context, groupID string, file *models.SongFile, content []byte) error
	GetSongFile(ctx context.Context, id string) (*models.SongFile, []byte, error)

	AddSetlist(ctx context.Context, groupID string, setlist *models.Setlist) error
	GetSetlist(ctx context.Context, id string) (*models.Setlist, error)
	ListSetlists(ctx context.Context, groupID string) ([]*models.Setlist, error)
	AddToSetlist(ctx context.Context, groupID, setlistID, songID string) (*models.SetlistItem, error)
	MoveSetlistItem(ctx context.Context, groupID, setlistID, itemID string, position int) error
	DeleteSetlist(ctx context.Context, groupID, id string) error

	SaveAnnotation(ctx context.Context, groupID string, annotation *models.Annotation) error
	ListAnnotations(ctx context.Context, groupID, songFileID string) ([]*models.Annotation, error)
}

// service handles library operations over the local store
type service struct {
	store   storage.LocalStore
	tracker *tracker.Tracker
	queue   *writequeue.Queue
	logger  *slog.Logger
}

// NewService creates a new library service.
// queue must be the one the tracker and the sync service write through.
func NewService(store storage.LocalStore, tr *tracker.Tracker, queue *writequeue.Queue, logger *slog.Logger) Service {
	return &service{
		store:   store,
		tracker: tr,
		queue:   queue,
		logger:  logger,
	}
}

// change одна запись в пакете изменений
type change struct {
	record      *models.EntityRecord
	changeType  models.ChangeType
	description string
	meta        models.Metadata
}

// track записывает несколько изменений одной транзакцией
func (s *service) track(ctx context.Context, groupID string, changes ...change) error {
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		batch := storage.Batch{GroupID: groupID}
		for _, ch := range changes {
			ch.record.GroupID = groupID
			entry, err := s.tracker.TrackLocked(ctx, ch.record, ch.changeType, ch.description, ch.meta)
			if err != nil {
				return err
			}
			batch.Records = append(batch.Records, ch.record)
			batch.Changes = append(batch.Changes, entry)
		}
		return s.store.ApplyBatch(ctx, batch)
	})
	if err != nil {
		return fmt.Errorf("failed to save changes: %w", err)
	}
	return nil
}

func newRecord(entityType models.EntityType, id, groupID string, payload any) (*models.EntityRecord, error) {
	rec, err := models.NewEntityRecord(entityType, id, "", groupID, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", entityType, err)
	}
	return rec, nil
}

// load возвращает неудаленную запись ожидаемого типа
func (s *service) load(ctx context.Context, id string, entityType models.EntityType) (*models.EntityRecord, error) {
	rec, err := s.store.GetEntity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	if rec.Type != entityType {
		return nil, fmt.Errorf("%w: %s is %s, not %s", ErrWrongType, id, rec.Type, entityType)
	}
	if rec.Deleted {
		return nil, fmt.Errorf("%w: %s %s", ErrDeleted, entityType, id)
	}
	return rec, nil
}

func get[T any](ctx context.Context, s *service, id string, entityType models.EntityType) (*T, error) {
	rec, err := s.load(ctx, id, entityType)
	if err != nil {
		return nil, err
	}
	var v T
	if err := rec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", entityType, err)
	}
	return &v, nil
}

func list[T any](ctx context.Context, s *service, groupID string, entityType models.EntityType) ([]*T, error) {
	records, err := s.store.ListEntities(ctx, groupID, entityType)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	out := make([]*T, 0, len(records))
	for _, rec := range records {
		var v T
		if err := rec.Decode(&v); err != nil {
			// Пропускаем поврежденные записи
			s.logger.Warn("skipping unreadable entity", "entity_id", rec.ID, "error", err)
			continue
		}
		out = append(out, &v)
	}
	return out, nil
}

// AddSong adds a new song to the group repertoire
func (s *service) AddSong(ctx context.Context, groupID string, song *models.Song) error {
	if err := validation.ValidateName("song", song.Title); err != nil {
		return err
	}
	if song.ID == "" {
		song.ID = uuid.New().String()
	}
	song.GroupID = groupID

	rec, err := newRecord(models.EntitySong, song.ID, groupID, song)
	if err != nil {
		return err
	}
	return s.track(ctx, groupID, change{record: rec, changeType: models.ChangeCreate, description: "added song " + song.Title})
}

// UpdateSong replaces the song fields
func (s *service) UpdateSong(ctx context.Context, groupID string, song *models.Song) error {
	if err := validation.ValidateName("song", song.Title); err != nil {
		return err
	}
	prev, err := get[models.Song](ctx, s, song.ID, models.EntitySong)
	if err != nil {
		return err
	}
	song.GroupID = groupID

	rec, err := newRecord(models.EntitySong, song.ID, groupID, song)
	if err != nil {
		return err
	}

	description := "edited song " + song.Title
	if prev.Title != song.Title {
		description = fmt.Sprintf("renamed song %s to %s", prev.Title, song.Title)
	}
	return s.track(ctx, groupID, change{record: rec, changeType: models.ChangeUpdate, description: description})
}

// GetSong retrieves a song by ID
func (s *service) GetSong(ctx context.Context, id string) (*models.Song, error) {
	return get[models.Song](ctx, s, id, models.EntitySong)
}

// ListSongs returns songs of the group
func (s *service) ListSongs(ctx context.Context, groupID string) ([]*models.Song, error) {
	return list[models.Song](ctx, s, groupID, models.EntitySong)
}

// DeleteSong marks the song and its files as deleted (soft delete)
func (s *service) DeleteSong(ctx context.Context, groupID, id string) error {
	rec, err := s.load(ctx, id, models.EntitySong)
	if err != nil {
		return err
	}
	changes := []change{{record: rec, changeType: models.ChangeDelete, description: "deleted song " + rec.Name}}

	files, err := s.store.ListEntities(ctx, groupID, models.EntitySongFile)
	if err != nil {
		return fmt.Errorf("failed to list song files: %w", err)
	}
	for _, f := range files {
		var file models.SongFile
		if err := f.Decode(&file); err != nil || file.SongID != id {
			continue
		}
		changes = append(changes, change{record: f, changeType: models.ChangeDelete, description: "deleted file " + file.FileName})
	}

	return s.track(ctx, groupID, changes...)
}

// AddSongFile stores the file content locally and records the file entity.
// The content is uploaded with the entity snapshot on the next sync.
func (s *service) AddSongFile(ctx context.Context, groupID string, file *models.SongFile, content []byte) error {
	if err := validation.ValidateName("file", file.FileName); err != nil {
		return err
	}
	if _, err := get[models.Song](ctx, s, file.SongID, models.EntitySong); err != nil {
		return err
	}
	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	file.FileChecksum = crypto.ChecksumBytes(content)
	file.Size = int64(len(content))

	rec, err := newRecord(models.EntitySongFile, file.ID, groupID, file)
	if err != nil {
		return err
	}

	err = s.queue.Do(ctx, func(ctx context.Context) error {
		return s.store.PutBlob(ctx, file.FileChecksum, content)
	})
	if err != nil {
		return fmt.Errorf("failed to store file content: %w", err)
	}

	meta := models.Metadata{}.Set(models.MetaFileChecksum, file.FileChecksum)
	return s.track(ctx, groupID, change{record: rec, changeType: models.ChangeCreate, description: "added file " + file.FileName, meta: meta})
}

// GetSongFile returns the file entity and its content.
// Content is nil when it has not been downloaded yet.
func (s *service) GetSongFile(ctx context.Context, id string) (*models.SongFile, []byte, error) {
	file, err := get[models.SongFile](ctx, s, id, models.EntitySongFile)
	if err != nil {
		return nil, nil, err
	}

	has, err := s.store.HasBlob(ctx, file.FileChecksum)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check file content: %w", err)
	}
	if !has {
		return file, nil, nil
	}

	content, err := s.store.GetBlob(ctx, file.FileChecksum)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file content: %w", err)
	}
	return file, content, nil
}

// AddSetlist adds an empty setlist
func (s *service) AddSetlist(ctx context.Context, groupID string, setlist *models.Setlist) error {
	if err := validation.ValidateName("setlist", setlist.Name); err != nil {
		return err
	}
	if setlist.ID == "" {
		setlist.ID = uuid.New().String()
	}
	setlist.GroupID = groupID
	if setlist.Items == nil {
		setlist.Items = []string{}
	}

	rec, err := newRecord(models.EntitySetlist, setlist.ID, groupID, setlist)
	if err != nil {
		return err
	}
	return s.track(ctx, groupID, change{record: rec, changeType: models.ChangeCreate, description: "added setlist " + setlist.Name})
}

// GetSetlist retrieves a setlist by ID
func (s *service) GetSetlist(ctx context.Context, id string) (*models.Setlist, error) {
	return get[models.Setlist](ctx, s, id, models.EntitySetlist)
}

// ListSetlists returns setlists of the group
func (s *service) ListSetlists(ctx context.Context, groupID string) ([]*models.Setlist, error) {
	return list[models.Setlist](ctx, s, groupID, models.EntitySetlist)
}

// AddToSetlist appends a song to the end of a setlist
func (s *service) AddToSetlist(ctx context.Context, groupID, setlistID, songID string) (*models.SetlistItem, error) {
	setlist, err := s.GetSetlist(ctx, setlistID)
	if err != nil {
		return nil, err
	}
	song, err := s.GetSong(ctx, songID)
	if err != nil {
		return nil, err
	}

	item := &models.SetlistItem{
		ID:        uuid.New().String(),
		SetlistID: setlistID,
		SongID:    songID,
		Position:  len(setlist.Items),
	}
	setlist.Items = append(setlist.Items, item.ID)

	itemRec, err := newRecord(models.EntitySetlistItem, item.ID, groupID, item)
	if err != nil {
		return nil, err
	}
	setlistRec, err := newRecord(models.EntitySetlist, setlist.ID, groupID, setlist)
	if err != nil {
		return nil, err
	}

	err = s.track(ctx, groupID,
		change{record: itemRec, changeType: models.ChangeCreate, description: "added " + song.Title + " to " + setlist.Name},
		change{record: setlistRec, changeType: models.ChangeUpdate, description: "added " + song.Title + " to " + setlist.Name},
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// MoveSetlistItem moves an item to position (clamped to the setlist bounds).
// Every item whose position changes is recorded as a MOVE.
func (s *service) MoveSetlistItem(ctx context.Context, groupID, setlistID, itemID string, position int) error {
	setlist, err := s.GetSetlist(ctx, setlistID)
	if err != nil {
		return err
	}

	from := slices.Index(setlist.Items, itemID)
	if from < 0 {
		return fmt.Errorf("%w: item %s is not in setlist %s", storage.ErrEntityNotFound, itemID, setlistID)
	}
	position = max(0, min(position, len(setlist.Items)-1))
	if from == position {
		return nil
	}

	order := slices.Delete(slices.Clone(setlist.Items), from, from+1)
	order = slices.Insert(order, position, itemID)
	setlist.Items = order

	setlistRec, err := newRecord(models.EntitySetlist, setlist.ID, groupID, setlist)
	if err != nil {
		return err
	}
	changes := []change{{record: setlistRec, changeType: models.ChangeMove, description: "reordered " + setlist.Name}}

	for i, id := range order {
		item, err := get[models.SetlistItem](ctx, s, id, models.EntitySetlistItem)
		if err != nil {
			return err
		}
		if item.Position == i {
			continue
		}
		item.Position = i
		rec, err := newRecord(models.EntitySetlistItem, item.ID, groupID, item)
		if err != nil {
			return err
		}
		changes = append(changes, change{record: rec, changeType: models.ChangeMove, description: fmt.Sprintf("moved to position %d", i+1)})
	}

	return s.track(ctx, groupID, changes...)
}

// DeleteSetlist marks the setlist and its items as deleted
func (s *service) DeleteSetlist(ctx context.Context, groupID, id string) error {
	rec, err := s.load(ctx, id, models.EntitySetlist)
	if err != nil {
		return err
	}
	var setlist models.Setlist
	if err := rec.Decode(&setlist); err != nil {
		return fmt.Errorf("failed to unmarshal setlist: %w", err)
	}

	changes := []change{{record: rec, changeType: models.ChangeDelete, description: "deleted setlist " + setlist.Name}}
	for _, itemID := range setlist.Items {
		item, err := s.load(ctx, itemID, models.EntitySetlistItem)
		if err != nil {
			s.logger.Warn("setlist item missing", "setlist_id", id, "item_id", itemID, "error", err)
			continue
		}
		changes = append(changes, change{record: item, changeType: models.ChangeDelete, description: "deleted with setlist " + setlist.Name})
	}

	return s.track(ctx, groupID, changes...)
}

// SaveAnnotation creates or replaces the annotation layer of a page
func (s *service) SaveAnnotation(ctx context.Context, groupID string, annotation *models.Annotation) error {
	if _, err := get[models.SongFile](ctx, s, annotation.SongFileID, models.EntitySongFile); err != nil {
		return err
	}

	changeType := models.ChangeUpdate
	if annotation.ID == "" {
		annotation.ID = uuid.New().String()
		changeType = models.ChangeCreate
	}
	for i := range annotation.Strokes {
		if annotation.Strokes[i].ID == "" {
			annotation.Strokes[i].ID = uuid.New().String()
		}
	}

	rec, err := newRecord(models.EntityAnnotation, annotation.ID, groupID, annotation)
	if err != nil {
		return err
	}
	rec.MemberID = annotation.MemberID

	description := fmt.Sprintf("annotated page %d (%d strokes)", annotation.Page, len(annotation.Strokes))
	return s.track(ctx, groupID, change{record: rec, changeType: changeType, description: description})
}

// ListAnnotations returns annotation layers of a song file.
// Separate layers of other devices are included.
func (s *service) ListAnnotations(ctx context.Context, groupID, songFileID string) ([]*models.Annotation, error) {
	all, err := list[models.Annotation](ctx, s, groupID, models.EntityAnnotation)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(a *models.Annotation) bool {
		return a.SongFileID != songFileID
	}), nil
}
