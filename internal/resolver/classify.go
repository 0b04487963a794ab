// Package resolver decides what happens when the local device and a peer
// both changed the same entity since their last sync, and builds the
// records that settle such conflicts. Everything here is pure: the caller
// persists the returned changes.
package resolver

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/iudanet/bandsync/internal/crdt"
	"github.com/iudanet/bandsync/internal/models"
)

var (
	// ErrUnsupportedAction действие неприменимо к этому конфликту
	ErrUnsupportedAction = errors.New("resolution action not supported for this conflict")
	// ErrMissingState для действия нужна версия сущности, которой нет
	ErrMissingState = errors.New("entity state required for resolution is missing")
	// ErrInvalidPayload ручное слияние без корректного JSON объекта
	ErrInvalidPayload = errors.New("manual merge payload must be a JSON object")
)

// Side одна сторона конфликта: последнее изменение сущности и состояние,
// которое оно записало (nil, если состояние недоступно).
type Side struct {
	Record *models.EntityRecord
	Entry  models.ChangeLogEntry
}

func (s Side) deleted() bool {
	return s.Entry.ChangeType == models.ChangeDelete
}

// Options параметры классификации группы
type Options struct {
	ConflictWindow       int64 // ms, 0 = весь проход синхронизации
	AutoMergeAnnotations bool
}

// OptionsFrom берет параметры из настроек манифеста
func OptionsFrom(s models.SyncSettings) Options {
	return Options{
		ConflictWindow:       s.ConflictWindow,
		AutoMergeAnnotations: s.AutoMergeAnnotations,
	}
}

// OutcomeKind итог сравнения двух сторон
type OutcomeKind int

const (
	// OutcomeIdentical обе стороны пришли к одному состоянию
	OutcomeIdentical OutcomeKind = iota
	// OutcomeLastWriterWins изменения разнесены во времени, побеждает более позднее
	OutcomeLastWriterWins
	// OutcomeConflict требуется разрешение конфликта
	OutcomeConflict
)

// Outcome результат Classify
type Outcome struct {
	ConflictType   models.ConflictType
	Kind           OutcomeKind
	CanAutoResolve bool
	RemoteWins     bool // для OutcomeLastWriterWins
}

// structuralFields поля, изменение которых меняет структуру, а не содержимое
var structuralFields = map[models.EntityType][]string{
	models.EntitySetlist:     {"items", "order"},
	models.EntitySetlistItem: {"position", "setlistId"},
	models.EntityGroup:       {"members", "permissions"},
	models.EntityMember:      {"role"},
	models.EntitySongFile:    {"songId"},
}

// Classify compares the last local and remote change of one entity.
// Rules apply in order, the first match wins:
//
//  1. equal checksums: identical, nothing to do
//  2. delete on one side only: DELETE_MODIFY
//  3. broken version progression: VERSION_MISMATCH
//  4. annotations: ANNOTATION_OVERLAP, auto when no stroke was edited differently
//  5. structural change on both sides: STRUCTURE_CHANGE
//  6. timestamps within the conflict window: SIMULTANEOUS_EDIT
//  7. otherwise last writer wins
func Classify(local, remote Side, opts Options) Outcome {
	if local.Entry.Checksum == remote.Entry.Checksum {
		return Outcome{Kind: OutcomeIdentical}
	}

	if local.deleted() != remote.deleted() {
		return conflict(models.ConflictDeleteModify, false)
	}

	if versionMismatch(local.Entry.Metadata, remote.Entry.Metadata) {
		return conflict(models.ConflictVersionMismatch, false)
	}

	if local.Entry.EntityType == models.EntityAnnotation && remote.Entry.EntityType == models.EntityAnnotation {
		auto := annotationsMergeable(local, remote) && opts.AutoMergeAnnotations
		return conflict(models.ConflictAnnotationOverlap, auto)
	}

	if structural(local.Entry) && structural(remote.Entry) {
		return conflict(models.ConflictStructureChange, false)
	}

	if withinWindow(local.Entry.Timestamp, remote.Entry.Timestamp, opts.ConflictWindow) {
		return conflict(models.ConflictSimultaneousEdit, false)
	}

	return Outcome{
		Kind:       OutcomeLastWriterWins,
		RemoteWins: remote.Entry.IsNewerThan(&local.Entry),
	}
}

func conflict(t models.ConflictType, auto bool) Outcome {
	return Outcome{Kind: OutcomeConflict, ConflictType: t, CanAutoResolve: auto}
}

// versionMismatch: версия не больше базовой, или обе стороны заявляют
// одну и ту же версию от разных базовых.
func versionMismatch(local, remote models.Metadata) bool {
	lv, lok := local.Int(models.MetaVersion)
	lb, lbok := local.Int(models.MetaBaseVersion)
	rv, rok := remote.Int(models.MetaVersion)
	rb, rbok := remote.Int(models.MetaBaseVersion)

	if lok && lbok && lv <= lb {
		return true
	}
	if rok && rbok && rv <= rb {
		return true
	}
	return lok && rok && lbok && rbok && lv == rv && lb != rb
}

func structural(e models.ChangeLogEntry) bool {
	if e.ChangeType == models.ChangeMove {
		return true
	}
	fields := structuralFields[e.EntityType]
	for _, f := range e.Metadata.Fields() {
		if slices.Contains(fields, f) {
			return true
		}
	}
	return false
}

func withinWindow(a, b, window int64) bool {
	if window <= 0 {
		return true
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= window
}

func annotationsMergeable(local, remote Side) bool {
	if local.deleted() || remote.deleted() {
		return false
	}
	l, err := decodeAnnotation(local.Record)
	if err != nil {
		return false
	}
	r, err := decodeAnnotation(remote.Record)
	if err != nil {
		return false
	}
	if l.SongFileID != r.SongFileID || l.Page != r.Page {
		return false
	}
	return crdt.CompareStrokes(l.Strokes, r.Strokes).Disjoint()
}

func decodeAnnotation(rec *models.EntityRecord) (*models.Annotation, error) {
	if rec == nil {
		return nil, ErrMissingState
	}
	var a models.Annotation
	if err := json.Unmarshal(rec.Data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
