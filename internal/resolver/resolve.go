package resolver

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/bandsync/internal/crdt"
	"github.com/iudanet/bandsync/internal/models"
)

// Change запись, которую нужно сохранить и зарегистрировать в журнале
// от имени разрешающего устройства.
type Change struct {
	Record      *models.EntityRecord
	ChangeType  models.ChangeType
	Description string
	Metadata    models.Metadata
}

// Resolution итог разрешения конфликта
type Resolution struct {
	Action  models.ResolutionAction
	Changes []Change
}

// AuthorFunc возвращает имя автора изменения (участника группы)
type AuthorFunc func(e *models.ChangeLogEntry) string

// NewConflict builds the conflict record reported to the user
func NewConflict(groupID string, local, remote Side, outcome Outcome, author AuthorFunc) models.SyncConflict {
	name := local.Entry.EntityName
	if name == "" {
		name = remote.Entry.EntityName
	}

	var localAuthor, remoteAuthor string
	if author != nil {
		localAuthor = author(&local.Entry)
		remoteAuthor = author(&remote.Entry)
	}

	return models.SyncConflict{
		ConflictID:     uuid.New().String(),
		GroupID:        groupID,
		EntityType:     local.Entry.EntityType,
		EntityID:       local.Entry.EntityID,
		EntityName:     name,
		ConflictType:   outcome.ConflictType,
		CanAutoResolve: outcome.CanAutoResolve,
		LocalVersion:   models.VersionOf(&local.Entry, localAuthor),
		RemoteVersion:  models.VersionOf(&remote.Entry, remoteAuthor),
		LocalChange:    local.Entry.Clone(),
		RemoteChange:   remote.Entry.Clone(),
	}
}

// AutoResolve settles a conflict marked CanAutoResolve without user input.
// Only annotation overlaps are auto-resolvable: strokes are united.
func AutoResolve(c models.SyncConflict, local, remote Side) (Resolution, error) {
	if !c.CanAutoResolve || c.ConflictType != models.ConflictAnnotationOverlap {
		return Resolution{}, fmt.Errorf("%w: %s cannot be resolved automatically", ErrUnsupportedAction, c.ConflictType)
	}
	return Apply(c, models.ActionMergeAnnotations, local, remote, nil)
}

// Apply builds the changes that settle c with action.
// Every action produces at least one new change so peers converge on the outcome.
func Apply(
	c models.SyncConflict,
	action models.ResolutionAction,
	local, remote Side,
	manualPayload json.RawMessage,
) (Resolution, error) {
	meta := models.Metadata{}.
		Set(models.MetaResolution, string(action)).
		Set(models.MetaMergedFrom, local.Entry.ChangeID+","+remote.Entry.ChangeID)

	switch action {
	case models.ActionKeepLocal:
		ch, err := reassert(local, meta, "kept local version")
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Action: action, Changes: []Change{ch}}, nil

	case models.ActionAcceptRemote:
		ch, err := reassert(remote, meta, "accepted remote version")
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Action: action, Changes: []Change{ch}}, nil

	case models.ActionMergeAnnotations:
		ch, err := mergeAnnotations(c, local, remote, meta)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Action: action, Changes: []Change{ch}}, nil

	case models.ActionLayerSeparate:
		changes, err := separateLayers(c, local, remote, meta)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Action: action, Changes: changes}, nil

	case models.ActionManualMerge:
		ch, err := manualMerge(local, remote, meta, manualPayload)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Action: action, Changes: []Change{ch}}, nil
	}

	return Resolution{}, fmt.Errorf("%w: unknown action %q", ErrUnsupportedAction, action)
}

// reassert записывает состояние выбранной стороны новым изменением
func reassert(side Side, meta models.Metadata, description string) (Change, error) {
	if side.deleted() {
		rec := tombstone(side)
		return Change{Record: rec, ChangeType: models.ChangeDelete, Description: description, Metadata: meta}, nil
	}
	if side.Record == nil {
		return Change{}, fmt.Errorf("%w: %s %s", ErrMissingState, side.Entry.EntityType, side.Entry.EntityID)
	}

	rec := side.Record.Clone()
	rec.Deleted = false
	return Change{Record: rec, ChangeType: models.ChangeUpdate, Description: description, Metadata: meta}, nil
}

func tombstone(side Side) *models.EntityRecord {
	if side.Record != nil {
		rec := side.Record.Clone()
		rec.Deleted = true
		return rec
	}
	return &models.EntityRecord{
		ID:   side.Entry.EntityID,
		Type: side.Entry.EntityType,
		Name: side.Entry.EntityName,
	}
}

func annotationSides(c models.SyncConflict, local, remote Side) (*models.Annotation, *models.Annotation, error) {
	if c.EntityType != models.EntityAnnotation {
		return nil, nil, fmt.Errorf("%w: %s is not an annotation", ErrUnsupportedAction, c.EntityType)
	}
	if local.deleted() || remote.deleted() {
		return nil, nil, fmt.Errorf("%w: annotation was deleted on one side", ErrUnsupportedAction)
	}

	l, err := decodeAnnotation(local.Record)
	if err != nil {
		return nil, nil, fmt.Errorf("local annotation: %w", err)
	}
	r, err := decodeAnnotation(remote.Record)
	if err != nil {
		return nil, nil, fmt.Errorf("remote annotation: %w", err)
	}
	return l, r, nil
}

func mergeAnnotations(c models.SyncConflict, local, remote Side, meta models.Metadata) (Change, error) {
	l, r, err := annotationSides(c, local, remote)
	if err != nil {
		return Change{}, err
	}

	// скалярные поля по LWW, штрихи объединяются
	remoteWins := remote.Entry.IsNewerThan(&local.Entry)
	merged := *l
	base := local.Record
	if remoteWins {
		merged = *r
		base = remote.Record
	}
	merged.ID = l.ID
	merged.Strokes = crdt.UnionStrokes(l.Strokes, r.Strokes, remoteWins)

	data, err := json.Marshal(merged)
	if err != nil {
		return Change{}, fmt.Errorf("failed to marshal merged annotation: %w", err)
	}

	rec := base.Clone()
	rec.ID = local.Record.ID
	rec.Data = data
	rec.Deleted = false
	return Change{
		Record:      rec,
		ChangeType:  models.ChangeUpdate,
		Description: fmt.Sprintf("merged %d strokes", len(merged.Strokes)),
		Metadata:    meta.Set(models.MetaFields, "strokes"),
	}, nil
}

// LayerID returns the id of the separate annotation layer kept for a peer device.
// The id is derived, so every device separating the same conflict creates the same entity.
func LayerID(entityID, deviceID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(entityID+"/"+deviceID)).String()
}

func separateLayers(c models.SyncConflict, local, remote Side, meta models.Metadata) ([]Change, error) {
	l, r, err := annotationSides(c, local, remote)
	if err != nil {
		return nil, err
	}

	keep, err := reassert(local, meta, "kept own annotation layer")
	if err != nil {
		return nil, err
	}

	layer := *r
	layer.ID = LayerID(l.ID, remote.Entry.DeviceID)
	layer.LayerID = remote.Entry.DeviceID
	data, err := json.Marshal(layer)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal annotation layer: %w", err)
	}

	rec := remote.Record.Clone()
	rec.ID = layer.ID
	rec.Data = data
	rec.Deleted = false

	return []Change{
		keep,
		{
			Record:      rec,
			ChangeType:  models.ChangeCreate,
			Description: "separate annotation layer of " + remote.Entry.DeviceName,
			Metadata:    meta.Set(models.MetaLayerOf, l.ID),
		},
	}, nil
}

func manualMerge(local, remote Side, meta models.Metadata, payload json.RawMessage) (Change, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return Change{}, ErrInvalidPayload
	}

	base := local.Record
	if base == nil {
		base = remote.Record
	}
	if base == nil {
		return Change{}, fmt.Errorf("%w: %s", ErrMissingState, local.Entry.EntityID)
	}

	rec := base.Clone()
	rec.Data = append(json.RawMessage(nil), trimmed...)
	rec.Deleted = false
	rec.Name = ""
	return Change{
		Record:      rec,
		ChangeType:  models.ChangeUpdate,
		Description: "manually merged",
		Metadata:    meta,
	}, nil
}
