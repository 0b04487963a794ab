package models

// ConflictType тип конфликта
type ConflictType string

const (
	ConflictSimultaneousEdit  ConflictType = "SIMULTANEOUS_EDIT"
	ConflictDeleteModify      ConflictType = "DELETE_MODIFY"
	ConflictStructureChange   ConflictType = "STRUCTURE_CHANGE"
	ConflictAnnotationOverlap ConflictType = "ANNOTATION_OVERLAP"
	ConflictVersionMismatch   ConflictType = "VERSION_MISMATCH"
)

// ConflictVersion неизменяемая сводка одной стороны конфликта (для сравнения и UI)
type ConflictVersion struct {
	DeviceID    string `json:"deviceId"`
	DeviceName  string `json:"deviceName"`
	AuthorName  string `json:"authorName"`
	Checksum    string `json:"checksum"`
	Description string `json:"description"`
	Timestamp   int64  `json:"timestamp"`
}

// SyncConflict пара расходящихся версий одной сущности.
// Создается во время прохода синхронизации; сохраняется только если показан пользователю.
type SyncConflict struct {
	LocalChange    *ChangeLogEntry `json:"localChange,omitempty"`  // локальное изменение (для применения решения)
	RemoteChange   *ChangeLogEntry `json:"remoteChange,omitempty"` // удаленное изменение
	ConflictID     string          `json:"conflictId"`
	GroupID        string          `json:"groupId"`
	EntityType     EntityType      `json:"entityType"`
	EntityID       string          `json:"entityId"`
	EntityName     string          `json:"entityName"`
	ConflictType   ConflictType    `json:"conflictType"`
	LocalVersion   ConflictVersion `json:"localVersion"`
	RemoteVersion  ConflictVersion `json:"remoteVersion"`
	CanAutoResolve bool            `json:"canAutoResolve"`
}

// VersionOf строит ConflictVersion из записи журнала
func VersionOf(e *ChangeLogEntry, authorName string) ConflictVersion {
	return ConflictVersion{
		Timestamp:   e.Timestamp,
		DeviceID:    e.DeviceID,
		DeviceName:  e.DeviceName,
		AuthorName:  authorName,
		Checksum:    e.Checksum,
		Description: e.Description,
	}
}

// ResolutionAction решение пользователя по конфликту
type ResolutionAction string

const (
	ActionKeepLocal        ResolutionAction = "KEEP_LOCAL"
	ActionAcceptRemote     ResolutionAction = "ACCEPT_REMOTE"
	ActionMergeAnnotations ResolutionAction = "MERGE_ANNOTATIONS"
	ActionLayerSeparate    ResolutionAction = "LAYER_SEPARATE"
	ActionManualMerge      ResolutionAction = "MANUAL_MERGE"
)

// ParseResolutionAction разбирает действие из строки (CLI)
func ParseResolutionAction(s string) (ResolutionAction, bool) {
	switch a := ResolutionAction(s); a {
	case ActionKeepLocal, ActionAcceptRemote, ActionMergeAnnotations, ActionLayerSeparate, ActionManualMerge:
		return a, true
	}
	return "", false
}
