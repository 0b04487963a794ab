package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ChangeType тип изменения сущности
type ChangeType string

const (
	ChangeCreate ChangeType = "CREATE"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
	ChangeMove   ChangeType = "MOVE"
)

// Valid проверяет, что тип изменения известен
func (c ChangeType) Valid() bool {
	switch c {
	case ChangeCreate, ChangeUpdate, ChangeDelete, ChangeMove:
		return true
	}
	return false
}

// EntityType тип синхронизируемой сущности
type EntityType string

const (
	EntityGroup       EntityType = "GROUP"
	EntityMember      EntityType = "MEMBER"
	EntitySong        EntityType = "SONG"
	EntitySongFile    EntityType = "SONG_FILE"
	EntitySetlist     EntityType = "SETLIST"
	EntitySetlistItem EntityType = "SETLIST_ITEM"
	EntityAnnotation  EntityType = "ANNOTATION"
)

// EntityTypes все известные типы сущностей
var EntityTypes = []EntityType{
	EntityGroup, EntityMember, EntitySong, EntitySongFile,
	EntitySetlist, EntitySetlistItem, EntityAnnotation,
}

// Valid проверяет, что тип сущности известен
func (e EntityType) Valid() bool {
	for _, t := range EntityTypes {
		if t == e {
			return true
		}
	}
	return false
}

// Известные ключи метаданных изменения
const (
	MetaFields       = "fields"       // список измененных полей через запятую
	MetaVersion      = "version"      // версия сущности после изменения
	MetaBaseVersion  = "baseVersion"  // версия, от которой было сделано изменение
	MetaFileChecksum = "fileChecksum" // checksum содержимого файла (SONG_FILE)
	MetaMergedFrom   = "mergedFrom"   // changeId исходных изменений для merge записи
	MetaResolution   = "resolution"   // примененное ResolutionAction
	MetaLayerOf      = "layerOf"      // исходная аннотация для отдельного слоя
)

// ChangeLogEntry запись журнала изменений.
// После записи не изменяется. Порядок: Timestamp, затем ChangeID.
type ChangeLogEntry struct {
	ChangeID    string     `json:"changeId"`           // уникальный идентификатор изменения (UUID)
	DeviceID    string     `json:"deviceId"`           // устройство, сделавшее изменение
	DeviceName  string     `json:"deviceName"`         // человекочитаемое имя устройства
	ChangeType  ChangeType `json:"changeType"`         // CREATE, UPDATE, DELETE, MOVE
	EntityType  EntityType `json:"entityType"`         // тип сущности
	EntityID    string     `json:"entityId"`           // идентификатор сущности
	EntityName  string     `json:"entityName"`         // имя сущности на момент изменения
	MemberID    string     `json:"memberId,omitempty"` // участник группы, автор изменения
	Checksum    string     `json:"checksum"`           // checksum состояния сущности после изменения
	Description string     `json:"description"`        // описание для UI
	Metadata    Metadata   `json:"metadata"`           // упорядоченные метаданные
	Timestamp   int64      `json:"timestamp"`          // unix ms (гибридные логические часы)
}

// Before сообщает, идет ли запись раньше other в порядке журнала
func (e *ChangeLogEntry) Before(other *ChangeLogEntry) bool {
	if e.Timestamp != other.Timestamp {
		return e.Timestamp < other.Timestamp
	}
	return e.ChangeID < other.ChangeID
}

// IsNewerThan правило LWW для записей журнала:
// больший Timestamp, при равенстве лексикографически больший DeviceID,
// затем больший ChangeID (одно устройство, один timestamp).
func (e *ChangeLogEntry) IsNewerThan(other *ChangeLogEntry) bool {
	if e.Timestamp != other.Timestamp {
		return e.Timestamp > other.Timestamp
	}
	if e.DeviceID != other.DeviceID {
		return e.DeviceID > other.DeviceID
	}
	return e.ChangeID > other.ChangeID
}

// Clone создает копию записи (метаданные копируются)
func (e *ChangeLogEntry) Clone() *ChangeLogEntry {
	clone := *e
	clone.Metadata = e.Metadata.Clone()
	return &clone
}

// Validate проверяет обязательные поля записи
func (e *ChangeLogEntry) Validate() error {
	switch {
	case e.ChangeID == "":
		return fmt.Errorf("change id is empty")
	case e.DeviceID == "":
		return fmt.Errorf("device id is empty")
	case e.EntityID == "":
		return fmt.Errorf("entity id is empty")
	case !e.ChangeType.Valid():
		return fmt.Errorf("unknown change type %q", e.ChangeType)
	case !e.EntityType.Valid():
		return fmt.Errorf("unknown entity type %q", e.EntityType)
	}
	return nil
}

// ChangeLog удаленный журнал изменений группы.
// Записи только добавляются, весь журнал сериализуется заново при каждой записи.
type ChangeLog struct {
	LastChangeID string           `json:"lastChangeId"`
	Changes      []ChangeLogEntry `json:"changes"`
	Version      int64            `json:"version"`
}

// IndexOf возвращает позицию записи в журнале или -1
func (l *ChangeLog) IndexOf(changeID string) int {
	if changeID == "" {
		return -1
	}
	for i := range l.Changes {
		if l.Changes[i].ChangeID == changeID {
			return i
		}
	}
	return -1
}

// Since возвращает записи строго после changeID в порядке журнала.
// Неизвестный или пустой курсор означает весь журнал.
func (l *ChangeLog) Since(changeID string) []ChangeLogEntry {
	start := l.IndexOf(changeID) + 1
	out := make([]ChangeLogEntry, len(l.Changes)-start)
	copy(out, l.Changes[start:])
	return out
}

// Append добавляет записи, которых еще нет в журнале (по ChangeID).
// Возвращает количество добавленных записей.
func (l *ChangeLog) Append(entries ...ChangeLogEntry) int {
	seen := make(map[string]struct{}, len(l.Changes)+len(entries))
	for i := range l.Changes {
		seen[l.Changes[i].ChangeID] = struct{}{}
	}

	added := 0
	for _, e := range entries {
		if _, ok := seen[e.ChangeID]; ok {
			continue
		}
		seen[e.ChangeID] = struct{}{}
		l.Changes = append(l.Changes, e)
		l.LastChangeID = e.ChangeID
		added++
	}
	return added
}

// MetaPair пара ключ-значение метаданных
type MetaPair struct {
	Key   string
	Value string
}

// Metadata упорядоченная map string -> string.
// В JSON кодируется объектом, порядок ключей сохраняется.
type Metadata []MetaPair

// Get возвращает значение по ключу
func (m Metadata) Get(key string) (string, bool) {
	for _, p := range m {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Value возвращает значение или пустую строку
func (m Metadata) Value(key string) string {
	v, _ := m.Get(key)
	return v
}

// Int возвращает значение как int64
func (m Metadata) Int(key string) (int64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Fields возвращает список измененных полей из ключа "fields"
func (m Metadata) Fields() []string {
	v := m.Value(MetaFields)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Set заменяет значение существующего ключа или добавляет новый в конец.
// Исходный срез не изменяется.
func (m Metadata) Set(key, value string) Metadata {
	out := m.Clone()
	for i := range out {
		if out[i].Key == key {
			out[i].Value = value
			return out
		}
	}
	return append(out, MetaPair{Key: key, Value: value})
}

// Clone создает копию метаданных
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	copy(out, m)
	return out
}

// MarshalJSON кодирует метаданные JSON объектом в порядке добавления ключей
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON читает JSON объект, сохраняя порядок ключей
func (m *Metadata) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("metadata must be a JSON object")
	}

	var out Metadata
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read metadata key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("metadata key must be a string")
		}

		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("metadata value for %q: %w", key, err)
		}
		out = out.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}

	*m = out
	return nil
}
