package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/iudanet/bandsync/internal/crypto"
)

// EntityRecord строка локального хранилища для любой синхронизируемой сущности.
// Data содержит JSON представление типизированной сущности (Song, Setlist, ...).
type EntityRecord struct {
	UpdatedAt time.Time       `json:"updatedAt"`          // время последней локальной записи (для информации)
	ID        string          `json:"id"`                 // UUID, назначается при создании и не меняется
	Type      EntityType      `json:"type"`               // тип сущности
	Name      string          `json:"name"`               // имя для UI и журнала
	GroupID   string          `json:"groupId"`            // группа, которой принадлежит сущность
	MemberID  string          `json:"memberId,omitempty"` // автор (для аннотаций - владелец слоя)
	DeviceID  string          `json:"deviceId"`           // устройство, записавшее эту версию
	Checksum  string          `json:"checksum"`           // checksum состояния
	Data      json.RawMessage `json:"data"`               // JSON payload сущности
	Version   int64           `json:"version"`            // монотонно растущая версия записи
	Timestamp int64           `json:"timestamp"`          // unix ms гибридных часов
	Deleted   bool            `json:"deleted"`            // soft delete
}

// IsNewerThan сравнивает две версии записи по правилу LWW (Last-Write-Wins):
// 1. Сначала сравнивается Timestamp (больший выигрывает)
// 2. При равных Timestamp сравнивается DeviceID (лексикографически)
func (r *EntityRecord) IsNewerThan(other *EntityRecord) bool {
	if r.Timestamp > other.Timestamp {
		return true
	}
	if r.Timestamp < other.Timestamp {
		return false
	}
	// Timestamps равны - сравниваем DeviceID для детерминизма
	return r.DeviceID > other.DeviceID
}

// Clone создает глубокую копию записи
func (r *EntityRecord) Clone() *EntityRecord {
	clone := *r
	if r.Data != nil {
		clone.Data = make(json.RawMessage, len(r.Data))
		copy(clone.Data, r.Data)
	}
	return &clone
}

// ComputeChecksum вычисляет checksum текущего состояния.
// Удаленная запись всегда имеет TombstoneChecksum.
func (r *EntityRecord) ComputeChecksum() (string, error) {
	if r.Deleted {
		return crypto.TombstoneChecksum, nil
	}
	if len(bytes.TrimSpace(r.Data)) == 0 {
		return crypto.Checksum(nil)
	}
	return crypto.Checksum(r.Data)
}

// Decode распаковывает Data в типизированную сущность
func (r *EntityRecord) Decode(v any) error {
	return json.Unmarshal(r.Data, v)
}

// NewEntityRecord создает запись из типизированной сущности
func NewEntityRecord(entityType EntityType, id, name, groupID string, payload any) (*EntityRecord, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &EntityRecord{
		ID:      id,
		Type:    entityType,
		Name:    name,
		GroupID: groupID,
		Data:    data,
	}, nil
}
