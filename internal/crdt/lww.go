package crdt

import (
	"sort"

	"github.com/iudanet/bandsync/internal/models"
)

// LWWMap представляет Last-Write-Wins map записей журнала, ключ - EntityID.
// Для каждой сущности хранится только последняя запись. Используется, чтобы
// свести пачку изменений к одному изменению на сущность перед сравнением сторон.
// Не потокобезопасна: живет внутри одного прохода синхронизации.
type LWWMap struct {
	entries map[string]*models.ChangeLogEntry
}

// NewLWWMap создает пустую map
func NewLWWMap() *LWWMap {
	return &LWWMap{
		entries: make(map[string]*models.ChangeLogEntry),
	}
}

// CollapseEntries сводит последовательность записей к последней записи на сущность
func CollapseEntries(entries []models.ChangeLogEntry) *LWWMap {
	m := NewLWWMap()
	for i := range entries {
		m.Add(&entries[i])
	}
	return m
}

// Add добавляет запись или заменяет существующую, если новая запись новее.
// Возвращает true, если запись была добавлена/обновлена.
func (m *LWWMap) Add(entry *models.ChangeLogEntry) bool {
	existing, exists := m.entries[entry.EntityID]

	// Если записи нет - добавляем
	if !exists {
		m.entries[entry.EntityID] = entry.Clone()
		return true
	}

	// Если новая запись новее - обновляем
	if entry.IsNewerThan(existing) {
		m.entries[entry.EntityID] = entry.Clone()
		return true
	}

	return false
}

// Get возвращает последнюю запись сущности или nil
func (m *LWWMap) Get(entityID string) *models.ChangeLogEntry {
	entry, ok := m.entries[entityID]
	if !ok {
		return nil
	}
	return entry.Clone()
}

// Contains проверяет наличие сущности
func (m *LWWMap) Contains(entityID string) bool {
	_, ok := m.entries[entityID]
	return ok
}

// Entries возвращает записи в порядке журнала (Timestamp, затем ChangeID).
func (m *LWWMap) Entries() []*models.ChangeLogEntry {
	result := make([]*models.ChangeLogEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		result = append(result, entry.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Before(result[j])
	})
	return result
}

// Merge объединяет текущую map с другой по правилу LWW.
// Операция коммутативна и идемпотентна.
func (m *LWWMap) Merge(other *LWWMap) {
	for _, entry := range other.entries {
		m.Add(entry)
	}
}

// Size возвращает количество сущностей
func (m *LWWMap) Size() int {
	return len(m.entries)
}
