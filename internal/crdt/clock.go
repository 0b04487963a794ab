package crdt

import (
	"sync"
	"time"
)

// HybridClock гибридные логические часы устройства.
// Значение близко к физическому времени (unix ms), но никогда не уменьшается,
// даже если системные часы ушли назад, и всегда больше любого увиденного
// удаленного timestamp.
type HybridClock struct {
	now    func() time.Time // источник физического времени
	nodeID string           // идентификатор устройства
	last   int64            // последнее выданное значение
	mu     sync.Mutex       // мьютекс для потокобезопасности
}

// NewHybridClock создает часы для устройства
func NewHybridClock(nodeID string) *HybridClock {
	return NewHybridClockWithSource(nodeID, time.Now)
}

// NewHybridClockWithSource создает часы с заданным источником времени.
// Используется для тестирования.
func NewHybridClockWithSource(nodeID string, now func() time.Time) *HybridClock {
	return &HybridClock{
		now:    now,
		nodeID: nodeID,
	}
}

// Tick возвращает новый timestamp для локального события.
// Результат строго больше предыдущего.
func (c *HybridClock) Tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	physical := c.now().UnixMilli()
	if physical > c.last {
		c.last = physical
	} else {
		c.last++
	}
	return c.last
}

// Update учитывает timestamp, полученный от другого устройства.
// Следующий Tick будет больше remoteTimestamp.
func (c *HybridClock) Update(remoteTimestamp int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remoteTimestamp > c.last {
		c.last = remoteTimestamp
	}
}

// GetTimestamp возвращает последнее выданное значение без изменения часов.
func (c *HybridClock) GetTimestamp() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.last
}

// GetNodeID возвращает идентификатор устройства.
func (c *HybridClock) GetNodeID() string {
	return c.nodeID
}

// SetTimestamp восстанавливает состояние часов (например, после перезапуска).
// Уменьшить значение нельзя.
func (c *HybridClock) SetTimestamp(timestamp int64) {
	c.Update(timestamp)
}
