package sqlite

import (
	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/models"
)

// watchBuffer размер буфера канала подписчика.
// Медленный подписчик теряет события, а не блокирует запись.
const watchBuffer = 64

// Watch subscribes to committed writes of an entity type.
// The returned func cancels the subscription and closes the channel.
func (s *Storage) Watch(entityType models.EntityType) (<-chan storage.EntityEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, ok := s.watchers[entityType]
	if !ok {
		subs = make(map[int]chan storage.EntityEvent)
		s.watchers[entityType] = subs
	}

	id := s.nextID
	s.nextID++
	ch := make(chan storage.EntityEvent, watchBuffer)
	subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if ch, ok := subs[id]; ok {
			close(ch)
			delete(subs, id)
		}
	}

	return ch, cancel
}

func (s *Storage) notify(rec *models.EntityRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.watchers[rec.Type] {
		select {
		case ch <- storage.EntityEvent{Record: rec.Clone()}:
		default:
		}
	}
}
