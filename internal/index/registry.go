package index

import (
	"container/list"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Registry is the process-wide arena of per-document indexes. Re-indexing a
// document atomically replaces its entry (last writer wins); readers that
// already hold the old index keep searching it safely. When the arena is
// full the least recently used document is evicted.
type Registry struct {
	mu       sync.RWMutex
	entries  map[uuid.UUID]*list.Element
	order    *list.List // front = most recently used
	capacity int
	logger   *slog.Logger
}

type registryEntry struct {
	documentID uuid.UUID
	index      *Index
}

// NewRegistry builds an arena bounded to capacity documents. A non-positive
// capacity disables eviction.
func NewRegistry(capacity int, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries:  make(map[uuid.UUID]*list.Element),
		order:    list.New(),
		capacity: capacity,
		logger:   logger,
	}
}

// Put registers or replaces the index for its document.
func (r *Registry) Put(ix *Index) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := ix.DocumentID()
	if elem, ok := r.entries[id]; ok {
		elem.Value.(*registryEntry).index = ix
		r.order.MoveToFront(elem)
		return
	}

	r.entries[id] = r.order.PushFront(&registryEntry{documentID: id, index: ix})

	if r.capacity > 0 && r.order.Len() > r.capacity {
		oldest := r.order.Back()
		if oldest != nil {
			entry := oldest.Value.(*registryEntry)
			r.order.Remove(oldest)
			delete(r.entries, entry.documentID)
			r.logger.Info("index.registry.evict", "doc_id", entry.documentID.String())
		}
	}
}

// Get returns the current index for a document and marks it recently used.
func (r *Registry) Get(documentID uuid.UUID) (*Index, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	elem, ok := r.entries[documentID]
	if !ok {
		return nil, false
	}
	r.order.MoveToFront(elem)
	return elem.Value.(*registryEntry).index, true
}

// Remove drops a document's index from the arena.
func (r *Registry) Remove(documentID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if elem, ok := r.entries[documentID]; ok {
		r.order.Remove(elem)
		delete(r.entries, documentID)
	}
}

// Len reports how many documents are currently indexed.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
