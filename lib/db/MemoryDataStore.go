package db

import (
	"sync"

	"github.com/ether/revpanel/lib/models/revision"
)

type revisionKey struct {
	application string
	revision    string
}

type MemoryDataStore struct {
	mu            sync.RWMutex
	revisionStore map[revisionKey]revision.StoredRevision
	clock         *updateClock
}

func (m *MemoryDataStore) SaveRevisionMetadata(rev revision.StoredRevision) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := copyStoredRevision(rev)
	stored.UpdatedAt = m.clock.next()
	m.revisionStore[revisionKey{rev.ApplicationName, rev.Revision}] = stored
	return nil
}

func (m *MemoryDataStore) GetRevisionMetadata(applicationName string, rev string) (*revision.StoredRevision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.revisionStore[revisionKey{applicationName, rev}]
	if !ok {
		return nil, ErrRevisionNotFound
	}
	out := copyStoredRevision(stored)
	return &out, nil
}

func (m *MemoryDataStore) GetLatestRevisionMetadata(applicationName string) (*revision.StoredRevision, error) {
	revs, err := m.GetRevisionsOfApplication(applicationName)
	if err != nil {
		return nil, err
	}
	if len(revs) == 0 {
		return nil, ErrRevisionNotFound
	}
	return &revs[0], nil
}

func (m *MemoryDataStore) GetRevisionsOfApplication(applicationName string) ([]revision.StoredRevision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	revs := make([]revision.StoredRevision, 0)
	for key, stored := range m.revisionStore {
		if key.application == applicationName {
			revs = append(revs, copyStoredRevision(stored))
		}
	}
	sortNewestFirst(revs)
	return revs, nil
}

func (m *MemoryDataStore) RemoveRevisionMetadata(applicationName string, rev string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := revisionKey{applicationName, rev}
	if _, ok := m.revisionStore[key]; !ok {
		return ErrRevisionNotFound
	}
	delete(m.revisionStore, key)
	return nil
}

func (m *MemoryDataStore) Ping() error {
	return nil
}

func (m *MemoryDataStore) Close() error {
	return nil
}

func NewMemoryDataStore() *MemoryDataStore {
	return &MemoryDataStore{
		revisionStore: make(map[revisionKey]revision.StoredRevision),
		clock:         newUpdateClock(),
	}
}

var _ DataStore = (*MemoryDataStore)(nil)
