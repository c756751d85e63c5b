package simulated

import (
	"sync"
)

// documentStore tracks the documents that are currently open
type documentStore struct {
	documents map[string]*document
	mu        sync.RWMutex
}

func newDocumentStore() *documentStore {
	return &documentStore{
		documents: make(map[string]*document),
	}
}

func (s *documentStore) Get(id string) (*document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, exists := s.documents[id]
	return doc, exists
}

func (s *documentStore) Set(id string, doc *document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[id] = doc
}

func (s *documentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

func (s *documentStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
}
