// Package store keeps indexed documents in memory.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/dgallion1/markscan/internal/scheme"
)

// Document is an indexed document and its element table.
type Document struct {
	ID          string    `json:"doc_id"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash"`
	Elements    int       `json:"elements"`
	CreatedAt   time.Time `json:"created_at"`

	Scheme *scheme.Scheme `json:"-"`
}

// Store is a thread-safe document registry with a content-hash index for dedup.
// Documents are immutable once stored, so callers may share them freely.
type Store struct {
	mu     sync.RWMutex
	docs   map[string]*Document
	byHash map[string]string
}

func New() *Store {
	return &Store{
		docs:   make(map[string]*Document),
		byHash: make(map[string]string),
	}
}

// Put stores doc, replacing any document with the same ID.
func (s *Store) Put(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.docs[doc.ID]; ok && s.byHash[old.ContentHash] == old.ID {
		delete(s.byHash, old.ContentHash)
	}
	s.docs[doc.ID] = doc
	if doc.ContentHash != "" {
		s.byHash[doc.ContentHash] = doc.ID
	}
}

func (s *Store) Get(id string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[id]
}

// ByHash returns the document indexed from identical markup, if any.
func (s *Store) ByHash(hash string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byHash[hash]
	if !ok {
		return nil
	}
	return s.docs[id]
}

// Delete removes a document and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return false
	}
	s.deleteLocked(doc)
	return true
}

// List returns all documents, oldest first.
func (s *Store) List() []*Document {
	s.mu.RLock()
	docs := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Cleanup removes documents older than ttl and returns how many were removed.
func (s *Store) Cleanup(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for _, doc := range s.docs {
		if now.Sub(doc.CreatedAt) > ttl {
			s.deleteLocked(doc)
			removed++
		}
	}
	return removed
}

func (s *Store) deleteLocked(doc *Document) {
	delete(s.docs, doc.ID)
	if s.byHash[doc.ContentHash] == doc.ID {
		delete(s.byHash, doc.ContentHash)
	}
}
