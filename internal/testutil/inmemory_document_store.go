package testutil

import (
	"context"
	"sync"

	"github.com/walaka/walaka/internal/domain/document"
	"github.com/walaka/walaka/internal/domain/sequence"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/types"
)

// InMemoryDocumentStore keeps issued documents per table. It serves as the
// document repository, the numbering lookup and the atomic counter, with
// hooks to simulate concurrent writers.
type InMemoryDocumentStore struct {
	mu       sync.Mutex
	tables   map[string][]*document.Document
	counters map[string]int64

	staleLookups int
	conflicts    int
	lookupErr    error
	lookups      int
}

func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		tables:   make(map[string][]*document.Document),
		counters: make(map[string]int64),
	}
}

// Seed stores a document with an already issued number
func (s *InMemoryDocumentStore) Seed(kind types.ScopeKind, number, clientID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, _ := types.GetScopeDefinition(kind)
	s.tables[def.Table] = append(s.tables[def.Table], &document.Document{
		ID:       types.GenerateUUIDWithPrefix(def.IDPrefix),
		Kind:     kind,
		Number:   number,
		ClientID: clientID,
		UserID:   userID,
	})
}

// InjectStaleLookups makes the next n lookups ignore the newest document of
// the scope, as if another writer inserted it after the read.
func (s *InMemoryDocumentStore) InjectStaleLookups(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staleLookups = n
}

// InjectConflicts makes the next n creates lose a race: the number is taken
// by another writer just before the insert.
func (s *InMemoryDocumentStore) InjectConflicts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts = n
}

// FailLookups makes lookups and existence checks return err
func (s *InMemoryDocumentStore) FailLookups(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookupErr = err
}

// Lookups returns how many times FindHighest ran
func (s *InMemoryDocumentStore) Lookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups
}

// Numbers lists the numbers stored for kind in insertion order
func (s *InMemoryDocumentStore) Numbers(kind types.ScopeKind) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, _ := types.GetScopeDefinition(kind)
	out := make([]string, 0, len(s.tables[def.Table]))
	for _, d := range s.tables[def.Table] {
		out = append(out, d.Number)
	}
	return out
}

func (s *InMemoryDocumentStore) FindHighest(ctx context.Context, scope sequence.Scope) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookups++
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}

	var numbers []string
	for _, d := range s.tables[scope.Definition.Table] {
		if !scope.Owns(d.Number) {
			continue
		}
		if scope.Definition.OwnerColumn != "" && d.ClientID != scope.Key {
			continue
		}
		numbers = append(numbers, d.Number)
	}

	if s.staleLookups > 0 && len(numbers) > 0 {
		s.staleLookups--
		numbers = numbers[:len(numbers)-1]
	}

	number, found := sequence.Highest(numbers)
	return number, found, nil
}

func (s *InMemoryDocumentStore) Exists(ctx context.Context, scope sequence.Scope, number string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookupErr != nil {
		return false, s.lookupErr
	}
	return s.existsLocked(scope.Definition.Table, number), nil
}

func (s *InMemoryDocumentStore) Increment(ctx context.Context, scope sequence.Scope, floor int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scope.CounterKey()
	value, ok := s.counters[key]
	if ok {
		value++
	}
	value = max(value, floor, 1)
	s.counters[key] = value
	return value, nil
}

func (s *InMemoryDocumentStore) Current(ctx context.Context, scope sequence.Scope) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[scope.CounterKey()], nil
}

func (s *InMemoryDocumentStore) Create(ctx context.Context, doc *document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := types.GetScopeDefinition(doc.Kind)
	if !ok {
		return doc.Kind.Validate()
	}

	if s.conflicts > 0 {
		s.conflicts--
		s.tables[def.Table] = append(s.tables[def.Table], &document.Document{
			ID:       types.GenerateUUIDWithPrefix(def.IDPrefix),
			Kind:     doc.Kind,
			Number:   doc.Number,
			ClientID: doc.ClientID,
			UserID:   "usr_concurrent",
		})
	}

	if s.existsLocked(def.Table, doc.Number) {
		return ierr.NewError("duplicate document number").
			WithHintf("Number %s is already taken", doc.Number).
			Mark(ierr.ErrAlreadyExists)
	}

	copied := *doc
	s.tables[def.Table] = append(s.tables[def.Table], &copied)
	return nil
}

func (s *InMemoryDocumentStore) CountByUser(ctx context.Context, kind types.ScopeKind, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := types.GetScopeDefinition(kind)
	if !ok {
		return 0, kind.Validate()
	}

	count := 0
	for _, d := range s.tables[def.Table] {
		if d.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryDocumentStore) existsLocked(table, number string) bool {
	for _, d := range s.tables[table] {
		if d.Number == number {
			return true
		}
	}
	return false
}

func (s *InMemoryDocumentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[string][]*document.Document)
	s.counters = make(map[string]int64)
	s.staleLookups = 0
	s.conflicts = 0
	s.lookupErr = nil
	s.lookups = 0
}
