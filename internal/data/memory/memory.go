// Package memory provides in-process user and task repositories, used by the
// memory data driver and by tests.
package memory

import (
	"sort"
	"sync"

	"github.com/satvikmishra44/taskhub/internal/data/repository"
)

// Store holds users and tasks behind a single lock.
type Store struct {
	mu    sync.RWMutex
	users map[string]*userRecord
	tasks map[string]*taskRecord
	seq   int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users: make(map[string]*userRecord),
		tasks: make(map[string]*taskRecord),
	}
}

// Users returns the user repository backed by s.
func (s *Store) Users() repository.UserRepository { return &userRepository{s: s} }

// Tasks returns the task repository backed by s.
func (s *Store) Tasks() repository.TaskRepository { return &taskRepository{s: s} }

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// newestFirst orders by creation, then by insertion sequence
func newestFirst[T any](items []T, key func(T) (int64, int64)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, si := key(items[i])
		tj, sj := key(items[j])
		if ti != tj {
			return ti > tj
		}
		return si > sj
	})
}
