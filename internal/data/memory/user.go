package memory

import (
	"context"
	"strings"
	"time"

	"github.com/satvikmishra44/taskhub/internal/data/repository"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRecord struct {
	user structs.User
	seq  int64
}

type userRepository struct {
	s *Store
}

func cloneUser(u *structs.User) *structs.User {
	c := *u
	c.Tasks = append([]primitive.ObjectID{}, u.Tasks...)
	return &c
}

func (r *userRepository) Create(_ context.Context, user *structs.User) (*structs.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, rec := range r.s.users {
		if rec.user.Email == email {
			return nil, repository.ErrDuplicate
		}
	}

	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Tasks == nil {
		user.Tasks = []primitive.ObjectID{}
	}
	r.s.users[user.ID.Hex()] = &userRecord{user: *cloneUser(user), seq: r.s.next()}
	return cloneUser(user), nil
}

func (r *userRepository) FindByID(_ context.Context, id primitive.ObjectID) (*structs.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.users[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(&rec.user), nil
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*structs.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, rec := range r.s.users {
		if rec.user.Email == email {
			return cloneUser(&rec.user), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*structs.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := []*structs.User{}
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if rec, ok := r.s.users[id.Hex()]; ok {
			users = append(users, cloneUser(&rec.user))
		}
	}
	return users, nil
}

func (r *userRepository) List(_ context.Context, filter *structs.UserFilter) ([]*structs.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := []*userRecord{}
	for _, rec := range r.s.users {
		if matchUser(&rec.user, filter) {
			recs = append(recs, rec)
		}
	}
	newestFirst(recs, func(rec *userRecord) (int64, int64) {
		return rec.user.CreatedAt.UnixNano(), rec.seq
	})

	users := make([]*structs.User, 0, len(recs))
	for _, rec := range recs {
		u := cloneUser(&rec.user)
		if filter != nil && filter.NameOnly {
			u = &structs.User{ID: u.ID, Name: u.Name}
		}
		users = append(users, u)
	}
	return users, nil
}

func matchUser(u *structs.User, f *structs.UserFilter) bool {
	if f == nil {
		return true
	}
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(u.Name), q) && !strings.Contains(u.Email, q) {
			return false
		}
	}
	return true
}

func (r *userRepository) SetRole(_ context.Context, id primitive.ObjectID, from, to structs.Role) (*structs.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.users[id.Hex()]
	if !ok || rec.user.Role != from {
		return nil, repository.ErrNotFound
	}
	rec.user.Role = to
	rec.user.UpdatedAt = time.Now().UTC()
	return cloneUser(&rec.user), nil
}

func (r *userRepository) AddTask(_ context.Context, userID, taskID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.users[userID.Hex()]
	if !ok {
		return repository.ErrNotFound
	}
	for _, id := range rec.user.Tasks {
		if id == taskID {
			return nil
		}
	}
	rec.user.Tasks = append(rec.user.Tasks, taskID)
	rec.user.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *userRepository) RemoveTask(_ context.Context, userID, taskID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.users[userID.Hex()]
	if !ok {
		return repository.ErrNotFound
	}
	kept := rec.user.Tasks[:0]
	for _, id := range rec.user.Tasks {
		if id != taskID {
			kept = append(kept, id)
		}
	}
	rec.user.Tasks = kept
	rec.user.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *userRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id.Hex()]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id.Hex())
	return nil
}

func (r *userRepository) Ping(context.Context) error { return nil }
