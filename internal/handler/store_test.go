package handler

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shortleaf/shortleaf/internal/model"
	"github.com/shortleaf/shortleaf/internal/repository"
)

// memStore is an in-memory backing store for router tests. It implements
// service.UserStore and service.LinkStore, including the delete cascade the
// real schema enforces with a foreign key.
type memStore struct {
	mu    sync.Mutex
	users map[string]*model.User
	links map[string]*model.ShortLink
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[string]*model.User),
		links: make(map[string]*model.ShortLink),
	}
}

func (m *memStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) UpdateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	// Owned links go with the account, like the FK cascade.
	for linkID, l := range m.links {
		if l.OwnerID == id {
			delete(m.links, linkID)
		}
	}
	return nil
}

func (m *memStore) CreateLink(_ context.Context, link *model.ShortLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.links {
		if l.ShortURL == link.ShortURL {
			return repository.ErrShortURLExists
		}
		if l.OwnerID == link.OwnerID && l.URL == link.URL {
			return repository.ErrDuplicateURL
		}
	}
	cp := *link
	m.links[link.ID] = &cp
	return nil
}

func (m *memStore) GetLinkByID(_ context.Context, id string) (*model.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[id]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memStore) GetLinkByShortURL(_ context.Context, shortURL string) (*model.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.links {
		if l.ShortURL == shortURL {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repository.ErrLinkNotFound
}

func (m *memStore) ListLinksByOwner(_ context.Context, ownerID string) ([]*model.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ShortLink
	for _, l := range m.links {
		if l.OwnerID == ownerID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memStore) CountLinksByOwner(_ context.Context, ownerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, l := range m.links {
		if l.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (m *memStore) OwnerHasURL(_ context.Context, ownerID, url, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.links {
		if l.OwnerID == ownerID && l.URL == url && l.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ShortURLExists(_ context.Context, shortURL, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.links {
		if l.ShortURL == shortURL && l.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) UpdateLink(_ context.Context, link *model.ShortLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[link.ID]; !ok {
		return repository.ErrLinkNotFound
	}
	cp := *link
	m.links[link.ID] = &cp
	return nil
}

func (m *memStore) DeleteLink(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[id]; !ok {
		return repository.ErrLinkNotFound
	}
	delete(m.links, id)
	return nil
}

func (m *memStore) ResolveAndCount(_ context.Context, shortURL string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.links {
		if l.ShortURL == shortURL {
			l.Clicks++
			return l.URL, nil
		}
	}
	return "", repository.ErrLinkNotFound
}

// memSessions is an in-memory session store for router tests.
type memSessions struct {
	mu       sync.Mutex
	sessions map[string]string
	next     int
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]string)}
}

func (m *memSessions) Create(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	token := fmt.Sprintf("sess-%d", m.next)
	m.sessions[token] = userID
	return token, nil
}

func (m *memSessions) UserID(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.sessions[token]
	if !ok {
		return "", fmt.Errorf("session not found")
	}
	return userID, nil
}

func (m *memSessions) Destroy(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *memSessions) Rotate(ctx context.Context, token string) (string, error) {
	userID, err := m.UserID(ctx, token)
	if err != nil {
		return "", err
	}
	if err := m.Destroy(ctx, token); err != nil {
		return "", err
	}
	return m.Create(ctx, userID)
}
