package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shortleaf/shortleaf/internal/model"
	"github.com/shortleaf/shortleaf/internal/repository"
)

// fakeLinkStore is an in-memory LinkStore for service tests.
type fakeLinkStore struct {
	mu    sync.Mutex
	links map[string]*model.ShortLink
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{links: make(map[string]*model.ShortLink)}
}

func (f *fakeLinkStore) CreateLink(_ context.Context, link *model.ShortLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.ShortURL == link.ShortURL {
			return repository.ErrShortURLExists
		}
		if l.OwnerID == link.OwnerID && l.URL == link.URL {
			return repository.ErrDuplicateURL
		}
	}
	cp := *link
	f.links[link.ID] = &cp
	return nil
}

func (f *fakeLinkStore) GetLinkByID(_ context.Context, id string) (*model.ShortLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[id]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLinkStore) GetLinkByShortURL(_ context.Context, shortURL string) (*model.ShortLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.ShortURL == shortURL {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repository.ErrLinkNotFound
}

func (f *fakeLinkStore) ListLinksByOwner(_ context.Context, ownerID string) ([]*model.ShortLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.ShortLink
	for _, l := range f.links {
		if l.OwnerID == ownerID {
			cp := *l
			out = append(out, &cp)
		}
	}
	// Same ordering as the real query: created_at, then ID.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeLinkStore) CountLinksByOwner(_ context.Context, ownerID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, l := range f.links {
		if l.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (f *fakeLinkStore) OwnerHasURL(_ context.Context, ownerID, url, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.OwnerID == ownerID && l.URL == url && l.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLinkStore) ShortURLExists(_ context.Context, shortURL, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.ShortURL == shortURL && l.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLinkStore) UpdateLink(_ context.Context, link *model.ShortLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.links[link.ID]; !ok {
		return repository.ErrLinkNotFound
	}
	cp := *link
	f.links[link.ID] = &cp
	return nil
}

func (f *fakeLinkStore) DeleteLink(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.links[id]; !ok {
		return repository.ErrLinkNotFound
	}
	delete(f.links, id)
	return nil
}

func (f *fakeLinkStore) ResolveAndCount(_ context.Context, shortURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.ShortURL == shortURL {
			l.Clicks++
			return l.URL, nil
		}
	}
	return "", repository.ErrLinkNotFound
}

// saturatedLinkStore reports every short code of the given lengths as taken,
// forcing the generator to widen.
type saturatedLinkStore struct {
	fakeLinkStore
	takenLengths map[int]bool
}

func (s *saturatedLinkStore) ShortURLExists(ctx context.Context, shortURL, excludeID string) (bool, error) {
	if s.takenLengths[len(shortURL)] {
		return true, nil
	}
	return s.fakeLinkStore.ShortURLExists(ctx, shortURL, excludeID)
}

// fakeUserStore is an in-memory UserStore for service tests.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) UpdateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) DeleteUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

// fakeSessionStore is an in-memory SessionStore for service tests.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
	next     int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]string)}
}

func (f *fakeSessionStore) Create(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	token := fmt.Sprintf("token-%d", f.next)
	f.sessions[token] = userID
	return token, nil
}

func (f *fakeSessionStore) UserID(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	userID, ok := f.sessions[token]
	if !ok {
		return "", fmt.Errorf("session not found")
	}
	return userID, nil
}

func (f *fakeSessionStore) Destroy(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessionStore) Rotate(ctx context.Context, token string) (string, error) {
	userID, err := f.UserID(ctx, token)
	if err != nil {
		return "", err
	}
	if err := f.Destroy(ctx, token); err != nil {
		return "", err
	}
	return f.Create(ctx, userID)
}
