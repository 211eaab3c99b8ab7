// Package memstore is the in-process implementation of the storage
// collaborators. Persistence proper is outside the realtime core; this store
// backs the binary and the tests with the same interface a database adapter
// would implement.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/johnkhitrov-cpu/mappico/internal/domain"
)

type friendPair struct {
	a, b string
}

func pairOf(x, y string) friendPair {
	if x < y {
		return friendPair{a: x, b: y}
	}
	return friendPair{a: y, b: x}
}

// Store keeps users, points, and friendships in memory, guarded by one mutex.
type Store struct {
	mu       sync.Mutex
	users    map[string]domain.User
	byEmail  map[string]string
	points   map[string]domain.Point
	requests map[string]domain.FriendRequest
	friends  map[friendPair]struct{}
}

func New() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		byEmail:  make(map[string]string),
		points:   make(map[string]domain.Point),
		requests: make(map[string]domain.FriendRequest),
		friends:  make(map[friendPair]struct{}),
	}
}

// NewID returns a fresh opaque entity id.
func NewID() string {
	return uuid.NewString()
}

func (s *Store) CreateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email]; taken {
		return domain.ErrEmailTaken
	}
	s.users[user.ID] = user
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.users[id], nil
}

func (s *Store) CreatePoint(_ context.Context, point domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.points[point.ID] = point
	return nil
}

func (s *Store) GetPoint(_ context.Context, id string) (domain.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	point, ok := s.points[id]
	if !ok {
		return domain.Point{}, domain.ErrPointNotFound
	}
	return point, nil
}

func (s *Store) DeletePoint(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.points[id]; !ok {
		return domain.ErrPointNotFound
	}
	delete(s.points, id)
	return nil
}

func (s *Store) PointsByUsers(_ context.Context, userIDs []string) ([]domain.Point, error) {
	owners := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		owners[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var points []domain.Point
	for _, point := range s.points {
		if _, ok := owners[point.UserID]; ok {
			points = append(points, point)
		}
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].CreatedAt.After(points[j].CreatedAt)
	})
	return points, nil
}

func (s *Store) CreateRequest(_ context.Context, req domain.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.friends[pairOf(req.FromUserID, req.ToUserID)]; ok {
		return domain.ErrAlreadyFriends
	}
	s.requests[req.ID] = req
	return nil
}

func (s *Store) AcceptRequest(_ context.Context, requestID, toUserID string) (domain.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[requestID]
	if !ok || req.ToUserID != toUserID {
		return domain.FriendRequest{}, domain.ErrRequestNotFound
	}
	delete(s.requests, requestID)
	s.friends[pairOf(req.FromUserID, req.ToUserID)] = struct{}{}
	return req, nil
}

func (s *Store) FriendIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for pair := range s.friends {
		switch userID {
		case pair.a:
			ids = append(ids, pair.b)
		case pair.b:
			ids = append(ids, pair.a)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) AreFriends(_ context.Context, a, b string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.friends[pairOf(a, b)]
	return ok, nil
}
