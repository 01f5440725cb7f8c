package broker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"chat-broker/internal/models"
	"chat-broker/internal/repositories"
)

// MembershipStore owns the live member-set view used for fan-out. It fronts
// the group repository and caches member sets per group so routing does not
// hit the database on every broadcast. Mutations hold the store lock across
// the repository write, so readers never observe a half-applied transition.
type MembershipStore struct {
	mu       sync.RWMutex
	groups   repositories.GroupRepository
	users    repositories.UserRepository
	members  map[string]map[string]struct{}
	creators map[string]string
}

// NewMembershipStore constructs a store over the persistence collaborators.
func NewMembershipStore(groups repositories.GroupRepository, users repositories.UserRepository) *MembershipStore {
	return &MembershipStore{
		groups:   groups,
		users:    users,
		members:  make(map[string]map[string]struct{}),
		creators: make(map[string]string),
	}
}

// CreateGroup creates a group with the creator as its first member.
func (s *MembershipStore) CreateGroup(ctx context.Context, name, description, creator string) (models.Group, error) {
	if err := s.requireUser(ctx, creator); err != nil {
		return models.Group{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	group, err := s.groups.CreateGroup(ctx, name, description, creator)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupExists) {
			return models.Group{}, fmt.Errorf("%w: %s", ErrGroupExists, name)
		}
		return models.Group{}, err
	}

	s.members[name] = map[string]struct{}{creator: {}}
	s.creators[name] = creator
	return group, nil
}

// AddMember enrolls a user. Adding an existing member succeeds without a
// duplicate; the returned flag reports whether membership actually changed.
func (s *MembershipStore) AddMember(ctx context.Context, groupName, username string) (bool, error) {
	if err := s.requireUser(ctx, username); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.loadLocked(ctx, groupName)
	if err != nil {
		return false, err
	}
	if _, ok := set[username]; ok {
		return false, nil
	}

	if err := s.groups.AddMember(ctx, groupName, username); err != nil {
		return false, err
	}
	set[username] = struct{}{}
	return true, nil
}

// RemoveMember drops a user from a group. Removing the creator is always
// rejected. Removing a non-member is a no-op success. The removed flag
// reports whether membership actually changed; empty reports whether that
// change left the group with no members.
func (s *MembershipStore) RemoveMember(ctx context.Context, groupName, username string) (removed, empty bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.loadLocked(ctx, groupName)
	if err != nil {
		return false, false, err
	}
	if s.creators[groupName] == username {
		return false, false, fmt.Errorf("%w: cannot remove creator %s from %s", ErrForbidden, username, groupName)
	}
	if _, ok := set[username]; !ok {
		return false, false, nil
	}

	if err := s.groups.RemoveMember(ctx, groupName, username); err != nil {
		return false, false, err
	}
	delete(set, username)
	return true, len(set) == 0, nil
}

// Members returns a sorted snapshot of the group's current members.
func (s *MembershipStore) Members(ctx context.Context, groupName string) ([]string, error) {
	s.mu.Lock()
	set, err := s.loadLocked(ctx, groupName)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	members := make([]string, 0, len(set))
	for username := range set {
		members = append(members, username)
	}
	s.mu.Unlock()

	sort.Strings(members)
	return members, nil
}

// IsMember reports whether the user currently belongs to the group.
func (s *MembershipStore) IsMember(ctx context.Context, groupName, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.loadLocked(ctx, groupName)
	if err != nil {
		return false, err
	}
	_, ok := set[username]
	return ok, nil
}

// Creator returns the group's creator.
func (s *MembershipStore) Creator(ctx context.Context, groupName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.loadLocked(ctx, groupName); err != nil {
		return "", err
	}
	return s.creators[groupName], nil
}

// Exists reports whether the group is known.
func (s *MembershipStore) Exists(ctx context.Context, groupName string) (bool, error) {
	s.mu.RLock()
	_, cached := s.members[groupName]
	s.mu.RUnlock()
	if cached {
		return true, nil
	}
	return s.groups.Exists(ctx, groupName)
}

// GroupsFor returns the groups the user belongs to.
func (s *MembershipStore) GroupsFor(ctx context.Context, username string) ([]models.Group, error) {
	if err := s.requireUser(ctx, username); err != nil {
		return nil, err
	}
	return s.groups.GroupsForUser(ctx, username)
}

func (s *MembershipStore) requireUser(ctx context.Context, username string) error {
	exists, err := s.users.Exists(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	return nil
}

// loadLocked returns the cached member set, pulling it from the repository on
// first touch. Callers hold s.mu.
func (s *MembershipStore) loadLocked(ctx context.Context, groupName string) (map[string]struct{}, error) {
	if set, ok := s.members[groupName]; ok {
		return set, nil
	}

	group, err := s.groups.Get(ctx, groupName)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, groupName)
		}
		return nil, err
	}

	members, err := s.groups.Members(ctx, groupName)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(members))
	for _, username := range members {
		set[username] = struct{}{}
	}
	s.members[groupName] = set
	s.creators[groupName] = group.Creator
	return set, nil
}
