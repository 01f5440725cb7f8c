package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chat-broker/internal/models"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrGroupExists   = errors.New("group already exists")
)

const pqUniqueViolation = "23505"

// GroupRepository abstracts group and membership persistence.
type GroupRepository interface {
	CreateGroup(ctx context.Context, name, description, creator string) (models.Group, error)
	AddMember(ctx context.Context, groupName, username string) error
	RemoveMember(ctx context.Context, groupName, username string) error
	Members(ctx context.Context, groupName string) ([]string, error)
	GroupsForUser(ctx context.Context, username string) ([]models.Group, error)
	AllGroups(ctx context.Context) ([]models.Group, error)
	Exists(ctx context.Context, groupName string) (bool, error)
	Get(ctx context.Context, groupName string) (models.Group, error)
}

// GroupRepo is a sqlx implementation of GroupRepository.
type GroupRepo struct {
	db *sqlx.DB
}

// NewGroupRepo constructs a GroupRepo.
func NewGroupRepo(db *sqlx.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// CreateGroup creates a group and enrolls the creator atomically.
func (r *GroupRepo) CreateGroup(ctx context.Context, name, description, creator string) (models.Group, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Group{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var group models.Group
	if err = tx.QueryRowxContext(ctx, `INSERT INTO groups (name, description, creator) VALUES ($1, $2, $3) RETURNING name, description, creator, created_at`, name, description, creator).
		Scan(&group.Name, &group.Description, &group.Creator, &group.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return models.Group{}, ErrGroupExists
		}
		return models.Group{}, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO group_members (group_name, username) VALUES ($1, $2)`, group.Name, creator); err != nil {
		return models.Group{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Group{}, err
	}
	return group, nil
}

// AddMember enrolls a user; re-adding an existing member is a no-op.
func (r *GroupRepo) AddMember(ctx context.Context, groupName, username string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO group_members (group_name, username) VALUES ($1, $2) ON CONFLICT DO NOTHING`, groupName, username)
	return err
}

// RemoveMember drops a user from a group; removing a non-member is a no-op.
func (r *GroupRepo) RemoveMember(ctx context.Context, groupName, username string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM group_members WHERE group_name=$1 AND username=$2`, groupName, username)
	return err
}

// Members returns the usernames currently enrolled in the group.
func (r *GroupRepo) Members(ctx context.Context, groupName string) ([]string, error) {
	var members []string
	err := r.db.SelectContext(ctx, &members, `SELECT username FROM group_members WHERE group_name=$1 ORDER BY username`, groupName)
	return members, err
}

// GroupsForUser returns groups that include the user.
func (r *GroupRepo) GroupsForUser(ctx context.Context, username string) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.SelectContext(ctx, &groups, `SELECT g.name, g.description, g.creator, g.created_at FROM groups g INNER JOIN group_members gm ON gm.group_name = g.name WHERE gm.username=$1 ORDER BY g.created_at DESC`, username)
	return groups, err
}

// AllGroups returns every group, newest first.
func (r *GroupRepo) AllGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.SelectContext(ctx, &groups, `SELECT name, description, creator, created_at FROM groups ORDER BY created_at DESC`)
	return groups, err
}

// Exists reports whether the group name is taken.
func (r *GroupRepo) Exists(ctx context.Context, groupName string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM groups WHERE name=$1)`, groupName)
	return exists, err
}

// Get fetches a single group.
func (r *GroupRepo) Get(ctx context.Context, groupName string) (models.Group, error) {
	var group models.Group
	err := r.db.GetContext(ctx, &group, `SELECT name, description, creator, created_at FROM groups WHERE name=$1`, groupName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, ErrGroupNotFound
	}
	return group, err
}
