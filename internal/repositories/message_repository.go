package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"chat-broker/internal/models"
)

// MessageRepository defines persistence for direct and group messages.
type MessageRepository interface {
	CreateDirectMessage(ctx context.Context, sender, receiver, content string) (models.Message, error)
	CreateGroupMessage(ctx context.Context, sender, groupName, content string) (models.Message, error)
	ListMessagesBetween(ctx context.Context, userA, userB string) ([]models.Message, error)
	ListGroupMessages(ctx context.Context, groupName string) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateDirectMessage stores a message addressed to a single user.
func (r *MessageRepo) CreateDirectMessage(ctx context.Context, sender, receiver, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (sender, receiver, content) VALUES ($1, $2, $3) RETURNING id, sender, receiver, group_name, content, sent_time`, sender, receiver, content).
		Scan(&msg.ID, &msg.Sender, &msg.Receiver, &msg.GroupName, &msg.Content, &msg.SentTime)
	return msg, err
}

// CreateGroupMessage stores a message addressed to a group.
func (r *MessageRepo) CreateGroupMessage(ctx context.Context, sender, groupName, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (sender, group_name, content) VALUES ($1, $2, $3) RETURNING id, sender, receiver, group_name, content, sent_time`, sender, groupName, content).
		Scan(&msg.ID, &msg.Sender, &msg.Receiver, &msg.GroupName, &msg.Content, &msg.SentTime)
	return msg, err
}

// ListMessagesBetween returns the direct conversation between two users in
// sent-time order.
func (r *MessageRepo) ListMessagesBetween(ctx context.Context, userA, userB string) ([]models.Message, error) {
	query := `SELECT id, sender, receiver, group_name, content, sent_time
        FROM messages
        WHERE (sender=$1 AND receiver=$2) OR (sender=$2 AND receiver=$1)
        ORDER BY sent_time ASC, id ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, userA, userB)
	return msgs, err
}

// ListGroupMessages returns a group's full history in sent-time order.
func (r *MessageRepo) ListGroupMessages(ctx context.Context, groupName string) ([]models.Message, error) {
	query := `SELECT id, sender, receiver, group_name, content, sent_time
        FROM messages
        WHERE group_name=$1
        ORDER BY sent_time ASC, id ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, groupName)
	return msgs, err
}
