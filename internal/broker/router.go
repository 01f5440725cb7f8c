package broker

import (
	"context"
	"fmt"
	"strings"

	"chat-broker/internal/models"
	"chat-broker/internal/repositories"
)

// leaveToken is the sentinel message content that triggers a direct-chat soft
// leave, matching the behavior clients already rely on. Comparison is
// case-insensitive.
const leaveToken = "Bye"

// MaxContentLength bounds message content.
const MaxContentLength = 1000

// MessageRouter resolves the recipient set for a message, persists it, and
// hands each reachable recipient to the dispatcher.
type MessageRouter struct {
	users      repositories.UserRepository
	messages   repositories.MessageRepository
	membership *MembershipStore
	dispatcher *Dispatcher
}

// NewMessageRouter constructs a MessageRouter.
func NewMessageRouter(users repositories.UserRepository, messages repositories.MessageRepository, membership *MembershipStore, dispatcher *Dispatcher) *MessageRouter {
	return &MessageRouter{users: users, messages: messages, membership: membership, dispatcher: dispatcher}
}

// SendDirect persists a message to a single user and pushes it when the
// receiver is online; offline receivers catch up via history, not push.
// Content equal to the leave token additionally emits a soft-leave event to
// the receiver.
func (r *MessageRouter) SendDirect(ctx context.Context, sender, receiver, content string) (models.Message, error) {
	if err := r.requireUser(ctx, sender); err != nil {
		return models.Message{}, err
	}
	if err := r.requireUser(ctx, receiver); err != nil {
		return models.Message{}, err
	}
	if err := validateContent(content); err != nil {
		return models.Message{}, err
	}

	msg, err := r.messages.CreateDirectMessage(ctx, sender, receiver, content)
	if err != nil {
		return models.Message{}, err
	}

	r.dispatcher.DeliverTo(receiver, models.NewMessageEvent(&msg))
	if strings.EqualFold(content, leaveToken) {
		nickname := r.nickname(ctx, sender)
		r.dispatcher.DeliverTo(receiver, models.UserLeftEvent("", sender, nickname, msg.SentTime))
	}
	return msg, nil
}

// SendGroup persists a message to a group and fans it out to every member
// that is currently online, the sender included. The stored content carries
// the sender's display name so exported transcripts stay self-describing.
func (r *MessageRouter) SendGroup(ctx context.Context, sender, groupName, content string) (models.Message, error) {
	if err := r.requireUser(ctx, sender); err != nil {
		return models.Message{}, err
	}
	if err := validateContent(content); err != nil {
		return models.Message{}, err
	}

	members, err := r.membership.Members(ctx, groupName)
	if err != nil {
		return models.Message{}, err
	}
	if !contains(members, sender) {
		return models.Message{}, fmt.Errorf("%w: %s is not a member of %s", ErrForbidden, sender, groupName)
	}

	stored := fmt.Sprintf("%s [%s]: %s", r.nickname(ctx, sender), sender, content)
	msg, err := r.messages.CreateGroupMessage(ctx, sender, groupName, stored)
	if err != nil {
		return models.Message{}, err
	}

	event := models.NewMessageEvent(&msg)
	for _, member := range members {
		r.dispatcher.DeliverTo(member, event)
	}
	return msg, nil
}

func (r *MessageRouter) requireUser(ctx context.Context, username string) error {
	exists, err := r.users.Exists(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	return nil
}

func (r *MessageRouter) nickname(ctx context.Context, username string) string {
	user, err := r.users.Get(ctx, username)
	if err != nil {
		return username
	}
	return user.DisplayName()
}

func validateContent(content string) error {
	if content == "" {
		return fmt.Errorf("empty message content")
	}
	if len(content) > MaxContentLength {
		return fmt.Errorf("message content exceeds %d characters", MaxContentLength)
	}
	return nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
