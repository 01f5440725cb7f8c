package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"chat-broker/internal/models"
	"chat-broker/internal/repositories"
	"chat-broker/internal/transcript"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Exists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepositoryMock) Get(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

type GroupRepositoryMock struct {
	mock.Mock
}

func (m *GroupRepositoryMock) CreateGroup(ctx context.Context, name, description, creator string) (models.Group, error) {
	args := m.Called(ctx, name, description, creator)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) AddMember(ctx context.Context, groupName, username string) error {
	args := m.Called(ctx, groupName, username)
	return args.Error(0)
}

func (m *GroupRepositoryMock) RemoveMember(ctx context.Context, groupName, username string) error {
	args := m.Called(ctx, groupName, username)
	return args.Error(0)
}

func (m *GroupRepositoryMock) Members(ctx context.Context, groupName string) ([]string, error) {
	args := m.Called(ctx, groupName)
	var members []string
	if val := args.Get(0); val != nil {
		members = val.([]string)
	}
	return members, args.Error(1)
}

func (m *GroupRepositoryMock) GroupsForUser(ctx context.Context, username string) ([]models.Group, error) {
	args := m.Called(ctx, username)
	var groups []models.Group
	if val := args.Get(0); val != nil {
		groups = val.([]models.Group)
	}
	return groups, args.Error(1)
}

func (m *GroupRepositoryMock) AllGroups(ctx context.Context) ([]models.Group, error) {
	args := m.Called(ctx)
	var groups []models.Group
	if val := args.Get(0); val != nil {
		groups = val.([]models.Group)
	}
	return groups, args.Error(1)
}

func (m *GroupRepositoryMock) Exists(ctx context.Context, groupName string) (bool, error) {
	args := m.Called(ctx, groupName)
	return args.Bool(0), args.Error(1)
}

func (m *GroupRepositoryMock) Get(ctx context.Context, groupName string) (models.Group, error) {
	args := m.Called(ctx, groupName)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateDirectMessage(ctx context.Context, sender, receiver, content string) (models.Message, error) {
	args := m.Called(ctx, sender, receiver, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) CreateGroupMessage(ctx context.Context, sender, groupName, content string) (models.Message, error) {
	args := m.Called(ctx, sender, groupName, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessagesBetween(ctx context.Context, userA, userB string) ([]models.Message, error) {
	args := m.Called(ctx, userA, userB)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) ListGroupMessages(ctx context.Context, groupName string) ([]models.Message, error) {
	args := m.Called(ctx, groupName)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type TranscriptRepositoryMock struct {
	mock.Mock
}

func (m *TranscriptRepositoryMock) Record(ctx context.Context, groupName, sessionID, location string, stoppedAt time.Time) (models.Transcript, error) {
	args := m.Called(ctx, groupName, sessionID, location, stoppedAt)
	var t models.Transcript
	if val := args.Get(0); val != nil {
		t = val.(models.Transcript)
	}
	return t, args.Error(1)
}

type ExporterMock struct {
	mock.Mock
}

func (m *ExporterMock) Export(groupName, sessionID string, messages []models.Message, stoppedAt time.Time) (string, error) {
	args := m.Called(groupName, sessionID, messages, stoppedAt)
	return args.String(0), args.Error(1)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.GroupRepository = (*GroupRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.TranscriptRepository = (*TranscriptRepositoryMock)(nil)
var _ transcript.Exporter = (*ExporterMock)(nil)
