package broker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-broker/internal/mocks"
	"chat-broker/internal/models"
)

type lifecycleFixture struct {
	registry       *PresenceRegistry
	dispatcher     *Dispatcher
	membership     *MembershipStore
	router         *MessageRouter
	lifecycle      *LifecycleCoordinator
	userRepo       *mocks.UserRepositoryMock
	groupRepo      *mocks.GroupRepositoryMock
	messageRepo    *mocks.MessageRepositoryMock
	transcriptRepo *mocks.TranscriptRepositoryMock
	exporter       *mocks.ExporterMock
}

func newLifecycleFixture() *lifecycleFixture {
	userRepo := new(mocks.UserRepositoryMock)
	groupRepo := new(mocks.GroupRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	transcriptRepo := new(mocks.TranscriptRepositoryMock)
	exporter := new(mocks.ExporterMock)

	registry := NewPresenceRegistry()
	dispatcher := NewDispatcher(registry)
	membership := NewMembershipStore(groupRepo, userRepo)
	return &lifecycleFixture{
		registry:       registry,
		dispatcher:     dispatcher,
		membership:     membership,
		router:         NewMessageRouter(userRepo, messageRepo, membership, dispatcher),
		lifecycle:      NewLifecycleCoordinator(membership, registry, dispatcher, userRepo, messageRepo, transcriptRepo, exporter),
		userRepo:       userRepo,
		groupRepo:      groupRepo,
		messageRepo:    messageRepo,
		transcriptRepo: transcriptRepo,
		exporter:       exporter,
	}
}

func (f *lifecycleFixture) knownUser(username, nickname string) {
	f.userRepo.On("Exists", mock.Anything, username).Return(true, nil)
	f.userRepo.On("Get", mock.Anything, username).Return(models.User{Username: username, Nickname: nickname}, nil)
}

func TestCreateGroupAnnouncesStartToCreator(t *testing.T) {
	f := newLifecycleFixture()
	f.knownUser("alice", "")
	alice := &stubObserver{}
	f.registry.Register("alice", alice)

	f.groupRepo.On("CreateGroup", mock.Anything, "team", "", "alice").
		Return(models.Group{Name: "team", Creator: "alice", CreatedAt: time.Now()}, nil).Once()

	_, err := f.lifecycle.CreateGroup(context.Background(), "team", "", "alice")
	require.NoError(t, err)

	started := alice.byType(models.EventChatStarted)
	require.Len(t, started, 1)
	require.Equal(t, "team", started[0].GroupName)
}

func TestJoinNotifiesOtherMembersOnly(t *testing.T) {
	f := newLifecycleFixture()
	f.knownUser("alice", "")
	f.knownUser("bob", "Bobby")
	alice := &stubObserver{}
	bob := &stubObserver{}
	f.registry.Register("alice", alice)
	f.registry.Register("bob", bob)

	f.groupRepo.On("CreateGroup", mock.Anything, "team", "", "alice").
		Return(models.Group{Name: "team", Creator: "alice"}, nil).Once()
	f.groupRepo.On("AddMember", mock.Anything, "team", "bob").Return(nil).Once()

	_, err := f.lifecycle.CreateGroup(context.Background(), "team", "", "alice")
	require.NoError(t, err)

	require.NoError(t, f.lifecycle.Join(context.Background(), "team", "bob"))

	joined := alice.byType(models.EventUserJoined)
	require.Len(t, joined, 1)
	require.Equal(t, "bob", joined[0].User)
	require.Equal(t, "Bobby", joined[0].Nickname)
	require.Empty(t, bob.byType(models.EventUserJoined))
}

func TestRejoinIsSilent(t *testing.T) {
	f := newLifecycleFixture()
	f.knownUser("alice", "")
	f.knownUser("bob", "")
	alice := &stubObserver{}
	f.registry.Register("alice", alice)

	f.groupRepo.On("CreateGroup", mock.Anything, "team", "", "alice").
		Return(models.Group{Name: "team", Creator: "alice"}, nil).Once()
	f.groupRepo.On("AddMember", mock.Anything, "team", "bob").Return(nil).Once()

	_, err := f.lifecycle.CreateGroup(context.Background(), "team", "", "alice")
	require.NoError(t, err)
	require.NoError(t, f.lifecycle.Join(context.Background(), "team", "bob"))
	require.NoError(t, f.lifecycle.Join(context.Background(), "team", "bob"))

	require.Len(t, alice.byType(models.EventUserJoined), 1)
	f.groupRepo.AssertNumberOfCalls(t, "AddMember", 1)
}

func TestLeaveNotifiesRemainingMembers(t *testing.T) {
	f := newLifecycleFixture()
	f.knownUser("alice", "")
	f.knownUser("bob", "")
	alice := &stubObserver{}
	f.registry.Register("alice", alice)

	f.groupRepo.On("CreateGroup", mock.Anything, "team", "", "alice").
		Return(models.Group{Name: "team", Creator: "alice"}, nil).Once()
	f.groupRepo.On("AddMember", mock.Anything, "team", "bob").Return(nil).Once()
	f.groupRepo.On("RemoveMember", mock.Anything, "team", "bob").Return(nil).Once()

	ctx := context.Background()
	_, err := f.lifecycle.CreateGroup(ctx, "team", "", "alice")
	require.NoError(t, err)
	require.NoError(t, f.lifecycle.Join(ctx, "team", "bob"))
	require.NoError(t, f.lifecycle.Leave(ctx, "team", "bob"))

	left := alice.byType(models.EventUserLeft)
	require.Len(t, left, 1)
	require.Equal(t, "bob", left[0].User)
	// group still has its creator, no stop fired
	require.Empty(t, alice.byType(models.EventChatStopped))
	f.exporter.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLeaveByNonMemberIsSilent(t *testing.T) {
	f := newLifecycleFixture()
	f.knownUser("alice", "")
	alice := &stubObserver{}
	f.registry.Register("alice", alice)

	f.groupRepo.On("CreateGroup", mock.Anything, "team", "", "alice").
		Return(models.Group{Name: "team", Creator: "alice"}, nil).Once()

	ctx := context.Background()
	_, err := f.lifecycle.CreateGroup(ctx, "team", "", "alice")
	require.NoError(t, err)

	require.NoError(t, f.lifecycle.Leave(ctx, "team", "stranger"))

	require.Empty(t, alice.byType(models.EventUserLeft))
	f.groupRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
	f.exporter.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLeaveByNonMemberOfEmptyGroupDoesNotStop(t *testing.T) {
	f := newLifecycleFixture()
	watcher := &stubObserver{}
	f.registry.Register("watcher", watcher)

	f.groupRepo.On("Get", mock.Anything, "team").Return(models.Group{Name: "team", Creator: "alice"}, nil).Once()
	f.groupRepo.On("Members", mock.Anything, "team").Return([]string{}, nil).Once()

	require.NoError(t, f.lifecycle.Leave(context.Background(), "team", "stranger"))

	require.Empty(t, watcher.byType(models.EventChatStopped))
	f.exporter.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.transcriptRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatorCannotLeave(t *testing.T) {
	f := newLifecycleFixture()
	f.knownUser("alice", "")

	f.groupRepo.On("CreateGroup", mock.Anything, "team", "", "alice").
		Return(models.Group{Name: "team", Creator: "alice"}, nil).Once()

	ctx := context.Background()
	_, err := f.lifecycle.CreateGroup(ctx, "team", "", "alice")
	require.NoError(t, err)

	err = f.lifecycle.Leave(ctx, "team", "alice")
	require.ErrorIs(t, err, ErrForbidden)

	member, err := f.membership.IsMember(ctx, "team", "alice")
	require.NoError(t, err)
	require.True(t, member)
}

func TestLastLeaveStopsChatAndExportsTranscript(t *testing.T) {
	f := newLifecycleFixture()
	f.knownUser("bob", "")
	watcher := &stubObserver{}
	f.registry.Register("watcher", watcher)

	// creator already removed out-of-band, bob is the sole member
	f.groupRepo.On("Get", mock.Anything, "team").Return(models.Group{Name: "team", Creator: "alice"}, nil).Once()
	f.groupRepo.On("Members", mock.Anything, "team").Return([]string{"bob"}, nil).Once()
	f.groupRepo.On("RemoveMember", mock.Anything, "team", "bob").Return(nil).Once()

	history := []models.Message{
		groupMsg(1, "alice", "team", "Alice [alice]: first"),
		groupMsg(2, "bob", "team", "bob [bob]: second"),
	}
	f.messageRepo.On("ListGroupMessages", mock.Anything, "team").Return(history, nil).Once()
	f.exporter.On("Export", "team", mock.Anything, history, mock.Anything).Return("logs/team_1.txt", nil).Once()
	f.transcriptRepo.On("Record", mock.Anything, "team", mock.Anything, "logs/team_1.txt", mock.Anything).
		Return(models.Transcript{ID: 1, Location: "logs/team_1.txt"}, nil).Once()

	require.NoError(t, f.lifecycle.Leave(context.Background(), "team", "bob"))

	stopped := watcher.byType(models.EventChatStopped)
	require.Len(t, stopped, 1)
	require.Equal(t, "team", stopped[0].GroupName)
	f.exporter.AssertExpectations(t)
	f.transcriptRepo.AssertExpectations(t)
}

func TestExportFailureDoesNotBlockStop(t *testing.T) {
	f := newLifecycleFixture()
	f.knownUser("bob", "")
	watcher := &stubObserver{}
	f.registry.Register("watcher", watcher)

	f.groupRepo.On("Get", mock.Anything, "team").Return(models.Group{Name: "team", Creator: "alice"}, nil).Once()
	f.groupRepo.On("Members", mock.Anything, "team").Return([]string{"bob"}, nil).Once()
	f.groupRepo.On("RemoveMember", mock.Anything, "team", "bob").Return(nil).Once()
	f.messageRepo.On("ListGroupMessages", mock.Anything, "team").Return([]models.Message{}, nil).Once()
	f.exporter.On("Export", "team", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("disk full")).Once()

	require.NoError(t, f.lifecycle.Leave(context.Background(), "team", "bob"))

	require.Len(t, watcher.byType(models.EventChatStopped), 1)
	f.transcriptRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// End-to-end walk through the broker surface: create, join, message, leave.
func TestGroupChatScenario(t *testing.T) {
	f := newLifecycleFixture()
	f.knownUser("alice", "Alice")
	f.knownUser("bob", "")
	alice := &stubObserver{}
	bob := &stubObserver{}
	f.registry.Register("alice", alice)
	f.registry.Register("bob", bob)

	f.groupRepo.On("CreateGroup", mock.Anything, "team", "", "alice").
		Return(models.Group{Name: "team", Creator: "alice"}, nil).Once()
	f.groupRepo.On("AddMember", mock.Anything, "team", "bob").Return(nil).Once()
	f.groupRepo.On("RemoveMember", mock.Anything, "team", "bob").Return(nil).Once()
	f.messageRepo.On("CreateGroupMessage", mock.Anything, "alice", "team", "Alice [alice]: hello").
		Return(groupMsg(1, "alice", "team", "Alice [alice]: hello"), nil).Once()

	ctx := context.Background()
	_, err := f.lifecycle.CreateGroup(ctx, "team", "", "alice")
	require.NoError(t, err)
	require.NoError(t, f.lifecycle.Join(ctx, "team", "bob"))

	_, err = f.router.SendGroup(ctx, "alice", "team", "hello")
	require.NoError(t, err)

	received := bob.byType(models.EventNewMessage)
	require.Len(t, received, 1)
	require.Equal(t, "alice", received[0].Message.Sender)
	require.True(t, strings.Contains(received[0].Message.Content, "hello"))

	// bob leaves: alice hears it, no stop since the creator remains
	require.NoError(t, f.lifecycle.Leave(ctx, "team", "bob"))
	left := alice.byType(models.EventUserLeft)
	require.Len(t, left, 1)
	require.Equal(t, "bob", left[0].User)
	require.Empty(t, alice.byType(models.EventChatStopped))

	// alice is the creator: leaving is rejected and membership is intact
	require.ErrorIs(t, f.lifecycle.Leave(ctx, "team", "alice"), ErrForbidden)
	member, err := f.membership.IsMember(ctx, "team", "alice")
	require.NoError(t, err)
	require.True(t, member)
}
