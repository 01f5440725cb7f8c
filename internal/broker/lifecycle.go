package broker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"chat-broker/internal/models"
	"chat-broker/internal/repositories"
	"chat-broker/internal/transcript"
)

// LifecycleCoordinator owns the group session state machine: created, active
// while members remain, stopped when the last one leaves. Stopping exports
// the transcript and fires the stop notification; the group row itself stays
// queryable. Only creation emits a chat-started event — refilling a stopped
// group starts a new logical session silently.
type LifecycleCoordinator struct {
	mu          sync.Mutex
	membership  *MembershipStore
	presence    *PresenceRegistry
	dispatcher  *Dispatcher
	users       repositories.UserRepository
	messages    repositories.MessageRepository
	transcripts repositories.TranscriptRepository
	exporter    transcript.Exporter
	sessions    map[string]string
}

// NewLifecycleCoordinator constructs a coordinator over the broker state and
// its storage/export collaborators.
func NewLifecycleCoordinator(
	membership *MembershipStore,
	presence *PresenceRegistry,
	dispatcher *Dispatcher,
	users repositories.UserRepository,
	messages repositories.MessageRepository,
	transcripts repositories.TranscriptRepository,
	exporter transcript.Exporter,
) *LifecycleCoordinator {
	return &LifecycleCoordinator{
		membership:  membership,
		presence:    presence,
		dispatcher:  dispatcher,
		users:       users,
		messages:    messages,
		transcripts: transcripts,
		exporter:    exporter,
		sessions:    make(map[string]string),
	}
}

// CreateGroup creates the group and announces the started chat to its
// members — at this point only the creator.
func (c *LifecycleCoordinator) CreateGroup(ctx context.Context, name, description, creator string) (models.Group, error) {
	group, err := c.membership.CreateGroup(ctx, name, description, creator)
	if err != nil {
		return models.Group{}, err
	}

	c.mu.Lock()
	c.sessions[name] = uuid.NewString()
	c.mu.Unlock()

	event := models.ChatStartedEvent(name, group.CreatedAt)
	members, err := c.membership.Members(ctx, name)
	if err != nil {
		log.Printf("members lookup after create failed group=%s: %v", name, err)
		return group, nil
	}
	for _, member := range members {
		c.dispatcher.DeliverTo(member, event)
	}
	return group, nil
}

// Join enrolls a user and tells the other members. A re-join of an existing
// member succeeds without a second announcement.
func (c *LifecycleCoordinator) Join(ctx context.Context, groupName, username string) error {
	added, err := c.membership.AddMember(ctx, groupName, username)
	if err != nil {
		return err
	}
	if !added {
		return nil
	}

	event := models.UserJoinedEvent(groupName, username, c.nickname(ctx, username), time.Now())
	members, err := c.membership.Members(ctx, groupName)
	if err != nil {
		log.Printf("members lookup after join failed group=%s: %v", groupName, err)
		return nil
	}
	for _, member := range members {
		if member == username {
			continue
		}
		c.dispatcher.DeliverTo(member, event)
	}
	return nil
}

// Leave removes a user and tells the remaining members. The departing user
// learns of the outcome from this call's return, not from the fan-out; a
// leave that removed nobody stays silent, like a re-join. When the last
// member is gone the session stops: the transcript is exported, its location
// recorded, and a chat-stopped event fired.
func (c *LifecycleCoordinator) Leave(ctx context.Context, groupName, username string) error {
	removed, empty, err := c.membership.RemoveMember(ctx, groupName, username)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}

	now := time.Now()
	event := models.UserLeftEvent(groupName, username, c.nickname(ctx, username), now)
	members, err := c.membership.Members(ctx, groupName)
	if err != nil {
		log.Printf("members lookup after leave failed group=%s: %v", groupName, err)
		members = nil
	}
	for _, member := range members {
		c.dispatcher.DeliverTo(member, event)
	}

	if empty {
		c.stop(ctx, groupName, now)
	}
	return nil
}

// stop runs the zero-members transition. Export and record are best-effort:
// a failed archive never blocks the stop notification.
func (c *LifecycleCoordinator) stop(ctx context.Context, groupName string, stoppedAt time.Time) {
	sessionID := c.rollSession(groupName)

	history, err := c.messages.ListGroupMessages(ctx, groupName)
	if err != nil {
		log.Printf("history load for transcript failed group=%s: %v", groupName, err)
	} else {
		location, err := c.exporter.Export(groupName, sessionID, history, stoppedAt)
		if err != nil {
			log.Printf("transcript export failed group=%s session=%s: %v", groupName, sessionID, err)
		} else if _, err := c.transcripts.Record(ctx, groupName, sessionID, location, stoppedAt); err != nil {
			log.Printf("transcript record failed group=%s location=%s: %v", groupName, location, err)
		}
	}

	event := models.ChatStoppedEvent(groupName, stoppedAt)
	for _, username := range c.presence.ListOnline() {
		c.dispatcher.DeliverTo(username, event)
	}
	log.Printf("chat stopped group=%s session=%s", groupName, sessionID)
}

// rollSession returns the stopping session's ID and installs a fresh one for
// the next time the group fills up again.
func (c *LifecycleCoordinator) rollSession(groupName string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	sessionID, ok := c.sessions[groupName]
	if !ok {
		sessionID = uuid.NewString()
	}
	c.sessions[groupName] = uuid.NewString()
	return sessionID
}

func (c *LifecycleCoordinator) nickname(ctx context.Context, username string) string {
	user, err := c.users.Get(ctx, username)
	if err != nil {
		return username
	}
	return user.DisplayName()
}
