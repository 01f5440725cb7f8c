package models

import "time"

// EventType tags the notification variants pushed to observers.
type EventType string

const (
	EventNewMessage  EventType = "new_message"
	EventPresence    EventType = "presence"
	EventChatStarted EventType = "chat_started"
	EventUserJoined  EventType = "user_joined"
	EventUserLeft    EventType = "user_left"
	EventChatStopped EventType = "chat_stopped"
)

// Event is pushed to observers over their session. Only the fields relevant
// to the Type are populated.
type Event struct {
	Type      EventType `json:"type"`
	Message   *Message  `json:"message,omitempty"`
	User      string    `json:"user,omitempty"`
	Online    *bool     `json:"online,omitempty"`
	GroupName string    `json:"group_name,omitempty"`
	Nickname  string    `json:"nickname,omitempty"`
	Time      time.Time `json:"time,omitempty"`
}

// NewMessageEvent wraps a freshly persisted message for push delivery.
func NewMessageEvent(msg *Message) Event {
	return Event{Type: EventNewMessage, Message: msg, Time: msg.SentTime}
}

// PresenceEvent reports a user going online or offline.
func PresenceEvent(username string, online bool) Event {
	return Event{Type: EventPresence, User: username, Online: &online, Time: time.Now()}
}

// ChatStartedEvent announces a newly created group chat.
func ChatStartedEvent(groupName string, startTime time.Time) Event {
	return Event{Type: EventChatStarted, GroupName: groupName, Time: startTime}
}

// UserJoinedEvent announces a user joining a group chat.
func UserJoinedEvent(groupName, username, nickname string, joinTime time.Time) Event {
	return Event{Type: EventUserJoined, GroupName: groupName, User: username, Nickname: nickname, Time: joinTime}
}

// UserLeftEvent announces a user leaving a group chat. A direct-chat soft
// leave carries an empty group name.
func UserLeftEvent(groupName, username, nickname string, leaveTime time.Time) Event {
	return Event{Type: EventUserLeft, GroupName: groupName, User: username, Nickname: nickname, Time: leaveTime}
}

// ChatStoppedEvent announces that a group chat session ended.
func ChatStoppedEvent(groupName string, stopTime time.Time) Event {
	return Event{Type: EventChatStopped, GroupName: groupName, Time: stopTime}
}
