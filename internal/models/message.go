package models

import "time"

// Message is an immutable chat message. Exactly one of Receiver and GroupName
// is set: a direct message carries a receiver, a group message a group name.
type Message struct {
	ID        int64     `db:"id" json:"id"`
	Sender    string    `db:"sender" json:"sender"`
	Receiver  *string   `db:"receiver" json:"receiver,omitempty"`
	GroupName *string   `db:"group_name" json:"group_name,omitempty"`
	Content   string    `db:"content" json:"content"`
	SentTime  time.Time `db:"sent_time" json:"sent_time"`
}
