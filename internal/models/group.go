package models

import "time"

// Group represents a chat group. The creator is always a member; the row
// outlives the live chat session so history stays queryable after a stop.
type Group struct {
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Creator     string    `db:"creator" json:"creator"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Transcript records where an exported chat log ended up.
type Transcript struct {
	ID        int64     `db:"id" json:"id"`
	GroupName string    `db:"group_name" json:"group_name"`
	SessionID string    `db:"session_id" json:"session_id"`
	Location  string    `db:"location" json:"location"`
	StoppedAt time.Time `db:"stopped_at" json:"stopped_at"`
}
