package domain

import "time"

// Account status values. Only ACTIVE users may open a connection,
// appear in discovery, or be message targets.
const (
	StatusActive    = "ACTIVE"
	StatusSuspended = "SUSPENDED"
	StatusDeleted   = "DELETED"
)

// User represents an application account. Profile data lives separately.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	Status         string    `db:"status" json:"status"`
	IsAdmin        bool      `db:"is_admin" json:"is_admin,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	LastActiveAt   time.Time `db:"last_active_at" json:"last_active_at"`
}

// Profile holds the dating profile and discovery preferences of a user.
type Profile struct {
	UserID            int64      `db:"user_id" json:"user_id"`
	DisplayName       string     `db:"display_name" json:"display_name"`
	Bio               string     `db:"bio" json:"bio"`
	Age               int        `db:"age" json:"age"`
	Gender            string     `db:"gender" json:"gender"`
	Interests         []string   `db:"interests" json:"interests"`
	Photos            []string   `db:"photos" json:"photos"`
	Latitude          *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude         *float64   `db:"longitude" json:"longitude,omitempty"`
	LocationUpdatedAt *time.Time `db:"location_updated_at" json:"location_updated_at,omitempty"`
	PreferredGenders  []string   `db:"preferred_genders" json:"preferred_genders"`
	MinAge            int        `db:"min_age" json:"min_age"`
	MaxAge            int        `db:"max_age" json:"max_age"`
	MaxDistanceKM     float64    `db:"max_distance_km" json:"max_distance_km"`
}

// Message is a single direct message between two users.
// Body is encrypted at rest; seen never reverts once set.
type Message struct {
	ID         int64      `db:"id" json:"id"`
	SenderID   int64      `db:"sender_id" json:"sender_id"`
	ReceiverID int64      `db:"receiver_id" json:"receiver_id"`
	Body       string     `db:"body" json:"body"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	Seen       bool       `db:"seen" json:"seen"`
	SeenAt     *time.Time `db:"seen_at" json:"seen_at,omitempty"`
}

// Block records that blocker has blocked blocked. Gating is symmetric:
// a block in either direction forecloses messaging in both directions.
type Block struct {
	BlockerID int64     `db:"blocker_id" json:"blocker_id"`
	BlockedID int64     `db:"blocked_id" json:"blocked_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Match links two users. At most one match exists per unordered pair.
type Match struct {
	ID          int64     `db:"id" json:"id"`
	InitiatorID int64     `db:"initiator_id" json:"initiator_id"`
	ReceiverID  int64     `db:"receiver_id" json:"receiver_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Report is a user-submitted abuse report reviewed by admins.
type Report struct {
	ID         int64     `db:"id" json:"id"`
	ReporterID int64     `db:"reporter_id" json:"reporter_id"`
	ReportedID int64     `db:"reported_id" json:"reported_id"`
	Reason     string    `db:"reason" json:"reason"`
	Details    *string   `db:"details" json:"details,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ConversationView is the derived per-partner summary shown in the inbox.
// It is never stored; the aggregator builds it from the message table.
type ConversationView struct {
	PartnerID   int64    `json:"partner_id"`
	LastMessage *Message `json:"last_message"`
	UnreadCount int      `json:"unread_count"`
}
