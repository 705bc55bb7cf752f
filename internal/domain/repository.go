package domain

import (
	"context"
	"time"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, error)
	Count(ctx context.Context) (int, error)
	SetStatus(ctx context.Context, id int64, status string) error
	TouchLastActive(ctx context.Context, id int64) error
}

// ProfileRepository defines persistence operations for dating profiles.
type ProfileRepository interface {
	Create(ctx context.Context, p *Profile) error
	GetByUserID(ctx context.Context, userID int64) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	SetLocation(ctx context.Context, userID int64, lat, lon float64, at time.Time) error
	// ListDiscoverable returns profiles of ACTIVE users with a known
	// location, excluding the given IDs, filtered by age range and,
	// when non-empty, by gender.
	ListDiscoverable(ctx context.Context, excludeIDs []int64, minAge, maxAge int, genders []string) ([]*Profile, error)
}

// MessageRepository is the durable message store. Rows are append-only
// except for the seen flag, which flips to true exactly once.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id int64) (*Message, error)
	// MarkSeen flips seen to true at the given time. It reports whether
	// this call performed the transition; marking an already-seen message
	// is a successful no-op.
	MarkSeen(ctx context.Context, id int64, at time.Time) (bool, error)
	// ListBetween returns messages exchanged by the pair, newest first.
	// A zero before time means no upper bound.
	ListBetween(ctx context.Context, a, b int64, before time.Time, limit int) ([]*Message, error)
	// ListInvolving returns every message sent or received by the user,
	// newest first. Feeds the conversation aggregator.
	ListInvolving(ctx context.Context, userID int64) ([]*Message, error)
	// CountUnseenBySender returns, per sender, how many messages to the
	// receiver remain unseen. One grouped query for all partners.
	CountUnseenBySender(ctx context.Context, receiverID int64) (map[int64]int, error)
	// MarkAllSeenFrom marks every unseen message from sender to receiver.
	MarkAllSeenFrom(ctx context.Context, senderID, receiverID int64, at time.Time) error
}

// BlockRepository defines persistence operations for block records.
type BlockRepository interface {
	Create(ctx context.Context, b *Block) error
	Delete(ctx context.Context, blockerID, blockedID int64) error
	// Exists reports whether a block exists in either direction.
	Exists(ctx context.Context, a, b int64) (bool, error)
	ListForBlocker(ctx context.Context, blockerID int64) ([]*Block, error)
	// ListBlockedUserIDs returns IDs blocked by or blocking the user.
	ListBlockedUserIDs(ctx context.Context, userID int64) ([]int64, error)
}

// MatchRepository defines persistence operations for matches.
type MatchRepository interface {
	Create(ctx context.Context, m *Match) error
	ExistsForPair(ctx context.Context, a, b int64) (bool, error)
	ListForUser(ctx context.Context, userID int64) ([]*Match, error)
	DeleteForPair(ctx context.Context, a, b int64) error
}

// ReportRepository defines persistence operations for abuse reports.
type ReportRepository interface {
	Create(ctx context.Context, r *Report) error
	List(ctx context.Context, offset, limit int) ([]*Report, error)
}
