package service

import (
	"context"
	"fmt"
	"time"

	"amoria/internal/domain"
)

// MatchService creates and lists matches between users.
type MatchService struct {
	matches  domain.MatchRepository
	blocks   domain.BlockRepository
	users    domain.UserRepository
	profiles domain.ProfileRepository
}

func NewMatchService(
	matches domain.MatchRepository,
	blocks domain.BlockRepository,
	users domain.UserRepository,
	profiles domain.ProfileRepository,
) *MatchService {
	return &MatchService{
		matches:  matches,
		blocks:   blocks,
		users:    users,
		profiles: profiles,
	}
}

func (s *MatchService) Create(ctx context.Context, initiatorID, receiverID int64) (*domain.Match, error) {
	if receiverID <= 0 || initiatorID == receiverID {
		return nil, domain.ErrInvalidInput
	}

	target, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("get target: %w", err)
	}
	if target == nil || target.Status != domain.StatusActive {
		return nil, domain.ErrNotFound
	}

	blocked, err := s.blocks.Exists(ctx, initiatorID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("check block: %w", err)
	}
	if blocked {
		return nil, domain.ErrBlocked
	}

	exists, err := s.matches.ExistsForPair(ctx, initiatorID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("check match: %w", err)
	}
	if exists {
		return nil, domain.ErrConflict
	}

	match := &domain.Match{
		InitiatorID: initiatorID,
		ReceiverID:  receiverID,
	}
	if err := s.matches.Create(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

// MatchView pairs a match with the other party's profile.
type MatchView struct {
	MatchID   int64           `json:"match_id"`
	Partner   *domain.Profile `json:"partner"`
	MatchedAt time.Time       `json:"matched_at"`
}

func (s *MatchService) List(ctx context.Context, userID int64) ([]*MatchView, error) {
	matches, err := s.matches.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*MatchView, 0, len(matches))
	for _, m := range matches {
		partnerID := m.InitiatorID
		if partnerID == userID {
			partnerID = m.ReceiverID
		}
		profile, err := s.profiles.GetByUserID(ctx, partnerID)
		if err != nil {
			return nil, fmt.Errorf("get partner profile: %w", err)
		}
		if profile == nil {
			continue
		}
		views = append(views, &MatchView{
			MatchID:   m.ID,
			Partner:   profile,
			MatchedAt: m.CreatedAt,
		})
	}
	return views, nil
}
