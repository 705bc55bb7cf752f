package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"amoria/internal/domain"
)

// ProfileService provides profile reads and updates. Foreign profile views
// run through the same block gate as messaging.
type ProfileService struct {
	profiles domain.ProfileRepository
	users    domain.UserRepository
	blocks   domain.BlockRepository
}

func NewProfileService(
	profiles domain.ProfileRepository,
	users domain.UserRepository,
	blocks domain.BlockRepository,
) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		users:    users,
		blocks:   blocks,
	}
}

func (s *ProfileService) GetOwn(ctx context.Context, userID int64) (*domain.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type ProfileUpdateInput struct {
	DisplayName      *string
	Bio              *string
	Age              *int
	Gender           *string
	Interests        []string
	Photos           []string
	PreferredGenders []string
	MinAge           *int
	MaxAge           *int
	MaxDistanceKM    *float64
}

func (s *ProfileService) Update(ctx context.Context, userID int64, in ProfileUpdateInput) (*domain.Profile, error) {
	p, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		p.DisplayName = name
	}
	if in.Bio != nil {
		p.Bio = *in.Bio
	}
	if in.Age != nil {
		if *in.Age < 18 || *in.Age > 100 {
			return nil, domain.ErrInvalidInput
		}
		p.Age = *in.Age
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.Interests != nil {
		p.Interests = in.Interests
	}
	if in.Photos != nil {
		p.Photos = in.Photos
	}
	if in.PreferredGenders != nil {
		p.PreferredGenders = in.PreferredGenders
	}
	if in.MinAge != nil {
		p.MinAge = *in.MinAge
	}
	if in.MaxAge != nil {
		p.MaxAge = *in.MaxAge
	}
	if p.MinAge < 18 || p.MaxAge > 100 || p.MinAge > p.MaxAge {
		return nil, domain.ErrInvalidInput
	}
	if in.MaxDistanceKM != nil {
		if *in.MaxDistanceKM < 1 || *in.MaxDistanceKM > 500 {
			return nil, domain.ErrInvalidInput
		}
		p.MaxDistanceKM = *in.MaxDistanceKM
	}

	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

func (s *ProfileService) UpdateLocation(ctx context.Context, userID int64, lat, lon float64) (*domain.Profile, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.GetOwn(ctx, userID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.profiles.SetLocation(ctx, userID, lat, lon, now); err != nil {
		return nil, err
	}
	return s.GetOwn(ctx, userID)
}

// UserView is the public shape of another user's account and profile.
type UserView struct {
	ID           int64           `json:"id"`
	LastActiveAt time.Time       `json:"last_active_at"`
	Profile      *domain.Profile `json:"profile"`
}

// GetForViewer returns a foreign profile, denying blocked pairs and hiding
// non-ACTIVE accounts behind NotFound.
func (s *ProfileService) GetForViewer(ctx context.Context, viewerID, targetID int64) (*UserView, error) {
	blocked, err := s.blocks.Exists(ctx, viewerID, targetID)
	if err != nil {
		return nil, fmt.Errorf("check block: %w", err)
	}
	if blocked {
		return nil, domain.ErrBlocked
	}

	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != domain.StatusActive {
		return nil, domain.ErrNotFound
	}
	profile, err := s.profiles.GetByUserID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrNotFound
	}
	return &UserView{
		ID:           user.ID,
		LastActiveAt: user.LastActiveAt,
		Profile:      profile,
	}, nil
}
