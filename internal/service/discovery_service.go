package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"amoria/internal/domain"
	"amoria/internal/geo"
)

// DiscoveryService finds nearby candidates matching the caller's
// preferences, excluding blocked pairs.
type DiscoveryService struct {
	profiles domain.ProfileRepository
	blocks   domain.BlockRepository
}

func NewDiscoveryService(profiles domain.ProfileRepository, blocks domain.BlockRepository) *DiscoveryService {
	return &DiscoveryService{profiles: profiles, blocks: blocks}
}

type NearbyQuery struct {
	// Zero values fall back to the caller's stored preferences.
	RadiusKM float64
	MinAge   int
	MaxAge   int
	Limit    int
	Offset   int
}

type NearbyUser struct {
	Profile    *domain.Profile `json:"profile"`
	DistanceKM float64         `json:"distance_km"`
}

const defaultNearbyLimit = 50

func (s *DiscoveryService) Nearby(ctx context.Context, userID int64, q NearbyQuery) ([]*NearbyUser, error) {
	me, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get own profile: %w", err)
	}
	if me == nil {
		return nil, domain.ErrNotFound
	}
	if me.Latitude == nil || me.Longitude == nil {
		return nil, domain.ErrInvalidInput
	}

	if q.RadiusKM <= 0 {
		q.RadiusKM = me.MaxDistanceKM
	}
	if q.MinAge <= 0 {
		q.MinAge = me.MinAge
	}
	if q.MaxAge <= 0 {
		q.MaxAge = me.MaxAge
	}
	if q.Limit <= 0 || q.Limit > defaultNearbyLimit {
		q.Limit = defaultNearbyLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	blockedIDs, err := s.blocks.ListBlockedUserIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list blocked: %w", err)
	}
	exclude := append(blockedIDs, userID)

	candidates, err := s.profiles.ListDiscoverable(ctx, exclude, q.MinAge, q.MaxAge, me.PreferredGenders)
	if err != nil {
		return nil, err
	}

	var nearby []*NearbyUser
	for _, c := range candidates {
		d := geo.DistanceKM(*me.Latitude, *me.Longitude, *c.Latitude, *c.Longitude)
		if d > q.RadiusKM {
			continue
		}
		nearby = append(nearby, &NearbyUser{
			Profile:    c,
			DistanceKM: math.Round(d*10) / 10,
		})
	}
	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceKM < nearby[j].DistanceKM
	})

	if q.Offset >= len(nearby) {
		return []*NearbyUser{}, nil
	}
	end := q.Offset + q.Limit
	if end > len(nearby) {
		end = len(nearby)
	}
	return nearby[q.Offset:end], nil
}
