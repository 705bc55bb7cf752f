package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"amoria/internal/domain"
	"amoria/internal/service"
)

func ptr[T any](v T) *T { return &v }

func locatedProfile(userID int64, lat, lon float64) *domain.Profile {
	return &domain.Profile{
		UserID:    userID,
		Latitude:  ptr(lat),
		Longitude: ptr(lon),
	}
}

func TestNearby(t *testing.T) {
	ctx := context.Background()

	t.Run("FiltersByRadiusAndSorts", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		blocks := new(MockBlockRepo)
		svc := service.NewDiscoveryService(profiles, blocks)

		me := locatedProfile(1, 48.8566, 2.3522) // Paris
		me.MinAge, me.MaxAge, me.MaxDistanceKM = 20, 35, 50
		me.PreferredGenders = []string{"female"}

		versailles := locatedProfile(2, 48.8049, 2.1204) // ~18 km
		saintDenis := locatedProfile(3, 48.9362, 2.3574) // ~9 km
		lyon := locatedProfile(4, 45.7640, 4.8357)       // ~390 km, outside radius

		profiles.On("GetByUserID", mock.Anything, int64(1)).Return(me, nil)
		blocks.On("ListBlockedUserIDs", mock.Anything, int64(1)).Return([]int64{5}, nil)
		profiles.On("ListDiscoverable", mock.Anything, []int64{5, 1}, 20, 35, []string{"female"}).
			Return([]*domain.Profile{versailles, saintDenis, lyon}, nil)

		got, err := svc.Nearby(ctx, 1, service.NearbyQuery{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		// Closest first.
		assert.Equal(t, int64(3), got[0].Profile.UserID)
		assert.Equal(t, int64(2), got[1].Profile.UserID)
		assert.Less(t, got[0].DistanceKM, got[1].DistanceKM)
		assert.InDelta(t, 9, got[0].DistanceKM, 2)
		assert.InDelta(t, 18, got[1].DistanceKM, 3)
	})

	t.Run("NoOwnLocation", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		svc := service.NewDiscoveryService(profiles, new(MockBlockRepo))

		profiles.On("GetByUserID", mock.Anything, int64(1)).Return(&domain.Profile{UserID: 1}, nil)

		_, err := svc.Nearby(ctx, 1, service.NearbyQuery{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("OffsetBeyondResults", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		blocks := new(MockBlockRepo)
		svc := service.NewDiscoveryService(profiles, blocks)

		me := locatedProfile(1, 48.8566, 2.3522)
		me.MinAge, me.MaxAge, me.MaxDistanceKM = 18, 100, 50

		profiles.On("GetByUserID", mock.Anything, int64(1)).Return(me, nil)
		blocks.On("ListBlockedUserIDs", mock.Anything, int64(1)).Return([]int64{}, nil)
		profiles.On("ListDiscoverable", mock.Anything, mock.Anything, 18, 100, mock.Anything).
			Return([]*domain.Profile{locatedProfile(2, 48.8049, 2.1204)}, nil)

		got, err := svc.Nearby(ctx, 1, service.NearbyQuery{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
