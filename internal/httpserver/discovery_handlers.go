package httpserver

import (
	"net/http"
	"strconv"

	"amoria/internal/service"
)

func handleNearby(discoverySvc *service.DiscoveryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}

		q := r.URL.Query()
		query := service.NearbyQuery{
			RadiusKM: queryFloat(q.Get("radius_km")),
			MinAge:   queryInt(q.Get("min_age")),
			MaxAge:   queryInt(q.Get("max_age")),
			Limit:    queryInt(q.Get("limit")),
			Offset:   queryInt(q.Get("offset")),
		}

		nearby, err := discoverySvc.Nearby(r.Context(), user.ID, query)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nearby)
	}
}

func queryInt(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func queryFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
