package httpserver

import (
	"encoding/json"
	"net/http"

	"amoria/internal/service"
)

type profileUpdateRequest struct {
	DisplayName      *string  `json:"display_name"`
	Bio              *string  `json:"bio"`
	Age              *int     `json:"age"`
	Gender           *string  `json:"gender"`
	Interests        []string `json:"interests"`
	Photos           []string `json:"photos"`
	PreferredGenders []string `json:"preferred_genders"`
	MinAge           *int     `json:"min_age"`
	MaxAge           *int     `json:"max_age"`
	MaxDistanceKM    *float64 `json:"max_distance_km"`
}

type locationUpdateRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func handleGetProfile(profileSvc *service.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		profile, err := profileSvc.GetOwn(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func handleUpdateProfile(profileSvc *service.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		var req profileUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		profile, err := profileSvc.Update(r.Context(), user.ID, service.ProfileUpdateInput{
			DisplayName:      req.DisplayName,
			Bio:              req.Bio,
			Age:              req.Age,
			Gender:           req.Gender,
			Interests:        req.Interests,
			Photos:           req.Photos,
			PreferredGenders: req.PreferredGenders,
			MinAge:           req.MinAge,
			MaxAge:           req.MaxAge,
			MaxDistanceKM:    req.MaxDistanceKM,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func handleUpdateLocation(profileSvc *service.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		var req locationUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		profile, err := profileSvc.UpdateLocation(r.Context(), user.ID, req.Latitude, req.Longitude)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}
