package httpserver

import (
	"encoding/json"
	"net/http"

	"amoria/internal/service"
)

type reportCreateRequest struct {
	UserID  int64   `json:"user_id"`
	Reason  string  `json:"reason"`
	Details *string `json:"details"`
}

func handleCreateReport(reportSvc *service.ReportService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		var req reportCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		report, err := reportSvc.Create(r.Context(), user.ID, req.UserID, req.Reason, req.Details)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, report)
	}
}
