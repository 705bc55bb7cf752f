package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"amoria/internal/service"
	"amoria/internal/ws"
)

type messageCreateRequest struct {
	Body string `json:"body"`
}

func handleListConversations(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		views, err := chatSvc.ListConversations(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func handleListMessages(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		partnerID, err := strconv.ParseInt(chi.URLParam(r, "partnerID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid partner id"})
			return
		}

		before := time.Now().UTC()
		if s := r.URL.Query().Get("before"); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid before timestamp"})
				return
			}
			before = t
		}
		limit := queryInt(r.URL.Query().Get("limit"))

		msgs, err := chatSvc.History(r.Context(), user.ID, partnerID, before, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

// handleCreateMessage is the REST send path. Online receivers get the same
// live push as a socket send; the sender gets the stored message back.
func handleCreateMessage(chatSvc *service.ChatService, dispatcher *ws.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		partnerID, err := strconv.ParseInt(chi.URLParam(r, "partnerID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid partner id"})
			return
		}
		var req messageCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		msg, err := chatSvc.SendMessage(r.Context(), user.ID, partnerID, req.Body)
		if err != nil {
			writeError(w, err)
			return
		}
		dispatcher.Deliver(msg)
		writeJSON(w, http.StatusCreated, msg)
	}
}

func handleMarkMessageSeen(chatSvc *service.ChatService, dispatcher *ws.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		messageID, err := strconv.ParseInt(chi.URLParam(r, "messageID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid message id"})
			return
		}

		msg, first, err := chatSvc.MarkSeen(r.Context(), user.ID, messageID)
		if err != nil {
			writeError(w, err)
			return
		}
		if first {
			dispatcher.NotifySeen(msg)
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

func handleMarkConversationSeen(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		partnerID, err := strconv.ParseInt(chi.URLParam(r, "partnerID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid partner id"})
			return
		}

		if err := chatSvc.MarkConversationSeen(r.Context(), user.ID, partnerID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
