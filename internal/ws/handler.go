package ws

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"amoria/internal/domain"
	"amoria/internal/security"
)

type wsAuthError struct {
	status int
	msg    string
}

func (e wsAuthError) Error() string {
	return e.msg
}

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		// Native mobile and other non-browser clients send no Origin.
		// Cross-site protection only has to reject a browser origin that
		// is not on the allow-list.
		if origin == "" {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

func extractTokenFromWSRequest(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		token := strings.TrimSpace(authHeader[len("Bearer "):])
		if token != "" {
			return token, nil
		}
	}

	protocolHeader := r.Header.Get("Sec-WebSocket-Protocol")
	if protocolHeader != "" {
		parts := strings.Split(protocolHeader, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && strings.EqualFold(parts[0], "bearer") {
			token := parts[1]
			if token != "" {
				return token, nil
			}
		}
	}

	return "", wsAuthError{status: http.StatusUnauthorized, msg: "missing bearer token"}
}

// MakeHandler returns the HTTP handler for the /ws endpoint.
// Authenticates via bearer token (Authorization header or
// Sec-WebSocket-Protocol) before any traffic is accepted, binds the
// verified identity to the connection for its lifetime, then dispatches:
//   - send      -> gate, persist, push to receiver, echo to sender
//   - typing    -> gated ephemeral relay to the target
//   - mark_seen -> idempotent seen transition + notify original sender
func MakeHandler(
	hub *Hub,
	dispatcher *Dispatcher,
	tokens *security.TokenService,
	users domain.UserRepository,
	allowedOrigins []string,
	log *slog.Logger,
) http.HandlerFunc {
	checkOrigin := makeCheckOrigin(allowedOrigins)
	upgrader := websocket.Upgrader{
		CheckOrigin: checkOrigin,
		Subprotocols: []string{
			"bearer",
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !checkOrigin(r) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}

		tokenStr, err := extractTokenFromWSRequest(r)
		if err != nil {
			if authErr, ok := err.(wsAuthError); ok {
				http.Error(w, authErr.msg, authErr.status)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		userID, err := tokens.Parse(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		user, err := users.GetByID(ctx, userID)
		if err != nil {
			http.Error(w, "user lookup failed", http.StatusInternalServerError)
			return
		}
		if user == nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if user.Status != domain.StatusActive {
			http.Error(w, "account is not active", http.StatusForbidden)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		client := NewClient(user.ID, conn)
		// A reconnect supersedes any previous connection for the user.
		if prev := hub.Register(user.ID, client); prev != nil {
			_ = prev.Close()
		}
		defer func() {
			hub.Unregister(user.ID, client)
			_ = client.Close()
		}()

		if err := users.TouchLastActive(ctx, user.ID); err != nil {
			log.Warn("touch last active", "user_id", user.ID, "error", err)
		}
		log.Debug("connection opened", "user_id", user.ID)

		for {
			var payload map[string]any
			if err := conn.ReadJSON(&payload); err != nil {
				break
			}
			opType, _ := payload["type"].(string)
			switch opType {

			case "send":
				targetIDf, _ := payload["target_id"].(float64)
				body, _ := payload["body"].(string)
				dispatcher.Send(ctx, client, int64(targetIDf), body)

			case "typing":
				targetIDf, _ := payload["target_id"].(float64)
				isTyping, _ := payload["is_typing"].(bool)
				dispatcher.Typing(ctx, client, int64(targetIDf), isTyping)

			case "mark_seen":
				msgIDf, _ := payload["message_id"].(float64)
				dispatcher.MarkSeen(ctx, client, int64(msgIDf))

			default:
				log.Debug("unknown op", "type", opType, "user_id", user.ID)
			}
		}
		log.Debug("connection closed", "user_id", user.ID)
	}
}
