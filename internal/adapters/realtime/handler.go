package realtime

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"llavedesol/internal/domain/account"
)

// PartyResolver returns the messaging party of the authenticated request.
type PartyResolver func(r *http.Request) (account.Party, bool)

// Handler upgrades messaging panels to a websocket and keeps them on the hub.
// Requests without a messaging party get 403. Cross-origin upgrades are rejected
// by the websocket library's same-origin check.
func Handler(hub *Hub, partyOf PartyResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		party, ok := partyOf(r)
		if !ok {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			slog.Warn("push_accept_failed", "error", err)
			return
		}
		defer conn.CloseNow()

		slog.Debug("push_connected", "party", string(party))
		NewClient(hub, conn, party).Run(r.Context())
	}
}
