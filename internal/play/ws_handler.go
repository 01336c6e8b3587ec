package play

import "net/http"

// HandleWebSocket upgrades the request and plays a quiz on it.
// Route: GET /ws/quiz?name=Ada
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	name := PlayerName(r.URL.Query().Get("name"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.HandleConnection(r.Context(), conn, name)
}
