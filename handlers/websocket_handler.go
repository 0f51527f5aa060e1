package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/tennisclub/league-system/brackets"
	"github.com/tennisclub/league-system/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin.
		return true
	},
}

type WebSocketHandler struct {
	hub           *brackets.Hub
	leagueService services.LeagueService
}

func NewWebSocketHandler(hub *brackets.Hub, leagueService services.LeagueService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		leagueService: leagueService,
	}
}

// ServeWs подключает клиента к фиду событий сетки конкретной лиги.
// Клиент подключается к /ws/leagues/{leagueID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	if leagueID == "" {
		http.Error(w, "Missing leagueID", http.StatusBadRequest)
		return
	}

	if _, err := h.leagueService.GetByID(r.Context(), leagueID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту.
		log.Error("failed to upgrade websocket connection", "league_id", leagueID, "error", err)
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: leagueID,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	log.Debug("websocket client connected", "league_id", leagueID)
}
