package handlers

import (
	"log"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/kampusgig/backend/internal/realtime"
	"github.com/kampusgig/backend/internal/utils"
)

type WSHandler struct {
	Hub       *realtime.Hub
	JWTSecret string
}

func NewWSHandler(hub *realtime.Hub, jwtSecret string) *WSHandler {
	return &WSHandler{Hub: hub, JWTSecret: jwtSecret}
}

// Updates is the /ws/updates endpoint. Auth is a token query param because
// websocket upgrades skip the cookie middleware chain.
func (h *WSHandler) Updates(c *websocket.Conn) {
	tokenStr := c.Query("token")
	claims, err := utils.ParseJWT(h.JWTSecret, tokenStr)
	if err != nil {
		_ = c.Close()
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		_ = c.Close()
		return
	}

	client := &realtime.Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Conn:   realtime.NewWebSocketConn(c),
		Send:   make(chan []byte, 64),
	}
	h.Hub.RegisterClient(client)

	// writer
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	// reader: only to detect disconnect, inbound messages are ignored
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}

	h.Hub.UnregisterClient(client)
	<-done
	if err := c.Close(); err != nil {
		log.Printf("ws close error for user %s: %v", userID, err)
	}
}
