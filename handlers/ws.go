package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"

	"github.com/pocketpilot/pocketpilot-api/middleware"
	"github.com/pocketpilot/pocketpilot-api/utils"
)

const wsUserKey = "user_id"

type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 4 * 1024

	// Keep-Alive Configuration (Critical for cloud hosting)
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		utils.LogWebSocket("Connected", sessionUser(s))
	})

	m.HandleDisconnect(func(s *melody.Session) {
		utils.LogWebSocket("Disconnected", sessionUser(s))
	})

	m.HandleMessage(func(s *melody.Session, msg []byte) {
		if string(msg) == "ping" {
			_ = s.Write([]byte(`{"type":"pong"}`))
		}
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket Error: %v", err)
	})

	return &WSHandler{M: m}
}

func sessionUser(s *melody.Session) string {
	v, _ := s.Get(wsUserKey)
	id, _ := v.(string)
	return id
}

// HandleWS upgrades an authenticated request. Sessions are keyed by user so
// events only reach their owner.
func (h *WSHandler) HandleWS(c *gin.Context) {
	keys := map[string]interface{}{wsUserKey: middleware.GetUserID(c)}
	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		log.Printf("❌ Failed to upgrade websocket: %v", err)
	}
}

// NotifyUser sends {"type": eventType, ...data} to every open session of the user.
func (h *WSHandler) NotifyUser(userID string, eventType string, data map[string]interface{}) {
	payload := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload["type"] = eventType

	msg, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️ Error encoding %s event: %v", eventType, err)
		return
	}

	err = h.M.BroadcastFilter(msg, func(q *melody.Session) bool {
		return sessionUser(q) == userID
	})
	if err != nil {
		log.Printf("⚠️ Error broadcasting %s to user %s: %v", eventType, utils.MaskID(userID), err)
	}
}

// Close disconnects every client.
func (h *WSHandler) Close() error {
	return h.M.Close()
}
