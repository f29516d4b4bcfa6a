package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/logger"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/messaging"
)

type MessageHandler struct {
	Messaging *messaging.MessagingService
	Hub       *realtime.Hub
}

func NewMessageHandler(svc *messaging.MessagingService, hub *realtime.Hub) *MessageHandler {
	return &MessageHandler{Messaging: svc, Hub: hub}
}

func (h *MessageHandler) List(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	contractID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	msgs, err := h.Messaging.List(c.UserContext(), uid, contractID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, msgs)
}

type SendMessageReq struct {
	Content string `json:"content" validate:"required,max=5000"`
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	contractID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req SendMessageReq
	if handled, err := bind(c, &req); handled {
		return err
	}

	msg, err := h.Messaging.Send(c.UserContext(), uid, contractID, req.Content)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Message sent", msg)
}

// Upgrade rejects plain HTTP requests on the websocket route.
func (h *MessageHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebSocketHandler pushes hub events to one authenticated socket. The JWT
// middleware has already set userId on the upgrade request.
func (h *MessageHandler) WebSocketHandler(c *websocket.Conn) {
	userID, _ := c.Locals("userId").(string)
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		_ = c.Close()
		return
	}

	client := &realtime.Client{
		ID:     uuid.NewString(),
		UserID: userUUID,
		Conn:   realtime.NewWebSocketConn(c),
		Send:   make(chan []byte, 256),
	}
	h.Hub.RegisterClient(client)
	logger.L().Info("ws connected", zap.String("user", userID))
	defer func() {
		h.Hub.UnregisterClient(client)
		logger.L().Info("ws disconnected", zap.String("user", userID))
	}()

	go func() {
		if err := client.WritePump(); err != nil {
			logger.L().Debug("ws write", zap.String("user", userID), zap.Error(err))
			_ = client.Conn.Close()
		}
	}()

	// reads only keep the connection alive; clients send pings
	for {
		var payload map[string]any
		if err := c.ReadJSON(&payload); err != nil {
			return
		}
		if t, _ := payload["type"].(string); t == "ping" {
			h.Hub.SendToUser(userUUID, realtime.Event{Type: "pong"})
		}
	}
}
