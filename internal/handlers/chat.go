package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/messages"
)

type ChatHandler struct {
	Messages *messages.Store
	Hub      *realtime.Hub
	Log      *zap.Logger
}

func NewChatHandler(store *messages.Store, hub *realtime.Hub, log *zap.Logger) *ChatHandler {
	return &ChatHandler{Messages: store, Hub: hub, Log: log}
}

func (h *ChatHandler) Routes(r fiber.Router) {
	r.Post("/jobs/:id/messages", h.SendMessage)
	r.Get("/jobs/:id/messages", h.GetMessages)
	r.Patch("/jobs/:id/messages/read", h.MarkAsRead)
	r.Get("/chats", h.GetChats)
	r.Get("/chats/unread", h.GetUnreadCounts)
}

// SendMessage posts a chat line from the caller to the other participant.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}
	jobID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var in messages.SendInput
	if err := bindBody(c, &in); err != nil {
		return err
	}

	msg, err := h.Messages.Send(c.UserContext(), callerID, jobID, in)
	if err != nil {
		return err
	}
	return created(c, msg)
}

func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}
	jobID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	list, err := h.Messages.List(c.UserContext(), callerID, jobID)
	if err != nil {
		return err
	}
	return ok(c, list)
}

func (h *ChatHandler) MarkAsRead(c *fiber.Ctx) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}
	jobID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.Messages.MarkAsRead(c.UserContext(), callerID, jobID)
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"updated": n})
}

func (h *ChatHandler) GetChats(c *fiber.Ctx) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}
	chats, err := h.Messages.UserChats(c.UserContext(), callerID)
	if err != nil {
		return err
	}
	return ok(c, chats)
}

func (h *ChatHandler) GetUnreadCounts(c *fiber.Ctx) error {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}
	counts, err := h.Messages.UnreadCounts(c.UserContext(), callerID)
	if err != nil {
		return err
	}
	var total int64
	for _, chat := range counts {
		total += chat.UnreadCount
	}
	return c.JSON(fiber.Map{"success": true, "data": counts, "total": total})
}

// Upgrade admits websocket handshakes from callers with a profile. It runs
// after JWT and ResolveCaller so the session is bound to the token's user.
func (h *ChatHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, err := middleware.CallerID(c); err != nil {
		return err
	}
	return c.Next()
}

// WebSocket streams the caller's events until the connection closes.
func (h *ChatHandler) WebSocket(c *websocket.Conn) {
	userID, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		h.Log.Warn("websocket without resolved caller")
		_ = c.Close()
		return
	}
	h.Hub.Serve(realtime.NewClient(userID, realtime.NewWebSocketConn(c)))
}
