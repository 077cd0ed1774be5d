package handler

import (
	"context"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleStart handles /start and /menu commands
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User opened main menu",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	return h.deliver(c, h.sessions.Start(context.Background(), userID))
}

// handleText routes free-text messages into the state machine
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := c.Text()

	return h.deliver(c, h.sessions.SubmitText(context.Background(), userID, text))
}
