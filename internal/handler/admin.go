package handler

import (
	"context"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleStats handles the /stats admin command
func (h *Handler) handleStats(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("Stats requested", zap.Int64("user_id", userID))
	return h.deliver(c, h.sessions.Stats(context.Background(), userID))
}

// handleReload handles the /reload admin command
func (h *Handler) handleReload(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("Menu reload requested", zap.Int64("user_id", userID))
	return h.deliver(c, h.sessions.ReloadMenus(userID))
}
