package handler

import (
	"context"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleNavigate handles menu navigation buttons; the callback payload
// carries the target menu name.
func (h *Handler) handleNavigate(c tele.Context) error {
	userID := c.Sender().ID
	target := cleanCallbackData(c.Data())

	return h.deliver(c, h.sessions.Navigate(context.Background(), userID, target))
}

// handleAskAI handles the "ask the neural net" button
func (h *Handler) handleAskAI(c tele.Context) error {
	userID := c.Sender().ID

	return h.deliver(c, h.sessions.RequestQuestion(context.Background(), userID))
}

// handleCheckSub handles the "I subscribed" button
func (h *Handler) handleCheckSub(c tele.Context) error {
	userID := c.Sender().ID

	return h.deliver(c, h.sessions.ConfirmSubscription(context.Background(), userID))
}

// handleCallback catches callbacks that did not match a registered
// button, including ones from keyboards sent before a restart.
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	data := cleanCallbackData(callback.Data)

	// Old keyboards may deliver the raw "unique|payload" form.
	unique := callback.Unique
	if unique == "" {
		if i := strings.IndexByte(data, '|'); i >= 0 {
			unique, data = data[:i], data[i+1:]
		} else {
			unique, data = data, ""
		}
	}

	switch unique {
	case btnNav.Unique:
		return h.deliver(c, h.sessions.Navigate(context.Background(), c.Sender().ID, data))
	case btnAskAI.Unique:
		return h.handleAskAI(c)
	case btnCheckSub.Unique:
		return h.handleCheckSub(c)
	}

	h.logger.Warn("Unhandled callback",
		zap.Int64("user_id", c.Sender().ID),
		zap.String("unique", unique),
		zap.String("data", data),
	)
	return c.Respond()
}
