package handler

import (
	"strings"
	"unicode"

	"offersbot/internal/menu"
	"offersbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Handler wires Telegram updates to the session controller and renders
// its directives back into messages and inline keyboards.
type Handler struct {
	bot      *tele.Bot
	sessions *service.SessionController
	logger   *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(bot *tele.Bot, sessions *service.SessionController, logger *zap.Logger) *Handler {
	return &Handler{
		bot:      bot,
		sessions: sessions,
		logger:   logger,
	}
}

// Inline button identities. Payloads (menu names) travel in the
// callback data.
var (
	btnNav      = tele.Btn{Unique: "nav"}
	btnAskAI    = tele.Btn{Unique: "ask_ai"}
	btnCheckSub = tele.Btn{Unique: "check_sub"}
)

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/menu", h.handleStart)
	h.bot.Handle("/stats", h.handleStats)
	h.bot.Handle("/reload", h.handleReload)

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnNav, h.handleNavigate)
	h.bot.Handle(&btnAskAI, h.handleAskAI)
	h.bot.Handle(&btnCheckSub, h.handleCheckSub)

	// Generic callback handler for anything else
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// deliver renders a directive: an alert answers the callback inline,
// anything else edits the tapped message (falling back to a new one).
// Transport failures are logged and swallowed so they never corrupt
// session state or crash the event loop.
func (h *Handler) deliver(c tele.Context, d service.Directive) error {
	userID := c.Sender().ID

	if d.Alert != "" {
		if c.Callback() != nil {
			if err := c.Respond(&tele.CallbackResponse{Text: d.Alert, ShowAlert: true}); err != nil {
				h.logger.Warn("Failed to answer callback",
					zap.Int64("user_id", userID),
					zap.Error(err),
				)
			}
			return nil
		}
		return h.send(c, d.Alert, nil)
	}

	markup := markupFor(d.Keyboard)

	if c.Callback() != nil {
		// Acknowledge on every path or the client keeps its spinner
		// until Telegram times the query out.
		defer func() {
			if err := c.Respond(); err != nil {
				h.logger.Debug("Failed to acknowledge callback",
					zap.Int64("user_id", userID),
					zap.Error(err),
				)
			}
		}()

		if err := h.edit(c, d.Text, markup); err != nil {
			// Message may be gone; send a fresh one.
			return h.send(c, d.Text, markup)
		}
		return nil
	}

	return h.send(c, d.Text, markup)
}

func (h *Handler) send(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	var err error
	if markup != nil {
		err = c.Send(text, markup)
	} else {
		err = c.Send(text)
	}
	if err != nil {
		h.logger.Warn("Failed to send message",
			zap.Int64("user_id", c.Sender().ID),
			zap.Error(err),
		)
	}
	return nil
}

func (h *Handler) edit(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	var err error
	if markup != nil {
		err = c.Edit(text, markup)
	} else {
		err = c.Edit(text)
	}
	if err == nil {
		return nil
	}

	if strings.Contains(err.Error(), "message is not modified") {
		// Already showing this content; nothing to do.
		return nil
	}

	h.logger.Debug("Failed to edit message, will send new",
		zap.Int64("user_id", c.Sender().ID),
		zap.Error(err),
	)
	return err
}

// markupFor converts a menu button layout into a telebot inline keyboard
func markupFor(rows [][]menu.Button) *tele.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}

	markup := &tele.ReplyMarkup{}
	teleRows := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		btns := make([]tele.Btn, 0, len(row))
		for _, b := range row {
			switch {
			case b.URL != "":
				btns = append(btns, markup.URL(b.Label, b.URL))
			case b.Target != "":
				btns = append(btns, markup.Data(b.Label, btnNav.Unique, b.Target))
			case b.Action == menu.ActionAskAI:
				btns = append(btns, markup.Data(b.Label, btnAskAI.Unique))
			case b.Action == menu.ActionCheckSub:
				btns = append(btns, markup.Data(b.Label, btnCheckSub.Unique))
			}
		}
		teleRows = append(teleRows, markup.Row(btns...))
	}
	markup.Inline(teleRows...)
	return markup
}

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}
