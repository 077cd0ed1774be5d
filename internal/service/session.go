package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"offersbot/internal/domain"
	"offersbot/internal/menu"

	"go.uber.org/zap"
)

// User-facing notices. Admin-facing texts may include underlying error
// detail; these never do.
const (
	textError            = "⚠️ Произошла ошибка. Попробуйте позже."
	textMenuNotFound     = "⚠️ Раздел не найден. Нажмите /start."
	textGateUnavailable  = "⚠️ Не удалось проверить подписку. Попробуйте позже."
	textNotSubscribedYet = "❌ Вы ещё не подписались!"
	textQuotaExceeded    = "🚫 Лимит вопросов нейросети исчерпан."
	textAskPrompt        = "✍️ Введите ваш вопрос:"
	textAIFailed         = "🤖 Нейросеть сейчас недоступна. Попробуйте позже."
	textDidNotUnderstand = "🤔 Я вас не понял. Нажмите /start, чтобы открыть меню."
	textAdminsOnly       = "🚫 Команда доступна только администраторам."
)

// UserStore is the user persistence contract the controller needs.
type UserStore interface {
	GetOrCreate(ctx context.Context, userID int64) (*domain.User, error)
	SetSubscribed(ctx context.Context, userID int64, subscribed bool) error
	IncrementQuestions(ctx context.Context, userID int64) (int, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

// Gate checks channel membership.
type Gate interface {
	Check(userID int64) domain.MemberStatus
}

// Asker forwards a question to the completion service.
type Asker interface {
	Ask(ctx context.Context, question string, maxTokens int) (string, error)
}

// MenuRegistry resolves menu names to display content.
type MenuRegistry interface {
	Resolve(name string) (*menu.Node, error)
	Reload() error
}

// Directive is the outbound response the transport layer renders:
// message text with an optional keyboard, or an ephemeral alert.
type Directive struct {
	Text     string
	Keyboard [][]menu.Button
	Alert    string
}

// SessionConfig carries the gating and metering policy.
type SessionConfig struct {
	AdminIDs       map[int64]struct{}
	MaxQuestions   int
	UserMaxTokens  int
	AdminMaxTokens int
	AskTimeout     time.Duration
}

// SessionController is the per-user conversation state machine. It
// resolves inbound events into menu transitions, enforces the
// subscription and quota gates in front of the AI feature, and emits
// outbound directives. Component errors are converted to user notices
// here; nothing propagates to the event loop.
type SessionController struct {
	users  UserStore
	gate   Gate
	ai     Asker
	menus  MenuRegistry
	cfg    SessionConfig
	logger *zap.Logger

	stateMux sync.RWMutex
	states   map[int64]domain.State

	// Per-user locks serialize events for one user so a slow AI call
	// cannot interleave with a menu press from the same chat.
	locksMux sync.Mutex
	locks    map[int64]*sync.Mutex
}

// NewSessionController creates the conversation controller.
func NewSessionController(
	users UserStore,
	gate Gate,
	ai Asker,
	menus MenuRegistry,
	cfg SessionConfig,
	logger *zap.Logger,
) *SessionController {
	return &SessionController{
		users:  users,
		gate:   gate,
		ai:     ai,
		menus:  menus,
		cfg:    cfg,
		logger: logger,
		states: make(map[int64]domain.State),
		locks:  make(map[int64]*sync.Mutex),
	}
}

// Role classifies the user against the configured admin set.
func (c *SessionController) Role(userID int64) domain.Role {
	if _, ok := c.cfg.AdminIDs[userID]; ok {
		return domain.RoleAdmin
	}
	return domain.RoleRegular
}

// State returns the user's current conversation state.
func (c *SessionController) State(userID int64) domain.State {
	c.stateMux.RLock()
	defer c.stateMux.RUnlock()

	if s, ok := c.states[userID]; ok {
		return s
	}
	return domain.StateIdle
}

func (c *SessionController) setState(userID int64, s domain.State) {
	c.stateMux.Lock()
	c.states[userID] = s
	c.stateMux.Unlock()
}

func (c *SessionController) userLock(userID int64) *sync.Mutex {
	c.locksMux.Lock()
	defer c.locksMux.Unlock()

	lock, ok := c.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[userID] = lock
	}
	return lock
}

// Start handles the start/menu command: register the user and show the
// main menu. State stays (or becomes) Idle.
func (c *SessionController) Start(ctx context.Context, userID int64) Directive {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := c.users.GetOrCreate(ctx, userID); err != nil {
		c.logger.Error("Failed to get or create user",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return Directive{Text: textError}
	}

	c.setState(userID, domain.StateIdle)
	return c.menuDirective(userID, menu.MainMenu)
}

// Navigate handles a navigation button press. An unknown target is
// logged and answered with a generic notice; it never changes state
// beyond resetting any pending question.
func (c *SessionController) Navigate(ctx context.Context, userID int64, name string) Directive {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	// Navigating away cancels a pending question prompt.
	c.setState(userID, domain.StateIdle)
	return c.menuDirective(userID, name)
}

func (c *SessionController) menuDirective(userID int64, name string) Directive {
	node, err := c.menus.Resolve(name)
	if err != nil {
		c.logger.Warn("Menu lookup failed",
			zap.Int64("user_id", userID),
			zap.String("menu", name),
			zap.Error(err),
		)
		return Directive{Alert: textMenuNotFound}
	}
	return Directive{Text: node.Text, Keyboard: node.Rows}
}

// RequestQuestion handles the "ask AI" button: subscription gate (skipped
// for admins), then quota, then the question prompt. Only a fully passed
// gate moves the session to AwaitingQuestion.
func (c *SessionController) RequestQuestion(ctx context.Context, userID int64) Directive {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	u, err := c.users.GetOrCreate(ctx, userID)
	if err != nil {
		c.logger.Error("Failed to get or create user",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return Directive{Text: textError}
	}

	if c.Role(userID) == domain.RoleRegular {
		switch c.gate.Check(userID) {
		case domain.StatusSubscribed:
			if !u.Subscribed {
				if err := c.users.SetSubscribed(ctx, userID, true); err != nil {
					c.logger.Error("Failed to persist subscription",
						zap.Int64("user_id", userID),
						zap.Error(err),
					)
					return Directive{Text: textError}
				}
			}
		case domain.StatusNotSubscribed:
			return c.menuDirective(userID, menu.SubscribeMenu)
		default:
			// Unknown means we could not verify; deny, never grant.
			return Directive{Alert: textGateUnavailable}
		}

		if u.QuestionsAsked >= c.cfg.MaxQuestions {
			c.logger.Info("Question quota exhausted",
				zap.Int64("user_id", userID),
				zap.Int("questions_asked", u.QuestionsAsked),
			)
			return Directive{Text: textQuotaExceeded, Keyboard: backRow()}
		}
	}

	c.setState(userID, domain.StateAwaitingQuestion)
	return Directive{Text: textAskPrompt, Keyboard: backRow()}
}

// ConfirmSubscription handles the "I subscribed" button: re-check the
// gate and, on success, persist the flag and show the main menu.
func (c *SessionController) ConfirmSubscription(ctx context.Context, userID int64) Directive {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	switch c.gate.Check(userID) {
	case domain.StatusSubscribed:
		if err := c.users.SetSubscribed(ctx, userID, true); err != nil {
			c.logger.Error("Failed to persist subscription",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return Directive{Text: textError}
		}
		c.setState(userID, domain.StateIdle)
		return c.menuDirective(userID, menu.MainMenu)
	case domain.StatusNotSubscribed:
		return Directive{Alert: textNotSubscribedYet}
	default:
		return Directive{Alert: textGateUnavailable}
	}
}

// SubmitText handles a free-text message. In AwaitingQuestion it is
// forwarded to the completion service with a role-based token budget;
// the state returns to Idle whether the call succeeds, fails or times
// out. In any other state the message is not understood.
func (c *SessionController) SubmitText(ctx context.Context, userID int64, text string) Directive {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if c.State(userID) != domain.StateAwaitingQuestion {
		return Directive{Text: textDidNotUnderstand}
	}

	// Never leave the session stuck awaiting a question.
	defer c.setState(userID, domain.StateIdle)

	role := c.Role(userID)
	budget := c.cfg.UserMaxTokens
	if role == domain.RoleAdmin {
		budget = c.cfg.AdminMaxTokens
	}

	askCtx, cancel := context.WithTimeout(ctx, c.cfg.AskTimeout)
	defer cancel()

	answer, err := c.ai.Ask(askCtx, text, budget)
	if err != nil {
		c.logger.Warn("Completion request failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return Directive{Text: textAIFailed, Keyboard: backRow()}
	}

	// Admin questions are not metered.
	if role == domain.RoleRegular {
		if _, err := c.users.IncrementQuestions(ctx, userID); err != nil {
			c.logger.Error("Failed to increment question counter",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return Directive{Text: textError}
		}
	}

	return Directive{Text: answer, Keyboard: backRow()}
}

// Stats reports user totals to admins.
func (c *SessionController) Stats(ctx context.Context, userID int64) Directive {
	if c.Role(userID) != domain.RoleAdmin {
		return Directive{Text: textAdminsOnly}
	}

	stats, err := c.users.Stats(ctx)
	if err != nil {
		// Admins see the underlying error.
		return Directive{Text: fmt.Sprintf("⚠️ Не удалось получить статистику: %v", err)}
	}

	return Directive{Text: fmt.Sprintf(
		"📊 Статистика\n\nВсего пользователей: %d\nПодписаны на канал: %d",
		stats.TotalUsers, stats.SubscribedUsers,
	)}
}

// ReloadMenus re-reads the menu graph for admins. A failed reload keeps
// the previous graph and reports the validation error.
func (c *SessionController) ReloadMenus(userID int64) Directive {
	if c.Role(userID) != domain.RoleAdmin {
		return Directive{Text: textAdminsOnly}
	}

	if err := c.menus.Reload(); err != nil {
		c.logger.Error("Menu reload failed", zap.Error(err))
		return Directive{Text: fmt.Sprintf("⚠️ Ошибка перезагрузки меню: %v", err)}
	}

	c.logger.Info("Menu graph reloaded", zap.Int64("admin_id", userID))
	return Directive{Text: "✅ Конфигурация меню перезагружена"}
}

func backRow() [][]menu.Button {
	return [][]menu.Button{{{Label: "🔙 Назад", Target: menu.MainMenu}}}
}
