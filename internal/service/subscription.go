package service

import (
	"offersbot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// MemberClient is the slice of the Telegram API the gate needs.
// *tele.Bot satisfies it.
type MemberClient interface {
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
}

// channel lets a "@handle" string act as a telebot recipient.
type channel string

func (c channel) Recipient() string { return string(c) }

// userRecipient wraps a bare user id for membership queries.
type userRecipient int64

func (u userRecipient) Recipient() string { return tele.ChatID(u).Recipient() }

// SubscriptionGate checks channel membership before gated features are
// granted.
type SubscriptionGate struct {
	client    MemberClient
	channelID string
	logger    *zap.Logger
}

// NewSubscriptionGate creates a new subscription gate for the given
// channel identifier ("@handle").
func NewSubscriptionGate(client MemberClient, channelID string, logger *zap.Logger) *SubscriptionGate {
	return &SubscriptionGate{
		client:    client,
		channelID: channelID,
		logger:    logger,
	}
}

// Check classifies the user's channel membership. A transport failure
// yields StatusUnknown, never an error: callers must treat Unknown as
// "cannot grant", not as Subscribed.
func (g *SubscriptionGate) Check(userID int64) domain.MemberStatus {
	member, err := g.client.ChatMemberOf(channel(g.channelID), userRecipient(userID))
	if err != nil {
		g.logger.Warn("Membership check failed",
			zap.Int64("user_id", userID),
			zap.String("channel", g.channelID),
			zap.Error(err),
		)
		return domain.StatusUnknown
	}

	switch member.Role {
	case tele.Member, tele.Administrator, tele.Creator:
		return domain.StatusSubscribed
	default:
		return domain.StatusNotSubscribed
	}
}
