package service

import (
	"errors"
	"testing"

	"offersbot/internal/domain"
	"offersbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v3"
)

type fakeMemberClient struct {
	role tele.MemberStatus
	err  error

	gotChat string
	gotUser string
}

func (f *fakeMemberClient) ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error) {
	f.gotChat = chat.Recipient()
	f.gotUser = user.Recipient()
	if f.err != nil {
		return nil, f.err
	}
	return &tele.ChatMember{Role: f.role}, nil
}

func TestSubscriptionGate_Check(t *testing.T) {
	tests := []struct {
		name     string
		role     tele.MemberStatus
		err      error
		expected domain.MemberStatus
	}{
		{name: "member", role: tele.Member, expected: domain.StatusSubscribed},
		{name: "administrator", role: tele.Administrator, expected: domain.StatusSubscribed},
		{name: "creator", role: tele.Creator, expected: domain.StatusSubscribed},
		{name: "left", role: tele.Left, expected: domain.StatusNotSubscribed},
		{name: "kicked", role: tele.Kicked, expected: domain.StatusNotSubscribed},
		{name: "restricted", role: tele.Restricted, expected: domain.StatusNotSubscribed},
		{
			name:     "transport failure yields unknown, not an error",
			err:      errors.New("telegram: Bad Gateway (502)"),
			expected: domain.StatusUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeMemberClient{role: tt.role, err: tt.err}
			gate := NewSubscriptionGate(client, "@my_channel", testutil.NewTestLogger())

			status := gate.Check(42)

			assert.Equal(t, tt.expected, status)
			assert.Equal(t, "@my_channel", client.gotChat)
			assert.Equal(t, "42", client.gotUser)
		})
	}
}
