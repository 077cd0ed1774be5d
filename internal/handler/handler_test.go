package handler

import (
	"errors"
	"testing"

	"offersbot/internal/menu"
	"offersbot/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// fakeContext covers the slice of tele.Context that deliver touches.
type fakeContext struct {
	tele.Context

	editErr  error
	edits    int
	sends    int
	responds int
	alert    *tele.CallbackResponse
}

func (f *fakeContext) Callback() *tele.Callback { return &tele.Callback{} }
func (f *fakeContext) Sender() *tele.User       { return &tele.User{ID: 42} }

func (f *fakeContext) Edit(what interface{}, opts ...interface{}) error {
	f.edits++
	return f.editErr
}

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	f.sends++
	return nil
}

func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	f.responds++
	if len(resp) > 0 {
		f.alert = resp[0]
	}
	return nil
}

func TestDeliverAcknowledgesCallback(t *testing.T) {
	tests := []struct {
		name      string
		editErr   error
		directive service.Directive
		wantSends int
	}{
		{
			name:      "successful edit",
			directive: service.Directive{Text: "Главное меню"},
		},
		{
			name:      "edit failure falls back to send",
			editErr:   errors.New("telegram: message to edit not found"),
			directive: service.Directive{Text: "Главное меню"},
			wantSends: 1,
		},
		{
			name:      "unmodified message is not re-sent",
			editErr:   errors.New("telegram: message is not modified"),
			directive: service.Directive{Text: "Главное меню"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handler{logger: zap.NewNop()}
			c := &fakeContext{editErr: tt.editErr}

			require.NoError(t, h.deliver(c, tt.directive))

			assert.Equal(t, tt.wantSends, c.sends)
			// The callback query must be answered on every path.
			assert.Equal(t, 1, c.responds)
		})
	}
}

func TestDeliverAlertAnswersCallbackInline(t *testing.T) {
	h := &Handler{logger: zap.NewNop()}
	c := &fakeContext{}

	require.NoError(t, h.deliver(c, service.Directive{Alert: "❌ Вы ещё не подписались!"}))

	assert.Zero(t, c.edits)
	assert.Zero(t, c.sends)
	require.NotNil(t, c.alert)
	assert.True(t, c.alert.ShowAlert)
	assert.Equal(t, "❌ Вы ещё не подписались!", c.alert.Text)
}

func TestCleanCallbackData(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normal string",
			input:    "credit_cards",
			expected: "credit_cards",
		},
		{
			name:     "string with whitespace",
			input:    "  credit_cards  ",
			expected: "credit_cards",
		},
		{
			name:     "telebot control prefix stripped",
			input:    "\fnav|loans",
			expected: "nav|loans",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only whitespace",
			input:    "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanCallbackData(tt.input))
		})
	}
}

func TestMarkupFor(t *testing.T) {
	rows := [][]menu.Button{
		{
			{Label: "Займы", Target: "loans"},
			{Label: "Канал", URL: "https://t.me/my_channel"},
		},
		{
			{Label: "Спросить нейросеть", Action: menu.ActionAskAI},
		},
	}

	markup := markupFor(rows)
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 2)

	first := markup.InlineKeyboard[0]
	require.Len(t, first, 2)
	assert.Equal(t, "Займы", first[0].Text)
	assert.Equal(t, btnNav.Unique, first[0].Unique)
	assert.Equal(t, "loans", first[0].Data)
	assert.Equal(t, "https://t.me/my_channel", first[1].URL)

	second := markup.InlineKeyboard[1]
	require.Len(t, second, 1)
	assert.Equal(t, btnAskAI.Unique, second[0].Unique)
}

func TestMarkupForEmpty(t *testing.T) {
	assert.Nil(t, markupFor(nil))
	assert.Nil(t, markupFor([][]menu.Button{}))
}
