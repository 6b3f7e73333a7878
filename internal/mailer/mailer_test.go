package mailer

import (
	"context"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewPicksBackend(t *testing.T) {
	assert.IsType(t, &Console{}, New("", "Academia", "no-reply@academia.local", zap.NewNop()))
	assert.IsType(t, &Sendgrid{}, New("SG.key", "Academia", "no-reply@academia.local", zap.NewNop()))
}

func TestConsoleLogsMessage(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewConsole("Academia", "no-reply@academia.local", zap.New(core))

	err := m.Send(context.Background(), Message{
		To:      mail.Address{Name: "Ravi", Address: "ravi@uni.edu"},
		Subject: "Your seminar record was approved",
		Text:    "hello",
	})
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[Academia] Your seminar record was approved", fields["subject"])
	assert.Equal(t, `"Ravi" <ravi@uni.edu>`, fields["to"])
}

func TestSendgridPrepare(t *testing.T) {
	s := NewSendgrid("SG.key", "Academia", "no-reply@academia.local")
	m := s.prepare(Message{To: mail.Address{Address: "ravi@uni.edu"}, Subject: "Hi", Text: "body"})

	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "[Academia] Hi", m.Personalizations[0].Subject)
	assert.Equal(t, "ravi@uni.edu", m.Personalizations[0].To[0].Address)
	assert.Equal(t, "no-reply@academia.local", m.From.Address)
}
