package smtp

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := string(buildMessage("noreply@example.com", "a@b.test", "Password reset", "code 123456", at))

	assert.Contains(t, msg, "From: noreply@example.com\r\n")
	assert.Contains(t, msg, "To: a@b.test\r\n")
	assert.Contains(t, msg, "Subject: Password reset\r\n")
	assert.Contains(t, msg, "Date: Sun, 01 Mar 2026 12:00:00 +0000\r\n")
	assert.Contains(t, msg, "\r\n\r\ncode 123456")
}

func TestSendEmail_UsesConfiguredRelay(t *testing.T) {
	var gotAddr string
	var gotTo []string
	m := &mailer{host: "mail.test", port: "2525", from: "noreply@example.com",
		send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotTo = addr, to
			assert.Nil(t, a)
			return nil
		}}

	require.NoError(t, m.SendEmail(context.Background(), "a@b.test", "hi", "body"))
	assert.Equal(t, "mail.test:2525", gotAddr)
	assert.Equal(t, []string{"a@b.test"}, gotTo)
}

func TestSendEmail_RejectsHeaderInjection(t *testing.T) {
	m := &mailer{send: func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called")
		return nil
	}}
	err := m.SendEmail(context.Background(), "a@b.test\r\nBcc: x@y.test", "hi", "body")
	assert.Error(t, err)
}

func TestSendEmail_WrapsRelayError(t *testing.T) {
	boom := errors.New("connection refused")
	m := &mailer{host: "h", port: "1", send: func(string, smtp.Auth, string, []string, []byte) error { return boom }}
	err := m.SendEmail(context.Background(), "a@b.test", "hi", "body")
	assert.ErrorIs(t, err, boom)
}

func TestSendEmail_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := &mailer{send: func(string, smtp.Auth, string, []string, []byte) error { return nil }}
	assert.ErrorIs(t, m.SendEmail(ctx, "a@b.test", "hi", "body"), context.Canceled)
}
