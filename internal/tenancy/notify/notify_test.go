package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/smtp"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	ctx := slogx.WithContext(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, LogNotifier{}.Notify(ctx, "bob@x.com", "Welcome", "hello"))
	require.Contains(t, buf.String(), `"to":"bob@x.com"`)
	require.Contains(t, buf.String(), `"subject":"Welcome"`)
}

type capture struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func newTestNotifier(cfg SMTPConfig, c *capture, err error) *SMTPNotifier {
	n := NewSMTPNotifier(cfg)
	n.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		c.addr, c.auth, c.from, c.to, c.msg = addr, a, from, to, string(msg)
		return err
	}
	return n
}

func TestSMTPNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("builds the message", func(t *testing.T) {
		var c capture
		n := newTestNotifier(SMTPConfig{Host: "mail.test", From: "noreply@x.com", Password: "pw"}, &c, nil)

		require.NoError(t, n.Notify(ctx, "bob@x.com", "Join Acme", "link"))
		require.Equal(t, "mail.test:587", c.addr)
		require.Equal(t, "noreply@x.com", c.from)
		require.Equal(t, []string{"bob@x.com"}, c.to)
		require.NotNil(t, c.auth)
		require.Contains(t, c.msg, "Subject: Join Acme\r\n")
		require.Contains(t, c.msg, "To: bob@x.com\r\n")
		require.Contains(t, c.msg, "\r\n\r\nlink")
	})

	t.Run("no auth without a password", func(t *testing.T) {
		var c capture
		n := newTestNotifier(SMTPConfig{Host: "mail.test", Port: 25, From: "noreply@x.com"}, &c, nil)

		require.NoError(t, n.Notify(ctx, "bob@x.com", "s", "b"))
		require.Equal(t, "mail.test:25", c.addr)
		require.Nil(t, c.auth)
	})

	t.Run("rejects header injection", func(t *testing.T) {
		var c capture
		n := newTestNotifier(SMTPConfig{Host: "mail.test", From: "noreply@x.com"}, &c, nil)

		err := n.Notify(ctx, "bob@x.com\r\nBcc: eve@x.com", "s", "b")
		require.ErrorIs(t, err, errHeaderInjection)
		require.Empty(t, c.addr)
	})

	t.Run("wraps send errors", func(t *testing.T) {
		var c capture
		boom := errors.New("connection refused")
		n := newTestNotifier(SMTPConfig{Host: "mail.test", From: "noreply@x.com"}, &c, boom)

		require.ErrorIs(t, n.Notify(ctx, "bob@x.com", "s", "b"), boom)
	})

	t.Run("honours cancellation", func(t *testing.T) {
		n := NewSMTPNotifier(SMTPConfig{Host: "mail.test", From: "noreply@x.com"})
		release := make(chan struct{})
		t.Cleanup(func() { close(release) })
		n.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
			<-release
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		require.ErrorIs(t, n.Notify(ctx, "bob@x.com", "s", "b"), context.DeadlineExceeded)
	})
}
