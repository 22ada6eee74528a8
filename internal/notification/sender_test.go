package notification

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSender(t *testing.T) {
	t.Run("parses embedded templates", func(t *testing.T) {
		sender, err := NewSender(Config{
			Host:          "smtp.example.com",
			Port:          587,
			From:          "noreply@example.com",
			PublicBaseURL: "https://hub.example.com",
		})

		require.NoError(t, err)
		require.NotNil(t, sender.templates.Lookup("verification_email.html"))
		require.NotNil(t, sender.templates.Lookup("password_reset_email.html"))
	})

	t.Run("requires host and from", func(t *testing.T) {
		_, err := NewSender(Config{From: "noreply@example.com"})
		require.Error(t, err)

		_, err = NewSender(Config{Host: "smtp.example.com"})
		require.Error(t, err)
	})
}
