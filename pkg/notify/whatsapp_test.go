package notify

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWhatsAppLink(t *testing.T) {
	t.Parallel()

	t.Run("NationalNumberGetsCountryCode", func(t *testing.T) {
		t.Parallel()

		link := WhatsAppLink("9834252755", "hello there")

		u, err := url.Parse(link)
		require.NoError(t, err)
		require.Equal(t, "api.whatsapp.com", u.Host)
		require.Equal(t, "919834252755", u.Query().Get("phone"))
		require.Equal(t, "hello there", u.Query().Get("text"))
	})

	t.Run("InternationalNumberKept", func(t *testing.T) {
		t.Parallel()

		link := WhatsAppLink("+447700900123", "hi")

		u, err := url.Parse(link)
		require.NoError(t, err)
		require.Equal(t, "447700900123", u.Query().Get("phone"))
	})

	t.Run("MessageIsEncoded", func(t *testing.T) {
		t.Parallel()

		link := WhatsAppLink("9834252755", "fees due: ₹500 & counting")

		u, err := url.Parse(link)
		require.NoError(t, err)
		require.Equal(t, "fees due: ₹500 & counting", u.Query().Get("text"))
	})
}
