package whatsapp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWhatsAppNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+1 555 123 4567", "whatsapp:+15551234567"},
		{"whatsapp:+15551234567", "whatsapp:+15551234567"},
		{"(555) 123-4567", "whatsapp:+5551234567"},
		{"  +44 20 7946 0958  ", "whatsapp:+442079460958"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeWhatsAppNumber(tc.in), "input %q", tc.in)
	}
}

func newTestTwilio(t *testing.T, handler http.HandlerFunc) (*TwilioProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := NewTwilioProvider("AC123", "secret", "whatsapp:+14155238886")
	provider.baseURL = server.URL
	return provider, server
}

func TestTwilioSendMessageReturnsSID(t *testing.T) {
	var gotForm map[string]string

	provider, _ := newTestTwilio(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"From": r.PostFormValue("From"),
			"To":   r.PostFormValue("To"),
			"Body": r.PostFormValue("Body"),
		}
		user, _, _ := r.BasicAuth()
		assert.Equal(t, "AC123", user)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"sid": "SM42"})
	})

	sid, err := provider.SendMessage("+1 555 123 4567", "hello there")
	require.NoError(t, err)
	assert.Equal(t, "SM42", sid)
	assert.Equal(t, "whatsapp:+14155238886", gotForm["From"])
	assert.Equal(t, "whatsapp:+15551234567", gotForm["To"])
	assert.Equal(t, "hello there", gotForm["Body"])
}

func TestTwilioSendTemplateEncodesVariables(t *testing.T) {
	var contentSID, contentVars string

	provider, _ := newTestTwilio(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		contentSID = r.PostFormValue("ContentSid")
		contentVars = r.PostFormValue("ContentVariables")

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"sid": "SM77"})
	})

	sid, err := provider.SendTemplate("+15551234567", "HX999", map[string]string{"1": "Dana"})
	require.NoError(t, err)
	assert.Equal(t, "SM77", sid)
	assert.Equal(t, "HX999", contentSID)

	var vars map[string]string
	require.NoError(t, json.Unmarshal([]byte(contentVars), &vars))
	assert.Equal(t, "Dana", vars["1"])
}

func TestTwilioSendTemplateRequiresContentSID(t *testing.T) {
	provider := NewTwilioProvider("AC123", "secret", "whatsapp:+14155238886")

	_, err := provider.SendTemplate("+15551234567", "", nil)
	require.Error(t, err)
}

func TestTwilioAPIErrorSurfaced(t *testing.T) {
	provider, _ := newTestTwilio(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code": 20003, "message": "Authenticate"}`))
	})

	_, err := provider.SendMessage("+15551234567", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
