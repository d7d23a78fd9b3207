package httpclient

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugLogging(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		wantLog bool
	}{
		{name: "given debug enabled, then logs request and response", debug: true, wantLog: true},
		{name: "given debug disabled, then logs nothing", debug: false, wantLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			mock := NewMockTransport().StubResponse(http.StatusOK, `{"result":[]}`)

			client := New("https://engine.test",
				WithMockTransport(mock),
				WithBearerToken("super-secret"),
				WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)),
				WithDebug(tt.debug),
			)

			_, err := client.Get(context.Background(), "/backend-wallet/get-all", nil)
			require.NoError(t, err)

			out := buf.String()
			if !tt.wantLog {
				assert.Empty(t, out)
				return
			}
			assert.Contains(t, out, `"message":"HTTP request"`)
			assert.Contains(t, out, `"message":"HTTP response"`)
			assert.Contains(t, out, `"status":200`)
			assert.Contains(t, out, "https://engine.test/backend-wallet/get-all")
			assert.NotContains(t, out, "super-secret")
		})
	}
}
