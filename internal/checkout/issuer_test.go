package checkout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flashstore/internal/domain"
)

func testItems() []domain.CartItem {
	return []domain.CartItem{{Product: domain.Catalog()[0], Quantity: 1}}
}

func TestHTTPIssuer(t *testing.T) {
	t.Run("valid response accepted", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			w.Write([]byte(`{"transaction_id":"ELON-REMOTE","license_key":"ab12cd34","verification":"ok"}`))
		}))
		defer srv.Close()

		entry, err := NewHTTPIssuer(srv.URL, time.Second).Issue(context.Background(), testItems())
		require.NoError(t, err)
		assert.Equal(t, "ELON-REMOTE", entry.TransactionID)
		assert.Equal(t, "AB12CD34", entry.LicenseKey, "remote keys are normalized")
		assert.Equal(t, domain.StatusCompleted, entry.Status)
	})

	t.Run("malformed responses are recoverable errors", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"not json", `<html>oops</html>`},
			{"missing transaction id", `{"license_key":"AB12CD34","verification":"ok"}`},
			{"missing license key", `{"transaction_id":"ELON-X","verification":"ok"}`},
			{"blank license key", `{"transaction_id":"ELON-X","license_key":"   ","verification":"ok"}`},
			{"missing verification", `{"transaction_id":"ELON-X","license_key":"AB12CD34"}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte(tt.body))
				}))
				defer srv.Close()

				_, err := NewHTTPIssuer(srv.URL, time.Second).Issue(context.Background(), testItems())
				assert.Error(t, err)
			})
		}
	})

	t.Run("non-200 status rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewHTTPIssuer(srv.URL, time.Second).Issue(context.Background(), testItems())
		assert.Error(t, err)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		_, err := NewHTTPIssuer("http://127.0.0.1:0", 50*time.Millisecond).Issue(context.Background(), testItems())
		assert.Error(t, err)
	})
}
