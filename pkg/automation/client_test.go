package automation_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/automation"
)

func TestClient(t *testing.T) {
	t.Run("RequiresBaseURL", func(t *testing.T) {
		_, err := automation.NewClient(automation.Config{})
		assert.Error(t, err)
	})

	t.Run("CallJoinsBaseAndEndpoint", func(t *testing.T) {
		var gotPath, gotMethod string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotMethod = r.Method
			w.Write([]byte(`{"status":"success"}`))
		}))
		defer srv.Close()

		// trailing slash on the base URL must not double up
		client, err := automation.NewClient(automation.Config{BaseURL: srv.URL + "/"})
		assert.NoError(t, err)

		status, body, err := client.Call("/search/keyword", http.MethodPost, []byte(`{}`))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, `{"status":"success"}`, body)
		assert.Equal(t, "/search/keyword", gotPath)
		assert.Equal(t, http.MethodPost, gotMethod)
	})

	t.Run("Non2xxIsReturnedNotAnError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadGateway)
		}))
		defer srv.Close()

		client, err := automation.NewClient(automation.Config{BaseURL: srv.URL})
		assert.NoError(t, err)

		status, body, err := client.Call("/x", http.MethodPost, nil)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, status)
		assert.Contains(t, body, "nope")
	})

	t.Run("TransportFaultIsAnError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		client, err := automation.NewClient(automation.Config{BaseURL: srv.URL, Timeout: time.Second})
		assert.NoError(t, err)

		_, _, err = client.Call("/x", http.MethodPost, nil)
		assert.Error(t, err)
	})
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("AUTOMATION_URL", "http://automation:8000")
	t.Setenv("AUTOMATION_TIMEOUT", "1500")

	cfg := automation.ConfigFromEnv()
	assert.Equal(t, "http://automation:8000", cfg.BaseURL)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
}
