package backup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("OLLAMA_MODEL", "")

	b := New()
	assert.Equal(t, defaultBaseURL, b.baseURL)
	assert.Equal(t, defaultModel, b.ModelName())
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "http://ollama.internal:11434")
	t.Setenv("OLLAMA_MODEL", "mistral")

	b := New()
	assert.Equal(t, "http://ollama.internal:11434", b.baseURL)
	assert.Equal(t, "mistral", b.ModelName())
}

func TestAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("OLLAMA_BASE_URL", srv.URL)
	assert.True(t, New().Available(context.Background()))
}

func TestAvailableUnreachable(t *testing.T) {
	// 已关闭的端口
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	t.Setenv("OLLAMA_BASE_URL", srv.URL)
	assert.False(t, New().Available(context.Background()))
}
