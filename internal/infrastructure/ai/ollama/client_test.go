package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestClassifier_ClassifyItemsToLocations(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "json", req.Format)
		assert.False(t, req.Stream)
		assert.Equal(t, defaultModel, req.Model)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse{
			Model:   req.Model,
			Message: chatMessage{Role: "assistant", Content: `{"peas": "Freezer"}`},
			Done:    true,
		})
	}))
	defer server.Close()

	classifier := NewClassifier(config.ClassifierConfig{BaseURL: server.URL, Timeout: time.Second}, zaptest.NewLogger(t))

	// Act
	answer, err := classifier.ClassifyItemsToLocations(context.Background(), []string{"peas"}, []string{"Freezer"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Freezer", answer["peas"])
}

func TestClassifier_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `model "llama3.2:3b" not found`, http.StatusNotFound)
	}))
	defer server.Close()

	classifier := NewClassifier(config.ClassifierConfig{BaseURL: server.URL, Timeout: time.Second}, zaptest.NewLogger(t))
	_, err := classifier.ClassifyItemsToLocations(context.Background(), []string{"peas"}, []string{"Freezer"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestClassifier_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models": []}`))
	}))
	defer server.Close()

	classifier := NewClassifier(config.ClassifierConfig{BaseURL: server.URL, Timeout: time.Second}, zaptest.NewLogger(t))
	assert.NoError(t, classifier.Ping(context.Background()))
}
