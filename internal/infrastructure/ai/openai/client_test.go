package openai

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

func newTestClassifier(t *testing.T, handler http.HandlerFunc) *Classifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClassifier(config.ClassifierConfig{
		BaseURL: server.URL,
		APIKey:  "sk-test",
		Model:   "gpt-4o-mini",
		Timeout: 2 * time.Second,
	}, zaptest.NewLogger(t))
}

func TestClassifier_ClassifyItemsToLocations(t *testing.T) {
	// Arrange
	var received chatCompletionRequest
	classifier := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{
					"role":    "assistant",
					"content": "```json\n{\"milk\": \"Fridge\", \"rice\": \"Pantry\"}\n```",
				}},
			},
			"usage": map[string]int{"total_tokens": 42},
		})
	})

	// Act
	answer, err := classifier.ClassifyItemsToLocations(context.Background(),
		[]string{"milk", "rice"}, []string{"Pantry", "Fridge"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"milk": "Fridge", "rice": "Pantry"}, answer)
	assert.Equal(t, "gpt-4o-mini", received.Model)
	require.Len(t, received.Messages, 2)
	assert.Contains(t, received.Messages[1].Content, "milk")
	assert.Equal(t, "json_object", received.ResponseFormat.Type)
}

func TestClassifier_APIErrorIsReturned(t *testing.T) {
	classifier := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Rate limit reached", "type": "requests"}}`))
	})

	_, err := classifier.ClassifyItemsToLocations(context.Background(), []string{"milk"}, []string{"Fridge"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rate limit reached")
}

func TestClassifier_EmptyChoices(t *testing.T) {
	classifier := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	_, err := classifier.ClassifyItemsToLocations(context.Background(), []string{"milk"}, []string{"Fridge"})
	assert.Error(t, err)
}

func TestClassifier_RespectsDeadline(t *testing.T) {
	classifier := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := classifier.ClassifyItemsToLocations(ctx, []string{"milk"}, []string{"Fridge"})
	assert.Error(t, err)
}

func TestNewClassifier_FallsBackToLocalOllama(t *testing.T) {
	classifier := NewClassifier(config.ClassifierConfig{Model: "gpt-4o-mini"}, zaptest.NewLogger(t))

	assert.Equal(t, localModel, classifier.model)
	assert.Equal(t, localBaseURL, classifier.client.BaseURL)
}

func TestNewLimiter(t *testing.T) {
	unlimited := newLimiter(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, unlimited.Allow())
	}

	limited := newLimiter(60, 2)
	assert.True(t, limited.Allow())
	assert.True(t, limited.Allow())
	assert.False(t, limited.Allow())
}
