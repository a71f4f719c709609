package container

import (
	"context"
	"testing"
	"time"

	"github.com/alchemorsel/pantry/internal/infrastructure/ai"
	"github.com/alchemorsel/pantry/internal/infrastructure/ai/keyword"
	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/pantry/pkg/healthcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap/zaptest"
	gormLogger "gorm.io/gorm/logger"
)

func TestModule_GraphIsComplete(t *testing.T) {
	err := fx.ValidateApp(
		fx.Supply(ConfigPath("")),
		Module,
	)

	require.NoError(t, err)
}

func TestNewClassifier(t *testing.T) {
	log := zaptest.NewLogger(t)
	cache := memory.NewCacheRepository(time.Minute)
	defer cache.Close()

	t.Run("keyword provider is used as is", func(t *testing.T) {
		cfg := &config.Config{Classifier: config.ClassifierConfig{Provider: "keyword", EnableCache: true}}

		c := NewClassifier(cfg, cache, log)

		assert.IsType(t, &keyword.Classifier{}, c.LocationClassifier)
		assert.Nil(t, c.Breaker)
		assert.True(t, c.Health.CheckHealth(context.Background()).Healthy)
	})

	t.Run("remote provider is cached when enabled", func(t *testing.T) {
		cfg := &config.Config{
			Classifier: config.ClassifierConfig{Provider: "openai", APIKey: "sk-test", BaseURL: "http://127.0.0.1:1", EnableCache: true},
			Cache:      config.CacheConfig{ClassifierTTL: time.Hour},
		}

		c := NewClassifier(cfg, cache, log)

		assert.IsType(t, &ai.CachedClassifier{}, c.LocationClassifier)
		assert.NotNil(t, c.Breaker)
	})

	t.Run("remote provider without cache sits behind the breaker", func(t *testing.T) {
		cfg := &config.Config{Classifier: config.ClassifierConfig{Provider: "ollama"}}

		c := NewClassifier(cfg, cache, log)

		assert.IsType(t, &ai.BreakerClassifier{}, c.LocationClassifier)
	})
}

func TestNewHealthCheck_ClassifierOnlyDegrades(t *testing.T) {
	log := zaptest.NewLogger(t)
	cfg := &config.Config{
		App:        config.AppConfig{Version: "test"},
		Classifier: config.ClassifierConfig{Provider: "ollama", BaseURL: "http://127.0.0.1:1", Timeout: time.Second},
	}
	db := &Database{Checker: healthcheck.Ping(func(ctx context.Context) error { return nil })}
	cache := &CacheBackend{}

	hc := NewHealthCheck(cfg, db, cache, NewClassifier(cfg, nil, log), log)
	report := hc.Check(context.Background())

	assert.Equal(t, healthcheck.StatusDegraded, report.Status)
	require.Len(t, report.Results, 3)
	assert.Equal(t, []string{"classifier"}, report.Failing())
	assert.True(t, report.Results[2].Critical)
}

func TestConfigReloads_PublishesToSubscribers(t *testing.T) {
	reloads := NewConfigReloads()
	var got []string
	reloads.Subscribe(func(c *config.Config) { got = append(got, c.App.LogLevel) })

	reloads.publish(&config.Config{App: config.AppConfig{LogLevel: "debug"}})
	reloads.attach(zaptest.NewLogger(t))
	reloads.publish(&config.Config{App: config.AppConfig{LogLevel: "warn"}})
	reloads.fail(assert.AnError)

	assert.Equal(t, []string{"debug", "warn"}, got)
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, gormLogger.Silent, gormLogLevel("silent"))
	assert.Equal(t, gormLogger.Info, gormLogLevel("DEBUG"))
	assert.Equal(t, gormLogger.Warn, gormLogLevel(""))
}
