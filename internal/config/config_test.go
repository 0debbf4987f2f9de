package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DSN", "postgres://demandas@localhost/demandas")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "segredo-de-teste-com-mais-de-32-caracteres")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, FeedRedis, cfg.Feed.Driver)
	assert.Equal(t, 30*time.Second, cfg.NoticeTTL)
	assert.Equal(t, 24*time.Hour, cfg.DraftTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "America/Sao_Paulo", cfg.DisplayLocation.String())
}

func TestLoadNATSFeed(t *testing.T) {
	setRequired(t)
	t.Setenv("FEED_DRIVER", " NATS ")
	t.Setenv("NATS_URL", "nats://fila:4222")
	t.Setenv("ALLOW_ORIGINS", "https://demandas.angicos.rn.gov.br, ,*.angicos.rn.gov.br")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, FeedNATS, cfg.Feed.Driver)
	assert.Equal(t, "nats://fila:4222", cfg.Feed.NATSURL)
	assert.Equal(t, []string{"https://demandas.angicos.rn.gov.br", "*.angicos.rn.gov.br"}, cfg.AllowOrigins)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"segredo curto":         {"JWT_SECRET", "curto"},
		"feed desconhecido":     {"FEED_DRIVER", "kafka"},
		"fuso inválido":         {"DISPLAY_TZ", "Marte/Olympus"},
		"ttl negativo":          {"NOTICE_TTL", "-1s"},
		"bootstrap sem segredo": {"BOOTSTRAP_TOKEN", "abc"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv("CUSTOM_TOKEN_SECRET", "")
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
