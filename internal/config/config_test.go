package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("full config", func(t *testing.T) {
		path := writeConfig(t, `
feeds:
  current_url: https://alerts.example/current.json
  history_url: https://alerts.example/history.json
  area_list_url: https://alerts.example/areas.json
  rules_url: https://alerts.example/rules.json
  referer: https://alerts.example/
poll:
  interval: 5s
  max_age: 10m
home:
  lat: 32.0853
  lon: 34.7818
  areas: ["Tel Aviv", "Ramat Gan"]
bus:
  url: nats://127.0.0.1:4222
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 5*time.Second, cfg.Poll.Interval.Std())
		assert.Equal(t, 10*time.Minute, cfg.Poll.MaxAge.Std())
		assert.Equal(t, []string{"Tel Aviv", "Ramat Gan"}, cfg.Home.Areas)
		assert.Equal(t, "orefmon", cfg.Bus.SubjectPrefix)
		assert.Equal(t, ":8799", cfg.HTTP.ListenAddr)
	})

	t.Run("defaults fill omitted fields", func(t *testing.T) {
		path := writeConfig(t, `
feeds:
  current_url: https://alerts.example/current.json
  history_url: https://alerts.example/history.json
home:
  all_areas: true
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 10*time.Second, cfg.Poll.Interval.Std())
		assert.Equal(t, 15*time.Second, cfg.Poll.FetchTimeout.Std())
		assert.Equal(t, 10*time.Minute, cfg.Poll.MaxAge.Std())
	})

	t.Run("missing feed URL", func(t *testing.T) {
		path := writeConfig(t, `
feeds:
  history_url: https://alerts.example/history.json
home:
  all_areas: true
`)
		_, err := Load(path)
		assert.ErrorContains(t, err, "current_url")
	})

	t.Run("no areas and no all_areas", func(t *testing.T) {
		path := writeConfig(t, `
feeds:
  current_url: https://alerts.example/current.json
  history_url: https://alerts.example/history.json
`)
		_, err := Load(path)
		assert.ErrorContains(t, err, "home.areas")
	})

	t.Run("interval below minimum", func(t *testing.T) {
		path := writeConfig(t, `
feeds:
  current_url: https://alerts.example/current.json
  history_url: https://alerts.example/history.json
poll:
  interval: 100ms
home:
  all_areas: true
`)
		_, err := Load(path)
		assert.ErrorContains(t, err, "below the 1s minimum")
	})

	t.Run("push enabled requires endpoints", func(t *testing.T) {
		path := writeConfig(t, `
feeds:
  current_url: https://alerts.example/current.json
  history_url: https://alerts.example/history.json
home:
  all_areas: true
push:
  enabled: true
`)
		_, err := Load(path)
		assert.ErrorContains(t, err, "push.register_url")
	})

	t.Run("bad duration", func(t *testing.T) {
		path := writeConfig(t, `
feeds:
  current_url: https://alerts.example/current.json
  history_url: https://alerts.example/history.json
poll:
  interval: soon
home:
  all_areas: true
`)
		_, err := Load(path)
		assert.ErrorContains(t, err, "invalid duration")
	})
}
