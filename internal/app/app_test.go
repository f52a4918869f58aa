package app_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"islamicTodo/internal/app"
	"islamicTodo/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Logging.Development = false
	cfg.Repository.Type = config.RepositoryFile
	cfg.Repository.Dir = t.TempDir()
	cfg.Worker.Enabled = false
	cfg.Server.RateLimit = 0
	return cfg
}

func TestApp_InitAndServe(t *testing.T) {
	cfg := testConfig(t)

	a, err := app.New(cfg).Init(context.Background())
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/tasks", "application/json", strings.NewReader(`{"title":"Read Quran","tags":["quran"]}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// задачи переживают перезапуск приложения
	b, err := app.New(cfg).Init(context.Background())
	require.NoError(t, err)
	srv2 := httptest.NewServer(b.Handler())
	defer srv2.Close()

	resp, err = http.Get(srv2.URL + "/tasks?search=quran")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Read Quran")
}

func TestApp_UnknownStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Repository.Type = "redis"

	_, err := app.New(cfg).Init(context.Background())
	assert.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Worker.Enabled = true
	cfg.Worker.Schedule = "@every 1h"

	a, err := app.New(cfg).Init(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
