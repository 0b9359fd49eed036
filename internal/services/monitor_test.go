package services

import (
	"context"
	"testing"
	"time"

	"github.com/imyashkale/helmwizard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenMonitor_SweepMarksExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	good, err := env.connections.Create(ctx, "u1", "Good", "ghp_validtoken1234")
	require.NoError(t, err)
	bad, err := env.connections.Create(ctx, "u2", "Bad", "ghp_strangertoken9999")
	require.NoError(t, err)
	env.github.removeUser("ghp_strangertoken9999")

	monitor := NewTokenMonitor(env.connRepo, env.connections, time.Hour, 2)
	monitor.Start(ctx)

	assert.Equal(t, 2, monitor.Sweep(ctx))
	monitor.Stop()

	assert.Equal(t, models.ConnectionStatusActive, env.connRepo.get(good.Id).Status)
	assert.Equal(t, models.ConnectionStatusExpired, env.connRepo.get(bad.Id).Status)
}

func TestTokenMonitor_Disabled(t *testing.T) {
	env := newTestEnv(t)

	monitor := NewTokenMonitor(env.connRepo, env.connections, 0, 1)
	monitor.Start(context.Background())
	monitor.Stop()
}
