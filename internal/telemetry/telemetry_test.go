package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/config"
)

func TestSetup_NoopWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.Telemetry{Enabled: true}, "reddit-test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, shutdown(ctx))
}

func TestSetup_NoopWhenDisabled(t *testing.T) {
	cfg := config.Telemetry{Enabled: false, Endpoint: "http://localhost:4318"}

	shutdown, err := Setup(context.Background(), cfg, "reddit-test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_WithEndpoint(t *testing.T) {
	// non-routable, nothing is exported before shutdown
	cfg := config.Telemetry{Enabled: true, Endpoint: "http://192.0.2.1:4318"}

	shutdown, err := Setup(context.Background(), cfg, "reddit-test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
