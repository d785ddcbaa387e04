package tracing

import (
	"context"
	"testing"

	"teacreek/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), &settings.TracingConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	shutdown, err = Init(context.Background(), nil, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
