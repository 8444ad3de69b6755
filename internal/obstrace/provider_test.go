package obstrace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderBuildsAShutdownFuncWithoutDialing(t *testing.T) {
	// otlptracehttp.New only builds client configuration; it never dials
	// the collector until the first batch flush, so this never touches the
	// network as long as no span is ever recorded against the provider.
	shutdown, err := NewProvider(context.Background(), ProviderConfig{Endpoint: "127.0.0.1:0", Insecure: true})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, shutdown(ctx))
}
