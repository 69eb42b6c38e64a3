package logtrace

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRequestIdFromContext(t *testing.T) {
	assert.Equal(t, "", RequestIdFromContext(nil)) //nolint:staticcheck
	assert.Equal(t, "", RequestIdFromContext(context.Background()))

	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIdFromContext(ctx))
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	InitLogger("debug", false)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	InitLogger("bogus", true)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}
