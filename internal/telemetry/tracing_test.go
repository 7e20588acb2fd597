package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"homestock/internal/telemetry"
)

func TestSetupInstallsRecordingProvider(t *testing.T) {
	shutdown, err := telemetry.Setup("homestock-test", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	assert.True(t, span.IsRecording())
	assert.True(t, span.SpanContext().IsValid())
}
