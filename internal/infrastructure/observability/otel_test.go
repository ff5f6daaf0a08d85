package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_Disabled(t *testing.T) {
	var buf bytes.Buffer
	tel, err := Setup(context.Background(), Config{LogOutput: &buf})
	require.NoError(t, err)

	tel.Logger.Info("hello", "todo_id", "abc")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "abc", line["todo_id"])

	assert.Same(t, tel.traces, otel.GetTracerProvider())
	assert.Same(t, tel.metrics, otel.GetMeterProvider())

	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestConfig_ServiceNameDefault(t *testing.T) {
	assert.Equal(t, DefaultServiceName, Config{}.serviceName())
	assert.Equal(t, "todo-api", Config{ServiceName: "todo-api"}.serviceName())
}

func TestNewResource_CarriesServiceName(t *testing.T) {
	res, err := newResource(context.Background(), "todo-test")
	require.NoError(t, err)

	val, ok := res.Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "todo-test", val.AsString())
}
