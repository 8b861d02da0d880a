package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsCredentials(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/tags/"),
		attribute.String("Authorization", "Token abc"),
		attribute.String("password", "secret"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeErrorRedactsSecrets(t *testing.T) {
	assert.EqualError(t, SafeError(errors.New("bad token abc")), "redacted error")
	assert.EqualError(t, SafeError(errors.New("connection refused")), "connection refused")
	assert.NoError(t, SafeError(nil))
}
