package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/mocks"
)

func TestEmitPublishesEnvelope(t *testing.T) {
	pub := new(mocks.PublisherMock)
	var published AuditEnvelope
	pub.On("Publish", mock.Anything, "audit_log.messenger", mock.AnythingOfType("telemetry.AuditEnvelope")).
		Run(func(args mock.Arguments) {
			published = args.Get(2).(AuditEnvelope)
		}).
		Return(nil).Once()

	emitter := NewAuditEmitter(pub, "audit_log.messenger", "messenger-service", "test")
	userID := int64(42)
	emitter.Emit(context.Background(), "INFO", "message sent", "req-1", &userID)

	pub.AssertExpectations(t)
	assert.Equal(t, 1, published.SchemaVersion)
	assert.Equal(t, "audit_log", published.EventType)
	assert.Equal(t, "messenger-service", published.Service)
	assert.Equal(t, "test", published.Environment)
	assert.Equal(t, "req-1", published.RequestID)
	require.NotNil(t, published.UserID)
	assert.Equal(t, int64(42), *published.UserID)
	assert.Equal(t, "INFO", published.Payload.Level)
	assert.Equal(t, "message sent", published.Payload.Text)
	assert.NotEmpty(t, published.OccurredAt)
}

func TestEmitSwallowsPublishFailure(t *testing.T) {
	pub := new(mocks.PublisherMock)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError).Once()

	emitter := NewAuditEmitter(pub, "audit_log.messenger", "messenger-service", "test")
	emitter.Emit(context.Background(), "ERROR", "boom", "req-2", nil)

	pub.AssertExpectations(t)
}

func TestEmitIsNilSafe(t *testing.T) {
	var emitter *AuditEmitter
	emitter.Emit(context.Background(), "INFO", "ignored", "req-3", nil)

	NewAuditEmitter(nil, "k", "svc", "test").Emit(context.Background(), "INFO", "ignored", "req-4", nil)
}
