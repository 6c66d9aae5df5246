package delivery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/registry"
)

func TestPropagateReadPushesReceiptToConnectedAuthor(t *testing.T) {
	msgRepo := new(mocks.MessageRepositoryMock)
	handle := new(mocks.HandleMock)
	reg := registry.New()
	reg.Register(1, handle)

	msgRepo.On("MarkConversationRead", mock.Anything, 1, 2).Return(int64(3), nil).Once()
	receipt := models.ReadReceipt{From: 2, To: 1}
	handle.On("Push", mock.Anything, models.Event{Type: models.EventReadReceipt, Receipt: &receipt}).Return(nil).Once()

	err := NewPropagator(msgRepo, reg).PropagateRead(context.Background(), 2, 1)

	require.NoError(t, err)
	msgRepo.AssertExpectations(t)
	handle.AssertExpectations(t)
}

func TestPropagateReadRecordsStateForOfflineAuthor(t *testing.T) {
	msgRepo := new(mocks.MessageRepositoryMock)
	reg := registry.New()

	msgRepo.On("MarkConversationRead", mock.Anything, 1, 2).Return(int64(2), nil).Once()

	err := NewPropagator(msgRepo, reg).PropagateRead(context.Background(), 2, 1)

	require.NoError(t, err)
	msgRepo.AssertExpectations(t)
}

func TestPropagateReadIsIdempotent(t *testing.T) {
	msgRepo := new(mocks.MessageRepositoryMock)
	handle := new(mocks.HandleMock)
	reg := registry.New()
	reg.Register(1, handle)

	msgRepo.On("MarkConversationRead", mock.Anything, 1, 2).Return(int64(0), nil).Once()

	err := NewPropagator(msgRepo, reg).PropagateRead(context.Background(), 2, 1)

	require.NoError(t, err)
	handle.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
}

func TestPropagateReadSwallowsPushFailure(t *testing.T) {
	msgRepo := new(mocks.MessageRepositoryMock)
	handle := new(mocks.HandleMock)
	reg := registry.New()
	reg.Register(1, handle)

	msgRepo.On("MarkConversationRead", mock.Anything, 1, 2).Return(int64(1), nil).Once()
	handle.On("Push", mock.Anything, mock.Anything).Return(context.DeadlineExceeded).Once()

	err := NewPropagator(msgRepo, reg).PropagateRead(context.Background(), 2, 1)

	require.NoError(t, err)
	handle.AssertExpectations(t)
}
