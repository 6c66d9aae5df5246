package delivery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/registry"
)

func textPtr(s string) *string { return &s }

func TestSendPushesAndMarksDeliveredWhenReceiverConnected(t *testing.T) {
	msgRepo := new(mocks.MessageRepositoryMock)
	handle := new(mocks.HandleMock)
	reg := registry.New()
	reg.Register(2, handle)

	stored := models.Message{ID: 7, SenderID: 1, ReceiverID: 2, Text: textPtr("hi")}
	msgRepo.On("Append", mock.Anything, 1, 2, "hi", "").Return(stored, nil).Once()
	handle.On("Push", mock.Anything, models.Event{Type: models.EventNewMessage, Message: &stored}).Return(nil).Once()
	msgRepo.On("MarkDelivered", mock.Anything, 7).Return(nil).Once()

	msg, err := NewCoordinator(msgRepo, reg).Send(context.Background(), 1, 2, "hi", "")

	require.NoError(t, err)
	assert.Equal(t, 7, msg.ID)
	assert.True(t, msg.Delivered)
	msgRepo.AssertExpectations(t)
	handle.AssertExpectations(t)
}

func TestSendAcknowledgesWithoutPushWhenReceiverOffline(t *testing.T) {
	msgRepo := new(mocks.MessageRepositoryMock)
	reg := registry.New()

	stored := models.Message{ID: 8, SenderID: 1, ReceiverID: 2, Text: textPtr("hi")}
	msgRepo.On("Append", mock.Anything, 1, 2, "hi", "").Return(stored, nil).Once()

	msg, err := NewCoordinator(msgRepo, reg).Send(context.Background(), 1, 2, "hi", "")

	require.NoError(t, err)
	assert.False(t, msg.Delivered)
	msgRepo.AssertExpectations(t)
	msgRepo.AssertNotCalled(t, "MarkDelivered", mock.Anything, mock.Anything)
}

func TestSendSwallowsPushFailure(t *testing.T) {
	msgRepo := new(mocks.MessageRepositoryMock)
	handle := new(mocks.HandleMock)
	reg := registry.New()
	reg.Register(2, handle)

	stored := models.Message{ID: 9, SenderID: 1, ReceiverID: 2, Text: textPtr("hi")}
	msgRepo.On("Append", mock.Anything, 1, 2, "hi", "").Return(stored, nil).Once()
	handle.On("Push", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	msg, err := NewCoordinator(msgRepo, reg).Send(context.Background(), 1, 2, "hi", "")

	require.NoError(t, err)
	assert.False(t, msg.Delivered)
	msgRepo.AssertNotCalled(t, "MarkDelivered", mock.Anything, mock.Anything)
	handle.AssertExpectations(t)
}

func TestSendPropagatesValidationError(t *testing.T) {
	msgRepo := new(mocks.MessageRepositoryMock)
	handle := new(mocks.HandleMock)
	reg := registry.New()
	reg.Register(2, handle)

	msgRepo.On("Append", mock.Anything, 1, 2, "", "").Return(models.Message{}, assert.AnError).Once()

	_, err := NewCoordinator(msgRepo, reg).Send(context.Background(), 1, 2, "", "")

	require.Error(t, err)
	handle.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
}

func TestSendAttachmentOnlyMessage(t *testing.T) {
	msgRepo := new(mocks.MessageRepositoryMock)
	reg := registry.New()

	url := "https://x/y.png"
	stored := models.Message{ID: 10, SenderID: 1, ReceiverID: 2, AttachmentURL: &url}
	msgRepo.On("Append", mock.Anything, 1, 2, "", url).Return(stored, nil).Once()

	msg, err := NewCoordinator(msgRepo, reg).Send(context.Background(), 1, 2, "", url)

	require.NoError(t, err)
	assert.Nil(t, msg.Text)
	require.NotNil(t, msg.AttachmentURL)
	assert.Equal(t, url, *msg.AttachmentURL)
}
