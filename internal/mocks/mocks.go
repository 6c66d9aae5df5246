package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messenger-service/internal/models"
	"messenger-service/internal/profiles"
	"messenger-service/internal/registry"
	"messenger-service/internal/repositories"
	"messenger-service/internal/storage"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Append(ctx context.Context, senderID int, receiverID int, text string, attachmentURL string) (models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, text, attachmentURL)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) History(ctx context.Context, userA int, userB int) ([]models.Message, error) {
	args := m.Called(ctx, userA, userB)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) MarkDelivered(ctx context.Context, messageID int) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) MarkRead(ctx context.Context, messageID int) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) MarkConversationRead(ctx context.Context, authorID int, readerID int) (int64, error) {
	args := m.Called(ctx, authorID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepositoryMock) LastMessageFor(ctx context.Context, userA int, userB int) (models.Message, error) {
	args := m.Called(ctx, userA, userB)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) LatestPerPeer(ctx context.Context, userID int) (map[int]models.Message, error) {
	args := m.Called(ctx, userID)
	var latest map[int]models.Message
	if val := args.Get(0); val != nil {
		latest = val.(map[int]models.Message)
	}
	return latest, args.Error(1)
}

type DirectoryMock struct {
	mock.Mock
}

func (m *DirectoryMock) ListOthers(ctx context.Context, userID int) ([]profiles.Profile, error) {
	args := m.Called(ctx, userID)
	var users []profiles.Profile
	if val := args.Get(0); val != nil {
		users = val.([]profiles.Profile)
	}
	return users, args.Error(1)
}

func (m *DirectoryMock) Get(ctx context.Context, userID int) (profiles.Profile, error) {
	args := m.Called(ctx, userID)
	var p profiles.Profile
	if val := args.Get(0); val != nil {
		p = val.(profiles.Profile)
	}
	return p, args.Error(1)
}

type UploaderMock struct {
	mock.Mock
}

func (m *UploaderMock) Upload(ctx context.Context, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, contentType, data)
	return args.String(0), args.Error(1)
}

// HandleMock records events pushed over a registry handle.
type HandleMock struct {
	mock.Mock
}

func (m *HandleMock) Push(ctx context.Context, event models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ profiles.Directory = (*DirectoryMock)(nil)
var _ storage.Uploader = (*UploaderMock)(nil)
var _ registry.Handle = (*HandleMock)(nil)
