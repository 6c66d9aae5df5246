package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/delivery"
	"messenger-service/internal/models"
	"messenger-service/internal/profiles"
	"messenger-service/internal/repositories"
	"messenger-service/internal/storage"
	"messenger-service/internal/telemetry"
)

// MessageHandler manages the direct-messaging endpoints.
type MessageHandler struct {
	messageRepo repositories.MessageRepository
	directory   profiles.Directory
	uploader    storage.Uploader
	coordinator *delivery.Coordinator
	propagator  *delivery.Propagator
	audit       *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(
	messageRepo repositories.MessageRepository,
	directory profiles.Directory,
	uploader storage.Uploader,
	coordinator *delivery.Coordinator,
	propagator *delivery.Propagator,
	audit *telemetry.AuditEmitter,
) *MessageHandler {
	return &MessageHandler{
		messageRepo: messageRepo,
		directory:   directory,
		uploader:    uploader,
		coordinator: coordinator,
		propagator:  propagator,
		audit:       audit,
	}
}

// ListConversations returns every other user with their profile and
// last-message summary, most recent conversation first, peers without
// history last.
func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID := c.GetInt("userID")

	others, err := h.directory.ListOthers(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load user info"})
		return
	}

	latest, err := h.messageRepo.LatestPerPeer(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	type conversationResponse struct {
		PeerID          int              `json:"peer_id"`
		Profile         profiles.Profile `json:"profile"`
		LastMessageText string           `json:"last_message_text"`
		LastMessageTime *time.Time       `json:"last_message_time"`
	}

	responses := make([]conversationResponse, 0, len(others))
	for _, peer := range others {
		entry := conversationResponse{PeerID: peer.ID, Profile: peer}
		if msg, ok := latest[peer.ID]; ok {
			when := msg.CreatedAt
			entry.LastMessageText = msg.SummaryText()
			entry.LastMessageTime = &when
		}
		responses = append(responses, entry)
	}

	// Newest conversation first, peers without history last, peer id as
	// deterministic tie-break.
	sort.SliceStable(responses, func(i, j int) bool {
		a, b := responses[i], responses[j]
		switch {
		case a.LastMessageTime == nil && b.LastMessageTime == nil:
			return a.PeerID < b.PeerID
		case a.LastMessageTime == nil:
			return false
		case b.LastMessageTime == nil:
			return true
		case !a.LastMessageTime.Equal(*b.LastMessageTime):
			return a.LastMessageTime.After(*b.LastMessageTime)
		}
		return a.PeerID < b.PeerID
	})

	c.JSON(http.StatusOK, gin.H{"conversations": responses})
}

// GetHistory returns all messages between the caller and the peer in
// ascending creation order. A fetch never marks anything delivered; delivery
// marking happens only on live push success.
func (h *MessageHandler) GetHistory(c *gin.Context) {
	peerID, ok := parsePeerID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	msgs, err := h.messageRepo.History(c.Request.Context(), userID, peerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// SendMessage resolves the receiver against the user directory and the
// optional attachment against the object store, then runs the delivery
// coordinator. The canonical stored message is returned synchronously
// regardless of receiver connectivity.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	peerID, ok := parsePeerID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	var req struct {
		Text  string `json:"text"`
		Image string `json:"image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Resolve the receiver before touching the object store so nothing is
	// uploaded or persisted for a peer that does not exist.
	if _, err := h.directory.Get(c.Request.Context(), peerID); err != nil {
		if errors.Is(err, profiles.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown peer"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load user info"})
		return
	}

	attachmentURL, err := h.resolveAttachment(c, req.Image)
	if err != nil {
		if errors.Is(err, storage.ErrUploadFailed) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "attachment upload failed"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment"})
		return
	}

	msg, err := h.coordinator.Send(c.Request.Context(), userID, peerID, req.Text, attachmentURL)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message must contain text or an attachment"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "message sent", requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusCreated, msg)
}

// MarkConversationRead marks everything the peer sent to the caller as read
// and relays a receipt to the peer if connected. Idempotent.
func (h *MessageHandler) MarkConversationRead(c *gin.Context) {
	peerID, ok := parsePeerID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if err := h.propagator.PropagateRead(c.Request.Context(), userID, peerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark conversation read"})
		return
	}

	c.Status(http.StatusNoContent)
}

// resolveAttachment turns the request's image field into a content URL.
// Inline data URIs are uploaded to the object store before the coordinator
// ever runs; already-hosted URLs pass through untouched.
func (h *MessageHandler) resolveAttachment(c *gin.Context, image string) (string, error) {
	switch {
	case image == "":
		return "", nil
	case storage.IsDataURI(image):
		if h.uploader == nil {
			return "", storage.ErrUploadFailed
		}
		contentType, data, err := storage.DecodeDataURI(image)
		if err != nil {
			return "", err
		}
		return h.uploader.Upload(c.Request.Context(), contentType, data)
	case strings.HasPrefix(image, "https://") || strings.HasPrefix(image, "http://"):
		return image, nil
	default:
		return "", errors.New("unsupported attachment format")
	}
}

func parsePeerID(c *gin.Context) (int, bool) {
	peerID, err := strconv.Atoi(c.Param("peer_id"))
	if err != nil || peerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid peer id"})
		return 0, false
	}
	if peerID == c.GetInt("userID") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot message yourself"})
		return 0, false
	}
	return peerID, true
}
