package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrInvalidMessage  = errors.New("message must contain text or an attachment")
)

const messageColumns = `id, sender_id, receiver_id, text, attachment_url, delivered, read, created_at`

// MessageRepository defines interactions for direct messages.
type MessageRepository interface {
	Append(ctx context.Context, senderID int, receiverID int, text string, attachmentURL string) (models.Message, error)
	History(ctx context.Context, userA int, userB int) ([]models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	MarkDelivered(ctx context.Context, messageID int) error
	MarkRead(ctx context.Context, messageID int) error
	MarkConversationRead(ctx context.Context, authorID int, readerID int) (int64, error)
	LastMessageFor(ctx context.Context, userA int, userB int) (models.Message, error)
	LatestPerPeer(ctx context.Context, userID int) (map[int]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append validates and stores a message, assigning id and created_at.
// Exactly one of text and attachmentURL must be non-empty after trimming.
func (r *MessageRepo) Append(ctx context.Context, senderID int, receiverID int, text string, attachmentURL string) (models.Message, error) {
	text = strings.TrimSpace(text)
	hasText := text != ""
	hasAttachment := attachmentURL != ""
	if hasText == hasAttachment {
		return models.Message{}, ErrInvalidMessage
	}

	var textArg, attachmentArg *string
	if hasText {
		textArg = &text
	} else {
		attachmentArg = &attachmentURL
	}

	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (sender_id, receiver_id, text, attachment_url) VALUES ($1, $2, $3, $4) RETURNING `+messageColumns,
		senderID, receiverID, textArg, attachmentArg).StructScan(&msg)
	return msg, err
}

// History returns all messages between the pair in either direction,
// ascending by created_at with id as tie-break.
func (r *MessageRepo) History(ctx context.Context, userA int, userB int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
        ORDER BY created_at ASC, id ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, userA, userB)
	return msgs, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// MarkDelivered flips the delivered flag. Already-delivered messages are a
// no-op; unknown ids fail with ErrMessageNotFound.
func (r *MessageRepo) MarkDelivered(ctx context.Context, messageID int) error {
	return r.markFlag(ctx, `UPDATE messages SET delivered = TRUE WHERE id=$1`, messageID)
}

// MarkRead flips the read flag with the same semantics as MarkDelivered.
func (r *MessageRepo) MarkRead(ctx context.Context, messageID int) error {
	return r.markFlag(ctx, `UPDATE messages SET read = TRUE WHERE id=$1`, messageID)
}

func (r *MessageRepo) markFlag(ctx context.Context, query string, messageID int) error {
	res, err := r.db.ExecContext(ctx, query, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// MarkConversationRead marks every author→reader message as read and
// returns how many rows actually changed. Calling it again is a no-op.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, authorID int, readerID int) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET read = TRUE WHERE sender_id=$1 AND receiver_id=$2 AND read = FALSE`,
		authorID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// LastMessageFor returns the most recent message between the pair, used for
// conversation summaries. ErrMessageNotFound when the pair has no history.
func (r *MessageRepo) LastMessageFor(ctx context.Context, userA int, userB int) (models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
        ORDER BY created_at DESC, id DESC LIMIT 1`
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, query, userA, userB)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

type peerMessage struct {
	models.Message
	PeerID int `db:"peer_id"`
}

// LatestPerPeer returns the most recent message for each peer the user has
// history with, keyed by peer id. One query feeds the conversation list.
func (r *MessageRepo) LatestPerPeer(ctx context.Context, userID int) (map[int]models.Message, error) {
	query := `SELECT DISTINCT ON (peer_id) ` + messageColumns + `, peer_id FROM (
            SELECT ` + messageColumns + `,
                CASE WHEN sender_id=$1 THEN receiver_id ELSE sender_id END AS peer_id
            FROM messages
            WHERE sender_id=$1 OR receiver_id=$1
        ) pair_messages
        ORDER BY peer_id, created_at DESC, id DESC`
	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	latest := make(map[int]models.Message)
	for rows.Next() {
		var pm peerMessage
		if err := rows.StructScan(&pm); err != nil {
			return nil, err
		}
		latest[pm.PeerID] = pm.Message
	}
	return latest, rows.Err()
}
