package clientsync

import (
	"sort"
	"sync"
	"time"

	"messenger-service/internal/models"
)

// Summary is the per-peer sidebar entry: the latest message rendered as text
// and its timestamp. A nil LastMessageTime means the pair has no history.
type Summary struct {
	PeerID          int        `json:"peer_id"`
	LastMessageText string     `json:"last_message_text"`
	LastMessageTime *time.Time `json:"last_message_time"`
}

// Store reconciles a client's local view against the REST snapshot and the
// live event stream: the open conversation's message list plus the summary
// list, with no duplicates and stable ordering across reconnects.
type Store struct {
	mu        sync.Mutex
	selfID    int
	peerID    int
	messages  []models.Message
	seen      map[int]struct{}
	summaries map[int]Summary
}

// NewStore creates a store for the local user.
func NewStore(selfID int) *Store {
	return &Store{
		selfID:    selfID,
		seen:      make(map[int]struct{}),
		summaries: make(map[int]Summary),
	}
}

// Open selects a conversation and seeds it from a history snapshot,
// replacing any previously open conversation.
func (s *Store) Open(peerID int, history []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.peerID = peerID
	s.messages = s.messages[:0]
	s.seen = make(map[int]struct{})
	for _, msg := range history {
		s.insertLocked(msg)
	}
}

// SeedSummaries replaces the summary list with the server-derived snapshot.
// The server view is authoritative; live events only patch it between
// refreshes.
func (s *Store) SeedSummaries(list []Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summaries = make(map[int]Summary, len(list))
	for _, sum := range list {
		s.summaries[sum.PeerID] = sum
	}
}

// AppendLocal merges the canonical message returned by the synchronous send
// acknowledgment. The same message arriving later as a push echo is dropped
// by the id dedup.
func (s *Store) AppendLocal(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mergeLocked(msg)
}

// Apply folds a live event into the local view.
func (s *Store) Apply(event models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event.Type {
	case models.EventNewMessage:
		if event.Message != nil {
			s.mergeLocked(*event.Message)
		}
	case models.EventReadReceipt:
		if event.Receipt != nil {
			s.applyReceiptLocked(*event.Receipt)
		}
	}
}

func (s *Store) mergeLocked(msg models.Message) {
	peer, ok := msg.InvolvedPeer(s.selfID)
	if !ok {
		return
	}

	// Only the open conversation accumulates messages; everything else
	// routes solely into the summary list.
	if peer == s.peerID {
		s.insertLocked(msg)
	}
	s.patchSummaryLocked(peer, msg)
}

func (s *Store) insertLocked(msg models.Message) {
	if _, dup := s.seen[msg.ID]; dup {
		return
	}
	s.seen[msg.ID] = struct{}{}
	s.messages = append(s.messages, msg)
	sort.SliceStable(s.messages, func(i, j int) bool {
		a, b := s.messages[i], s.messages[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func (s *Store) applyReceiptLocked(receipt models.ReadReceipt) {
	if receipt.To != s.selfID {
		return
	}
	for i := range s.messages {
		if s.messages[i].SenderID == s.selfID && s.messages[i].ReceiverID == receipt.From {
			s.messages[i].Read = true
		}
	}
}

func (s *Store) patchSummaryLocked(peerID int, msg models.Message) {
	current, ok := s.summaries[peerID]
	if ok && current.LastMessageTime != nil && msg.CreatedAt.Before(*current.LastMessageTime) {
		return
	}

	when := msg.CreatedAt
	s.summaries[peerID] = Summary{PeerID: peerID, LastMessageText: msg.SummaryText(), LastMessageTime: &when}
}

// Messages returns the open conversation in display order.
func (s *Store) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Summaries returns the sidebar entries sorted by last message time
// descending, peers without history last, ties broken by peer id for a
// stable, deterministic order.
func (s *Store) Summaries() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Summary, 0, len(s.summaries))
	for _, sum := range s.summaries {
		out = append(out, sum)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
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
	return out
}
