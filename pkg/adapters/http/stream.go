package http

import (
	"log/slog"
	"sync"
)

// StreamManager fans report notifications out to SSE subscribers of a page.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // page ID -> set of channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for pageID. Call the returned
// function to unsubscribe; it closes the channel.
func (sm *StreamManager) Subscribe(pageID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[pageID]; !ok {
		sm.subscribers[pageID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[pageID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[pageID]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, pageID)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of pageID without blocking.
// Slow subscribers lose the message.
func (sm *StreamManager) Broadcast(pageID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[pageID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping message", "page_id", pageID)
		}
	}
}
