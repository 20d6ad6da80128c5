package services

import (
	"sync"

	"github.com/google/uuid"
)

// ConversationLocks serializes mutations per conversation. The engine and
// the inactivity sweeper share one instance so a sweep tick and an inbound
// message for the same conversation never interleave.
type ConversationLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewConversationLocks() *ConversationLocks {
	return &ConversationLocks{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Lock acquires the mutex for one conversation id
func (c *ConversationLocks) Lock(id uuid.UUID) {
	c.get(id).Lock()
}

// Unlock releases the mutex for one conversation id
func (c *ConversationLocks) Unlock(id uuid.UUID) {
	c.get(id).Unlock()
}

func (c *ConversationLocks) get(id uuid.UUID) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.locks[id]; ok {
		return l
	}
	l := &sync.Mutex{}
	c.locks[id] = l
	return l
}
