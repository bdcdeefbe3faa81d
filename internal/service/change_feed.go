package service

import (
	"context"
	"sync"
)

// ChangeOp names the kind of write that changed a collection.
type ChangeOp string

const (
	ChangeCreated  ChangeOp = "created"
	ChangeUpdated  ChangeOp = "updated"
	ChangeReplaced ChangeOp = "replaced"
)

// ChangeEventType is the event type sent to realtime subscribers.
const ChangeEventType = "collection_changed"

// ChangeEvent describes a committed write. ID is empty for whole-collection replacements.
type ChangeEvent struct {
	Type       string   `json:"type"`
	Collection string   `json:"collection"`
	ID         string   `json:"id,omitempty"`
	Op         ChangeOp `json:"op"`
}

// ChangeListener reacts to committed writes.
type ChangeListener interface {
	CollectionChanged(ctx context.Context, event ChangeEvent)
}

// ChangeFeed fans committed writes out to listeners in subscription order.
// A nil *ChangeFeed drops events.
type ChangeFeed struct {
	mu        sync.RWMutex
	listeners []ChangeListener
}

// NewChangeFeed constructs an empty feed.
func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{}
}

// Subscribe registers listener.
func (f *ChangeFeed) Subscribe(listener ChangeListener) {
	if f == nil || listener == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, listener)
}

// Publish delivers a change to every listener.
func (f *ChangeFeed) Publish(ctx context.Context, collection, id string, op ChangeOp) {
	if f == nil {
		return
	}
	event := ChangeEvent{Type: ChangeEventType, Collection: collection, ID: id, Op: op}
	f.mu.RLock()
	listeners := append([]ChangeListener(nil), f.listeners...)
	f.mu.RUnlock()
	for _, listener := range listeners {
		listener.CollectionChanged(ctx, event)
	}
}
