package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/vovakirdan/campuschat-server/internal/store"
)

// ReadTracker applies the unread -> read transition.
type ReadTracker struct {
	store store.MessageStore
}

// NewReadTracker creates a read tracker.
func NewReadTracker(st store.MessageStore) *ReadTracker {
	return &ReadTracker{store: st}
}

// MarkRead moves a message to the read state. Repeated calls succeed and
// return the message unchanged; changed is true only for the call that flipped the flag.
func (r *ReadTracker) MarkRead(ctx context.Context, id int64) (msg *store.Message, changed bool, err error) {
	msg, changed, err = r.store.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, notFoundError(fmt.Sprintf("message %d not found", id), err)
		}
		return nil, false, storageError("mark read", err)
	}
	return msg, changed, nil
}
