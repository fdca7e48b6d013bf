package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/beamlabs/beamchat-server/internal/store"
)

// persistTimeout bounds fire-and-forget gateway calls.
const persistTimeout = 5 * time.Second

// Delivery drives the sent → delivered → read lifecycle of a message.
// Transitions are monotonic; the broadcast view may run ahead of the
// durable store, never behind a gateway failure.
type Delivery struct {
	store store.MessageStore // nil keeps transitions in-memory only
	log   *zerolog.Logger
	now   func() time.Time
}

// NewDelivery constructs the state machine over the given message store.
func NewDelivery(st store.MessageStore, logger *zerolog.Logger, now func() time.Time) *Delivery {
	return &Delivery{store: st, log: logger, now: now}
}

// EvaluateSend computes the initial status of an outgoing message. When the
// receiver is online the message is marked delivered before any dispatch
// happens; otherwise it stays sent. Must be called from the hub goroutine
// so the presence check and the transition are atomic with respect to
// concurrent disconnects. Persistence is issued asynchronously.
func (d *Delivery) EvaluateSend(msg *Message, receiverOnline bool) {
	if msg.Status == "" {
		msg.Status = StatusSent
	}
	if receiverOnline && msg.Status.Before(StatusDelivered) {
		msg.Status = StatusDelivered
		at := d.now()
		msg.DeliveredAt = &at
	}
	d.persistStatus(msg.ID, store.MessageStatus(msg.Status), msg.DeliveredAt)
}

func (d *Delivery) persistStatus(id string, status store.MessageStatus, deliveredAt *time.Time) {
	if d.store == nil || id == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := d.store.UpdateMessageStatus(ctx, id, status, deliveredAt); err != nil {
			d.log.Warn().Err(err).Str("message_id", id).Msg("persist message status")
		}
	}()
}

// MarkRead loads the message, verifies the reader is its receiver, and
// flips it to read. The gateway round-trip runs off the hub goroutine; a
// successful transition is fed back through out so the hub can notify the
// sender's direct channel. Reading an already-read message is a no-op.
func (d *Delivery) MarkRead(messageID, readerID string, out chan<- *StatusUpdate) {
	if d.store == nil || messageID == "" {
		return
	}
	at := d.now()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		msg, err := d.store.GetMessage(ctx, messageID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				d.log.Debug().Str("message_id", messageID).Msg("read receipt for unknown message")
			} else {
				d.log.Warn().Err(err).Str("message_id", messageID).Msg("load message for read receipt")
			}
			return
		}
		if msg.ReceiverID != readerID {
			d.log.Warn().
				Str("message_id", messageID).
				Str("reader_id", readerID).
				Msg("read receipt from non-receiver dropped")
			return
		}
		if msg.Status == store.MessageStatusRead {
			return
		}

		changed, err := d.store.MarkMessageRead(ctx, messageID, at)
		if err != nil {
			// Durable state catches up later; the transition still goes out.
			d.log.Warn().Err(err).Str("message_id", messageID).Msg("persist read receipt")
		} else if !changed {
			return
		}

		out <- &StatusUpdate{
			MessageID: messageID,
			SenderID:  msg.SenderID,
			Status:    StatusRead,
			ReadAt:    &at,
		}
	}()
}
