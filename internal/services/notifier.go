package services

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/velora-app/velora-backend/internal/platform/logger"
	"github.com/velora-app/velora-backend/internal/realtime"
)

type NotificationEvent = realtime.SSEEvent

const (
	EventLikeReceived         = realtime.SSEEventLikeReceived
	EventMatch                = realtime.SSEEventMatchNew
	EventMessage              = realtime.SSEEventMessageNew
	EventConversationAccepted = realtime.SSEEventConversationAccepted
	EventCallRing             = realtime.SSEEventCallRing
	EventCallAccepted         = realtime.SSEEventCallAccepted
	EventCallEnded            = realtime.SSEEventCallEnded
	EventCallMissed           = realtime.SSEEventCallMissed
)

// Notification targets one profile's channel; ActorID is the counterpart
// that caused the event.
type Notification struct {
	Event          NotificationEvent
	ProfileID      uuid.UUID
	ActorID        uuid.UUID
	ConversationID uuid.UUID
	Data           map[string]any
}

// Notifier delivery is best effort: failures are logged and never surfaced
// into the transaction that produced the event.
type Notifier interface {
	Dispatch(ctx context.Context, n Notification)
	DispatchAll(ctx context.Context, ns ...Notification)
}

type sseNotifier struct {
	log  *logger.Logger
	emit SSEEmitter
}

func NewNotifier(log *logger.Logger, emit SSEEmitter) Notifier {
	return &sseNotifier{
		log:  log.With("service", "Notifier"),
		emit: emit,
	}
}

func (n *sseNotifier) Dispatch(ctx context.Context, note Notification) {
	if n == nil || n.emit == nil || note.ProfileID == uuid.Nil {
		return
	}
	data := map[string]any{}
	for k, v := range note.Data {
		data[k] = v
	}
	if note.ActorID != uuid.Nil {
		data["actor_id"] = note.ActorID
	}
	if note.ConversationID != uuid.Nil {
		data["conversation_id"] = note.ConversationID
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: note.ProfileID.String(),
		Event:   note.Event,
		Data:    data,
	})
}

func (n *sseNotifier) DispatchAll(ctx context.Context, ns ...Notification) {
	if n == nil || len(ns) == 0 {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, note := range ns {
		note := note
		g.Go(func() error {
			n.Dispatch(gctx, note)
			return nil
		})
	}
	_ = g.Wait()
}
