package comm

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"

	"github.com/maca/crdt-graph/crdt"
	"github.com/maca/crdt-graph/replica"
)

// Structs

// Syncer drives anti-entropy rounds for one local replica. It is not
// goroutine-safe, matching the engine it feeds.
type Syncer struct {
	logger   log.Logger
	service  replica.Service
	frontier *Frontier
}

// Functions

// InitSyncer returns a syncer integrating remote operations into the
// supplied service, starting from an empty frontier.
func InitSyncer(logger log.Logger, service replica.Service) *Syncer {

	return &Syncer{
		logger:   logger,
		service:  service,
		frontier: InitFrontier(),
	}
}

// Request builds the message a round with peer would deliver: the
// peer's log suffix above our consumption cursor for it. The peer's
// full log transitively includes operations it integrated from third
// replicas, so repeated rounds spread edits across the whole group.
func (s *Syncer) Request(peer replica.Service) *Message {

	history := peer.OperationsSince(crdt.RootTimestamp)

	offset := s.frontier.Consumed(peer.Replica())
	if offset > len(history) {
		offset = len(history)
	}

	msg := InitMessage()
	msg.Sender = peer.Replica()
	msg.Offset = offset
	msg.Operations = history[offset:]

	return msg
}

// Integrate applies a message's operations to the local replica in log
// order, advancing the frontier entry by entry. The engine drops
// redelivered operations silently, so overlapping rounds are harmless.
// The first hard failure aborts the round; everything integrated
// before it remains, and a later round picks up from the advanced
// frontier.
func (s *Syncer) Integrate(ctx context.Context, msg *Message) error {

	for i, op := range msg.Operations {

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "round %s canceled at operation %d", msg.ID, i)
		default:
		}

		if err := s.service.Apply(op); err != nil {
			return errors.Wrapf(err, "failed to integrate operation %d of round %s", i, msg.ID)
		}

		s.frontier.Raise(msg.Sender, msg.Offset+i+1)
	}

	level.Debug(log.With(s.logger,
		"round", msg.ID,
		"sender", msg.Sender.Uint64(),
	)).Log(
		"msg", "integrated synchronization round",
		"operations", len(msg.Operations),
	)

	return nil
}

// SyncWith performs one full pull round against peer.
func (s *Syncer) SyncWith(ctx context.Context, peer replica.Service) error {
	return s.Integrate(ctx, s.Request(peer))
}
