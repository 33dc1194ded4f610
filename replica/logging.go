package replica

import (
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/maca/crdt-graph/crdt"
)

type loggingService struct {
	logger  log.Logger
	service Service
}

// NewLoggingService wraps a provided existing
// service with the provided logger.
func NewLoggingService(s Service, logger log.Logger) Service {
	return &loggingService{logger, s}
}

func (s *loggingService) Replica() crdt.ReplicaID {
	return s.service.Replica()
}

// Apply wraps this service's Apply method with
// added logging capabilities.
func (s *loggingService) Apply(op crdt.Operation) error {

	err := s.service.Apply(op)

	logger := log.With(s.logger,
		"method", "APPLY",
		"operation", op.String(),
	)

	if err != nil {
		level.Info(logger).Log("msg", "failed to apply operation", "err", err)
	} else {
		level.Debug(logger).Log()
	}

	return err
}

// Batch wraps this service's Batch method with
// added logging capabilities.
func (s *loggingService) Batch(instructions []crdt.Instruction) error {

	err := s.service.Batch(instructions)

	logger := log.With(s.logger,
		"method", "BATCH",
		"instructions", len(instructions),
	)

	if err != nil {
		level.Info(logger).Log("msg", "failed to apply batch", "err", err)
	} else {
		level.Debug(logger).Log("operation", s.service.LastOperation().String())
	}

	return err
}

func (s *loggingService) Get(path crdt.Path) (string, bool) {
	return s.service.Get(path)
}

func (s *loggingService) LastOperation() crdt.Operation {
	return s.service.LastOperation()
}

// OperationsSince wraps this service's OperationsSince
// method with added logging capabilities.
func (s *loggingService) OperationsSince(since crdt.Timestamp) []crdt.Operation {

	ops := s.service.OperationsSince(since)

	level.Debug(log.With(s.logger,
		"method", "OPERATIONS_SINCE",
		"since", uint64(since),
		"count", len(ops),
	)).Log()

	return ops
}
