package replica

import (
	"github.com/go-kit/kit/metrics"

	"github.com/maca/crdt-graph/crdt"
)

type metricsService struct {
	service  Service
	applied  metrics.Counter
	rejected metrics.Counter
}

// NewMetricsService decorates an existing service with counters for
// accepted and rejected operations.
func NewMetricsService(s Service, applied metrics.Counter, rejected metrics.Counter) Service {
	return &metricsService{
		service:  s,
		applied:  applied,
		rejected: rejected,
	}
}

func (s *metricsService) Replica() crdt.ReplicaID {
	return s.service.Replica()
}

func (s *metricsService) Apply(op crdt.Operation) error {

	err := s.service.Apply(op)

	if err != nil {
		s.rejected.Add(1)
	} else {
		s.applied.Add(1)
	}

	return err
}

func (s *metricsService) Batch(instructions []crdt.Instruction) error {

	err := s.service.Batch(instructions)

	if err != nil {
		s.rejected.Add(1)
	} else {
		s.applied.Add(1)
	}

	return err
}

func (s *metricsService) Get(path crdt.Path) (string, bool) {
	return s.service.Get(path)
}

func (s *metricsService) LastOperation() crdt.Operation {
	return s.service.LastOperation()
}

func (s *metricsService) OperationsSince(since crdt.Timestamp) []crdt.Operation {
	return s.service.OperationsSince(since)
}
