package comm

import (
	"fmt"
	"strings"

	uuid "github.com/satori/go.uuid"

	"github.com/maca/crdt-graph/crdt"
)

// Structs

// Message carries one synchronization round between replicas. It
// consists of the originating replica, the log position the suffix was
// cut at, and the operations to apply at the receiver's replica. ID
// tags the round for log correlation.
type Message struct {
	ID         string
	Sender     crdt.ReplicaID
	Offset     int
	Operations []crdt.Operation
}

// Functions

// InitMessage returns a fresh Message variable
// tagged with a new round ID.
func InitMessage() *Message {

	return &Message{
		ID: uuid.NewV4().String(),
	}
}

// String renders the message for diagnostics: round ID, sender, log
// offset, and the semicolon-joined operations.
func (m *Message) String() string {

	ops := make([]string, len(m.Operations))
	for i, op := range m.Operations {
		ops[i] = op.String()
	}

	return fmt.Sprintf("%s|%d|%d|%s", m.ID, m.Sender, m.Offset, strings.Join(ops, ";"))
}
