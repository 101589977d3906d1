package ledger

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/agentlite/internal/jsonutil"
)

// ErrUnknownStepKind reports an imported record whose type tag matches no
// step kind.
var ErrUnknownStepKind = errors.New("ledger: unknown step kind")

// Document is the persisted form of a ledger: an ordered list of type-tagged
// step payloads. It round-trips losslessly through Export and Import; usage
// fields that were absent stay absent.
type Document struct {
	Steps []StepRecord `json:"steps"`
}

// StepRecord pairs a step's kind tag with its serialized fields.
type StepRecord struct {
	Type StepKind        `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Export serializes every step into a Document.
func (l *Ledger) Export() (*Document, error) {
	doc := &Document{Steps: make([]StepRecord, 0, len(l.steps))}
	for i, step := range l.steps {
		data, err := jsonutil.Marshal(step)
		if err != nil {
			return nil, fmt.Errorf("ledger: export step %d (%s): %w", i, step.Kind(), err)
		}
		doc.Steps = append(doc.Steps, StepRecord{Type: step.Kind(), Data: data})
	}
	return doc, nil
}

// Import rebuilds a ledger from a Document produced by Export.
func Import(doc *Document) (*Ledger, error) {
	l := New()
	for i, record := range doc.Steps {
		step, err := decodeStep(record)
		if err != nil {
			return nil, fmt.Errorf("ledger: import step %d: %w", i, err)
		}
		l.steps = append(l.steps, step)
	}
	return l, nil
}

func decodeStep(record StepRecord) (Step, error) {
	switch record.Type {
	case StepKindSystem:
		return decodeAs[SystemStep](record.Data)
	case StepKindHuman:
		return decodeAs[HumanStep](record.Data)
	case StepKindAnswer:
		return decodeAs[AnswerStep](record.Data)
	case StepKindTool:
		return decodeAs[ToolStep](record.Data)
	case StepKindRetry:
		return decodeAs[RetryStep](record.Data)
	case StepKindRouting:
		return decodeAs[RoutingStep](record.Data)
	case StepKindRetrieval:
		return decodeAs[RetrievalStep](record.Data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStepKind, record.Type)
	}
}

func decodeAs[T Step](data json.RawMessage) (Step, error) {
	var s T
	if err := jsonutil.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s, nil
}
