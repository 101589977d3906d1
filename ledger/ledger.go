// Package ledger implements the append-only interaction record shared by
// agents: a typed sequence of steps (system, human, answer, tool, retry,
// routing, retrieval) with structural export/import, concatenation and an
// optional model-backed summarization.
//
// A Ledger is not synchronized. One run owns one ledger; during delegation
// the router hands its ledger to the target agent and stays out of it until
// the delegated run finishes, so there is never more than one writer at a
// time.
package ledger

import (
	"errors"
	"fmt"

	"github.com/hupe1980/agentlite/core"
)

// ErrRoleMismatch reports an Add call fed a message of the wrong role. This
// is a programming-contract violation at the call site, not a recoverable
// runtime condition.
var ErrRoleMismatch = errors.New("ledger: message role mismatch")

// Ledger is an ordered, append-only sequence of interaction steps. Steps are
// never mutated or removed after insertion.
type Ledger struct {
	steps   []Step
	summary string
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

func roleError(want, got core.Role) error {
	return fmt.Errorf("%w: want %q, got %q", ErrRoleMismatch, want, got)
}

// AddSystemStep records the system prompt from a system-role message.
func (l *Ledger) AddSystemStep(msg core.Message) error {
	if msg.Role != core.RoleSystem {
		return roleError(core.RoleSystem, msg.Role)
	}
	l.steps = append(l.steps, SystemStep{Prompt: msg.Content})
	return nil
}

// AddHumanStep records user input from a user-role message.
func (l *Ledger) AddHumanStep(msg core.Message) error {
	if msg.Role != core.RoleUser {
		return roleError(core.RoleUser, msg.Role)
	}
	l.steps = append(l.steps, HumanStep{Text: msg.Content})
	return nil
}

// AddAnswerStep records an assistant reply from an assistant-role message.
func (l *Ledger) AddAnswerStep(msg core.Message, usage *core.Usage) error {
	if msg.Role != core.RoleAssistant {
		return roleError(core.RoleAssistant, msg.Role)
	}
	l.steps = append(l.steps, AnswerStep{Message: msg.Content, Usage: usage})
	return nil
}

// AddToolStep records a tool invocation from a tool-role message. The
// message's name, args and content become the step's name, args and result.
func (l *Ledger) AddToolStep(msg core.Message, usage *core.Usage) error {
	if msg.Role != core.RoleTool {
		return roleError(core.RoleTool, msg.Role)
	}
	l.steps = append(l.steps, ToolStep{
		Name:   msg.Name,
		Args:   msg.ToolArgs,
		Result: msg.Content,
		Usage:  usage,
	})
	return nil
}

// AddRetryStep records the corrective user-role message sent back to the
// router after a failed classification attempt.
func (l *Ledger) AddRetryStep(msg core.Message) error {
	if msg.Role != core.RoleUser {
		return roleError(core.RoleUser, msg.Role)
	}
	l.steps = append(l.steps, RetryStep{Reason: msg.Content})
	return nil
}

// AddRoutingStep records a delegation decision.
func (l *Ledger) AddRoutingStep(reason, targetAgent, rawOutput, expandedQuery string, usage *core.Usage) {
	l.steps = append(l.steps, RoutingStep{
		Reason:        reason,
		TargetAgent:   targetAgent,
		RawOutput:     rawOutput,
		ExpandedQuery: expandedQuery,
		Usage:         usage,
	})
}

// AddRetrievalStep records the passages injected by the retrieval-augmented
// agent.
func (l *Ledger) AddRetrievalStep(query string, chunks []RetrievedChunk) {
	l.steps = append(l.steps, RetrievalStep{Query: query, Chunks: chunks})
}

// Steps returns a copy of the recorded steps in insertion order.
func (l *Ledger) Steps() []Step {
	steps := make([]Step, len(l.steps))
	copy(steps, l.steps)
	return steps
}

// Len returns the number of recorded steps.
func (l *Ledger) Len() int { return len(l.steps) }

// Combine appends other's steps after l's own, preserving the relative order
// of both sides, and returns l. The other ledger is left untouched.
func (l *Ledger) Combine(other *Ledger) *Ledger {
	if other != nil {
		l.steps = append(l.steps, other.steps...)
	}
	return l
}

// TotalUsage sums the usage attached to answer, tool and routing steps.
func (l *Ledger) TotalUsage() core.Usage {
	var total core.Usage
	for _, step := range l.steps {
		switch s := step.(type) {
		case AnswerStep:
			if s.Usage != nil {
				total.Add(*s.Usage)
			}
		case ToolStep:
			if s.Usage != nil {
				total.Add(*s.Usage)
			}
		case RoutingStep:
			if s.Usage != nil {
				total.Add(*s.Usage)
			}
		}
	}
	return total
}

// Summary returns the synopsis stored by the last summarization, if any.
func (l *Ledger) Summary() string { return l.summary }

// SetSummary stores a synopsis beside the recorded steps.
func (l *Ledger) SetSummary(s string) { l.summary = s }
