// Package workflow holds the review state machines shared by practicum records
// and lesson plans.
package workflow

import (
	"fmt"
	"strings"

	"github.com/ppl-hub/practicum/internal/shared"
)

// Status is the closed set of review states.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusSubmitted        Status = "submitted"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusRevisionRequired Status = "revision_required"
)

// ParseStatus validates a status name.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusRevisionRequired:
		return s, true
	}
	return "", false
}

// Action triggers a transition.
type Action string

const (
	ActionSubmit          Action = "submit"
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionRequestRevision Action = "request_revision"
)

// ReviewAction is the review log entry written for a.
func (a Action) ReviewAction() shared.ReviewAction {
	switch a {
	case ActionSubmit:
		return shared.ReviewSubmit
	case ActionApprove:
		return shared.ReviewApprove
	case ActionReject:
		return shared.ReviewReject
	case ActionRequestRevision:
		return shared.ReviewRequestRevision
	}
	return shared.ReviewAction(strings.ToUpper(string(a)))
}

// IsReview reports whether a is performed by a reviewer rather than the author.
func (a Action) IsReview() bool {
	return a == ActionApprove || a == ActionReject || a == ActionRequestRevision
}

type edge struct {
	from   Status
	action Action
}

// Machine is a transition table plus the set of author-editable states.
type Machine struct {
	name     string
	table    map[edge]Status
	editable map[Status]bool
}

type transition struct {
	from   Status
	action Action
	to     Status
}

func newMachine(name string, editable []Status, transitions ...transition) Machine {
	m := Machine{name: name, table: make(map[edge]Status, len(transitions)), editable: make(map[Status]bool, len(editable))}
	for _, t := range transitions {
		m.table[edge{t.from, t.action}] = t.to
	}
	for _, s := range editable {
		m.editable[s] = true
	}
	return m
}

// PracticumRecord: draft -> submitted -> approved | rejected.
var PracticumRecord = newMachine("practicum_record",
	[]Status{StatusDraft},
	transition{StatusDraft, ActionSubmit, StatusSubmitted},
	transition{StatusSubmitted, ActionApprove, StatusApproved},
	transition{StatusSubmitted, ActionReject, StatusRejected},
)

// LessonPlan adds a revision loop between submitted and revision_required.
var LessonPlan = newMachine("lesson_plan",
	[]Status{StatusDraft, StatusRevisionRequired},
	transition{StatusDraft, ActionSubmit, StatusSubmitted},
	transition{StatusSubmitted, ActionApprove, StatusApproved},
	transition{StatusSubmitted, ActionReject, StatusRejected},
	transition{StatusSubmitted, ActionRequestRevision, StatusRevisionRequired},
	transition{StatusRevisionRequired, ActionSubmit, StatusSubmitted},
)

// Name identifies the machine.
func (m Machine) Name() string { return m.name }

// Next returns the target state of action from from.
func (m Machine) Next(from Status, action Action) (Status, error) {
	to, ok := m.table[edge{from, action}]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s a %s %s", shared.ErrInvalidTransition, action, strings.ReplaceAll(string(from), "_", " "), strings.ReplaceAll(m.name, "_", " "))
	}
	return to, nil
}

// Supports reports whether action appears anywhere in the table.
func (m Machine) Supports(action Action) bool {
	for e := range m.table {
		if e.action == action {
			return true
		}
	}
	return false
}

// Editable reports whether the author may still change content in s.
func (m Machine) Editable(s Status) bool {
	return m.editable[s]
}

// Terminal reports whether s is final.
func (m Machine) Terminal(s Status) bool {
	return s == StatusApproved || s == StatusRejected
}
