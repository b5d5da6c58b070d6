// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrow

import (
	"sync"

	"github.com/taibuivan/libro/internal/platform/apperr"
	"github.com/taibuivan/libro/pkg/uuid"
)

// Phase is the state of a borrow attempt.
type Phase int

const (
	// PhaseDraft accepts edits. A failed submission returns here with its error.
	PhaseDraft Phase = iota
	// PhaseSubmitting has a request in flight. Further submissions are refused.
	PhaseSubmitting
	// PhaseConfirmed is terminal.
	PhaseConfirmed
)

func (p Phase) String() string {
	switch p {
	case PhaseDraft:
		return "draft"
	case PhaseSubmitting:
		return "submitting"
	case PhaseConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// MarshalText renders the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Attempt is one user's attempt to borrow one book.
type Attempt struct {
	ID string

	mu     sync.Mutex
	draft  Draft
	phase  Phase
	err    error
	record *Record
}

// NewAttempt starts an attempt in [PhaseDraft].
func NewAttempt(draft Draft) *Attempt {
	return &Attempt{ID: uuid.New(), draft: draft}
}

// Phase reports the current phase.
func (attempt *Attempt) Phase() Phase {
	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	return attempt.phase
}

// Draft returns the draft. It survives failed submissions unchanged.
func (attempt *Attempt) Draft() Draft {
	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	return attempt.draft
}

// Edit replaces the draft. Only allowed in [PhaseDraft].
func (attempt *Attempt) Edit(draft Draft) error {
	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	if attempt.phase != PhaseDraft {
		return apperr.Conflict("The borrow request can no longer be edited")
	}
	attempt.draft = draft
	attempt.err = nil
	return nil
}

// Err is the error of the last failed submission, if any.
func (attempt *Attempt) Err() error {
	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	return attempt.err
}

// Record is the confirmed borrow, or nil.
func (attempt *Attempt) Record() *Record {
	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	return attempt.record
}

// begin moves Draft to Submitting and returns the draft to send.
func (attempt *Attempt) begin() (Draft, error) {
	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	switch attempt.phase {
	case PhaseSubmitting:
		return Draft{}, apperr.SubmissionInFlight()
	case PhaseConfirmed:
		return Draft{}, apperr.Conflict("This borrow request was already confirmed")
	}

	attempt.phase = PhaseSubmitting
	attempt.err = nil
	return attempt.draft, nil
}

// reject records err, staying in or returning to Draft.
func (attempt *Attempt) reject(err error) {
	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	if attempt.phase != PhaseConfirmed {
		attempt.phase = PhaseDraft
	}
	attempt.err = err
}

func (attempt *Attempt) confirm(record *Record) {
	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	attempt.phase = PhaseConfirmed
	attempt.record = record
	attempt.err = nil
}
