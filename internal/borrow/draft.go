// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrow

import (
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/taibuivan/libro/internal/platform/apperr"
	"github.com/taibuivan/libro/pkg/slice"
)

// # Draft

// IDProof is the identity document attached to a borrow request.
type IDProof struct {
	Name string
	Data []byte
}

// ContentType sniffs the MIME type from the proof's content.
func (proof *IDProof) ContentType() string {
	return mimetype.Detect(proof.Data).String()
}

// Draft is a borrow request being filled in. Zero dates are missing.
type Draft struct {
	BookID    int64
	StartDate time.Time
	EndDate   time.Time
	IDProof   *IDProof
}

// # Validation

// Reason identifies one draft problem.
type Reason string

const (
	MissingStartDate    Reason = "MissingStartDate"
	MissingEndDate      Reason = "MissingEndDate"
	InvalidStartDate    Reason = "InvalidStartDate"
	InvalidEndDate      Reason = "InvalidEndDate"
	StartBeforeToday    Reason = "StartBeforeToday"
	EndBeforeStart      Reason = "EndBeforeStart"
	RangeExceedsMaximum Reason = "RangeExceedsMaximum"
	MissingIDProof      Reason = "MissingIDProof"
	IDProofInvalidType  Reason = "IDProofInvalidType"
	IDProofTooLarge     Reason = "IDProofTooLarge"
)

// Problem is one failed draft rule.
type Problem struct {
	Field   string `json:"field"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in a draft.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	messages := slice.Map(e.Problems, func(problem Problem) string { return problem.Message })
	return "invalid borrow request: " + strings.Join(messages, "; ")
}

// Has reports whether reason is among the problems.
func (e *ValidationError) Has(reason Reason) bool {
	return slice.Count(e.Problems, func(problem Problem) bool { return problem.Reason == reason }) > 0
}

// Reasons lists the problem reasons in order.
func (e *ValidationError) Reasons() []Reason {
	return slice.Map(e.Problems, func(problem Problem) Reason { return problem.Reason })
}

// Unwrap exposes the problems as a VALIDATION_ERROR so the gateway renders
// them like any other field error.
func (e *ValidationError) Unwrap() error {
	details := slice.Map(e.Problems, func(problem Problem) apperr.FieldError {
		return apperr.FieldError{Field: problem.Field, Message: problem.Message, Reason: string(problem.Reason)}
	})
	return apperr.ValidationError("Please fix the borrow request", details...)
}

type problems []Problem

func (list *problems) add(field string, reason Reason, message string) {
	*list = append(*list, Problem{Field: field, Reason: reason, Message: message})
}

/*
ValidateDraft checks draft against the borrow rules for the given day.

All problems are collected; nothing is sent anywhere. The date rules are
start ≥ today, end ≥ start and end ≤ start + 30 days. The ID proof must be
present, sniff as an image and be at most 5 MiB.
*/
func ValidateDraft(draft Draft, today time.Time) *ValidationError {
	var found problems
	today = Today(today)

	switch {
	case draft.StartDate.IsZero():
		found.add("startDate", MissingStartDate, "Start date is required")
	case draft.StartDate.Before(today):
		found.add("startDate", StartBeforeToday, "Start date cannot be in the past")
	}

	switch {
	case draft.EndDate.IsZero():
		found.add("endDate", MissingEndDate, "End date is required")
	case draft.StartDate.IsZero():
	case draft.EndDate.Before(draft.StartDate):
		found.add("endDate", EndBeforeStart, "End date must be on or after the start date")
	case DurationDays(draft.StartDate, draft.EndDate) > MaxBorrowDays:
		found.add("endDate", RangeExceedsMaximum, fmt.Sprintf("A borrow cannot exceed %d days", MaxBorrowDays))
	}

	proof := draft.IDProof
	switch {
	case proof == nil || len(proof.Data) == 0:
		found.add("idProof", MissingIDProof, "An ID proof image is required")
	case len(proof.Data) > MaxIDProofBytes:
		found.add("idProof", IDProofTooLarge, "The ID proof must be 5 MB or smaller")
	case !strings.HasPrefix(proof.ContentType(), "image/"):
		found.add("idProof", IDProofInvalidType, "The ID proof must be an image")
	}

	if len(found) == 0 {
		return nil
	}
	return &ValidationError{Problems: found}
}
