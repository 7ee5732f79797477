package domain

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrInvalidPlantCount   = errors.New("plant count must be positive")
	ErrInvalidCapacity     = errors.New("block capacity must be positive")
	ErrAssignmentNotFound  = errors.New("plant assignment not found")
	ErrBlockOccupied       = errors.New("block still has plants assigned")
	ErrBlockInAlert        = errors.New("block has an open alert")
	ErrNoActiveAlert       = errors.New("block has no active alert")
	ErrAlertAlreadyOpen    = errors.New("block already has an active alert")
	ErrInvalidTaskCategory = errors.New("invalid task category")
	ErrInvalidTaskPriority = errors.New("invalid task priority")
	ErrTemplateNotDraft    = errors.New("template is not in draft status")
	ErrTemplateNotActive   = errors.New("template is not active")
	ErrApprovalRequired    = errors.New("template activation requires approval")

	ErrDivisionByZero      = errors.New("formula divides by zero")
	ErrMalformedExpression = errors.New("malformed formula expression")
	ErrEmptyFormula        = errors.New("empty formula expression")
)

// InsufficientCapacityError is returned when an assignment would exceed the
// block's remaining capacity. No mutation occurs.
type InsufficientCapacityError struct {
	Requested int
	Available int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity: requested %d, available %d", e.Requested, e.Available)
}

// InsufficientAssignmentError is returned when a removal exceeds the count
// currently assigned for that plant type.
type InsufficientAssignmentError struct {
	PlantTypeID string
	Requested   int
	Available   int
}

func (e *InsufficientAssignmentError) Error() string {
	return fmt.Sprintf("insufficient assignment for %s: requested %d, assigned %d", e.PlantTypeID, e.Requested, e.Available)
}

// IllegalTransitionError is returned for a (from, to) pair outside the
// lifecycle transition table. The block is left unchanged.
type IllegalTransitionError struct {
	From BlockStatus
	To   BlockStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal block transition from %s to %s", e.From, e.To)
}

// UnknownVariableError is returned when a formula references an identifier
// that is not bound in the variable context.
type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown formula variable %q", e.Name)
}

// DisallowedTokenError is returned when a formula contains a character
// outside the arithmetic allow-list. The expression is never evaluated.
type DisallowedTokenError struct {
	Token rune
}

func (e *DisallowedTokenError) Error() string {
	return fmt.Sprintf("disallowed token %q in formula", e.Token)
}
