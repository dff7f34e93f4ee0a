package services

import "errors"

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrPhaseNotFound    = errors.New("phase not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrCategoryNotFound = errors.New("category not found")

	// Ownership errors: the referenced row exists but belongs to a
	// different profile.
	ErrPhaseOwnership = errors.New("phase does not belong to profile")
	ErrTaskOwnership  = errors.New("related task does not belong to profile")
)
