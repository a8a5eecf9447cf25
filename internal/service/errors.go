package service

import "errors"

// Precondition violations surfaced to the user as blocking messages.
// None of these is fatal; every path returns to an interactive state.
var (
	// ErrInvalidStep means the operation is not allowed at the current
	// onboarding step.
	ErrInvalidStep = errors.New("operation not allowed at this onboarding step")
	// ErrOnboardingIncomplete means discovery was used before onboarding
	// finished.
	ErrOnboardingIncomplete = errors.New("onboarding not completed")
	// ErrIdentityIncomplete means the identity form was submitted with
	// missing fields.
	ErrIdentityIncomplete = errors.New("name, location and age are required")
	// ErrProfileIncomplete means profile completion data failed
	// validation (bio too short, fewer than two interests, no photo).
	ErrProfileIncomplete = errors.New("profile needs a bio, two interests and a photo")
	// ErrQueueEmpty means there is no discovery candidate to act on.
	ErrQueueEmpty = errors.New("discovery queue is empty")
	// ErrProfileNotFound means the id resolved to no queued profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrMatchNotFound means the id resolved to no match.
	ErrMatchNotFound = errors.New("match not found")
	// ErrNoActiveMatch means a call was placed without an open chat.
	ErrNoActiveMatch = errors.New("calls are only available once matched")
	// ErrPaywallRequired means the free interaction limit for this match
	// is reached; the caller must offer the unlock flow.
	ErrPaywallRequired = errors.New("free interaction limit reached")
	// ErrMembershipRequired means the operation is reserved for members.
	ErrMembershipRequired = errors.New("membership required")
	// ErrEmptyReason means a report was filed without a reason.
	ErrEmptyReason = errors.New("a report reason is required")
)
