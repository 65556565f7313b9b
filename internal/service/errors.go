package service

import (
	"errors"

	"github.com/hatchling-app/profile-api/internal/domain"
)

// User-facing copy. The interactors are the single place where errors are
// translated into text shown to users; no layer below fabricates messages.
const (
	msgDatabaseFailure   = "Something went wrong. Please try again."
	msgProfileNotFound   = "Baby profile not found"
	msgUnexpected        = "An unexpected error occurred"
	msgNoProfile         = "No baby profile found"
	msgIncompleteProfile = "Baby profile is incomplete. Name and birthday are required."
	msgNothingToSave     = "At least one field must be provided"
)

// userMessage maps a repository failure to the text shown to the user.
// Validation failures never pass through here: their messages are emitted
// verbatim by the interactor that ran the validator.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		return msgProfileNotFound
	case domain.IsDatabaseError(err):
		return msgDatabaseFailure
	default:
		return msgUnexpected
	}
}
