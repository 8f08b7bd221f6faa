package repositories

import "errors"

var (
	ErrGroupNotFound             = errors.New("group not found")
	ErrMessageNotFound           = errors.New("message not found")
	ErrInvitationNotFound        = errors.New("invitation not found")
	ErrNotificationNotFound      = errors.New("notification not found")
	ErrPendingInvitationExists   = errors.New("pending invitation already exists")
	ErrInvitationAlreadyResolved = errors.New("invitation already resolved")
)
