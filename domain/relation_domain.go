package domain

import "errors"

var (
	MessageSuccessAddRelation    = "relation added successfully"
	MessageSuccessRemoveRelation = "relation removed successfully"
	MessageFailedAddRelation     = "failed to add relation"
	MessageFailedRemoveRelation  = "failed to remove relation"

	// Adding a relation twice is a client error, never a silent duplicate.
	ErrRelationExists = errors.New("relation already exists")
	// Removing a relation that does not exist is a client error, never a
	// silent success.
	ErrRelationNotFound = errors.New("relation does not exist")
	ErrSelfSubscription = errors.New("cannot subscribe to yourself")
)
