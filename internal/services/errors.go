// Package services defines the business logic of the shopping-list bot.
// This file centralizes common service-level error values so that they can
// be consistently returned by internal operations and checked by callers.
//
// Every one of these errors is recoverable: the List Engine translates them
// into informational reply texts before they reach the transport layer.
// Only infrastructure failures (database connectivity, constraint faults)
// propagate as raw errors.
package services

import "errors"

var (
	// ErrUserNotFound indicates that a command requiring an existing user
	// was sent by a LINE id the bot has never seen.
	ErrUserNotFound = errors.New("user not found")

	// ErrItemNotFound indicates that no unbought item with the requested
	// name exists on the sender's list.
	ErrItemNotFound = errors.New("item not found")

	// ErrNoRecommendation indicates that no recommendation record has been
	// seeded in the store.
	ErrNoRecommendation = errors.New("no recommendation configured")
)
