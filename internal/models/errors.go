package models

import "errors"

// Sentinel errors for the catalog domain. Services wrap these with context
// via fmt.Errorf("...: %w", err); handlers match them with errors.Is to pick
// an HTTP status, so the exact message text is never load-bearing.
var (
	// ErrItemNotFound is returned when no catalog item exists for a slug.
	ErrItemNotFound = errors.New("catalog item not found")

	// ErrBrandNotFound / ErrCategoryNotFound reject item writes that
	// reference a missing taxonomy entry.
	ErrBrandNotFound    = errors.New("brand not found")
	ErrCategoryNotFound = errors.New("category not found")

	// ErrSlugTaken rejects creating an item whose name kebab-cases to a
	// slug that already exists.
	ErrSlugTaken = errors.New("an item with this slug already exists")

	// ErrAlreadyAvailable rejects a reminder on an item that has stock.
	ErrAlreadyAvailable = errors.New("catalog item is already available")

	// ErrDuplicateReminder rejects a second reminder for the same user on
	// the same item.
	ErrDuplicateReminder = errors.New("a reminder already exists for this user")

	// ErrInvalidItem covers aggregate-level validation failures (missing
	// required fields, non-positive stock threshold or delta).
	ErrInvalidItem = errors.New("invalid catalog item")

	// ErrUserNotFound / ErrInvalidCredentials / ErrUserExists are the auth
	// domain outcomes.
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username or email already registered")
)
