package kitchen

import "errors"

// Domain errors for pantry reconciliation

var (
	// Input validation errors
	ErrBlankIngredientName = errors.New("ingredient name must not be blank")
	ErrMissingUserID       = errors.New("user id is required")
	ErrBlankLocationName   = errors.New("location name must not be blank")
	ErrBlankItemName       = errors.New("item name must not be blank")

	// Checkout errors
	ErrMappingMissing    = errors.New("no location mapping entry for item")
	ErrUnknownLocation   = errors.New("location does not belong to user")
	ErrNotOnShoppingList = errors.New("item is not on the shopping list")
	ErrNotChecked        = errors.New("item has not been checked off")
	ErrLocationRequired  = errors.New("mapping entry has no location; only an unassigned entry for a user without locations may omit it")

	// Concurrency errors
	ErrSubmissionInFlight = errors.New("a submission for this user is already in progress")
)
