package checkout

import "errors"

// ErrNotAtReview guards against order submission from any step but review,
// including a second submission after confirmation.
var ErrNotAtReview = errors.New("checkout: order submission only allowed at review")

// ErrEmptyBag rejects submission once the cart has been emptied.
var ErrEmptyBag = errors.New("checkout: bag is empty")
