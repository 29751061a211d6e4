package domain

import "errors"

var (
	// ErrNotFound means the booking/cancellation/transaction id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrStateConflict means a transition guard failed: wrong status, trip already
	// started, or a refund track that is not pending. The caller must re-fetch
	// state before retrying.
	ErrStateConflict = errors.New("state conflict")

	// ErrDuplicateDelivery means the webhook idempotency check found an existing
	// completed transaction. The provider still receives a success response.
	ErrDuplicateDelivery = errors.New("duplicate delivery")

	// ErrExternalService means an outbound call to the payment, e-signature or
	// notification provider failed.
	ErrExternalService = errors.New("external service failure")
)
