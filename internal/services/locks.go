package services

import "tourbooking/internal/utils"

// Package-level key mutexes: every writer to a booking row (payment
// reconciliation, admin update, reschedule approval, expiry sweep) and every
// reconciliation of a gateway order serializes here.
var (
	bookingLocks = utils.NewKeyMutex()
	orderLocks   = utils.NewKeyMutex()
)
