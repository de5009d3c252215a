// Package allocation implements the booking rules applied to a working copy
// of the floor plan: desk recommendation, best-fit meeting placement,
// single-room reservations and live check-in/out.
//
// Functions here never talk to storage. Callers fetch a plan, apply one of
// these operations to the copy and commit the result; a stale commit means the
// operation must be re-evaluated against the newer plan.
package allocation
