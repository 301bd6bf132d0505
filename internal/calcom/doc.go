// Package calcom provides a thin client for the Cal.com v1 booking API.
//
// The client exposes the three calendar operations the assistant needs:
// listing bookings, creating a booking and cancelling one. Listing returns
// a tagged result so callers can distinguish an empty calendar from a fetch
// failure; booking and cancellation translate every outcome, including
// remote errors, into user-facing confirmation text.
package calcom
