// Package http exposes the workspace planner over HTTP.
//
// Every route except /health and /metrics authenticates with HTTP Basic
// credentials checked against the user directory:
//   - GET /floorplan returns the latest plan; PUT /floorplan commits a full
//     plan carrying the next version (administrators only). A stale version
//     answers 409 with the authoritative plan under "latest".
//   - GET /floorplan/stream upgrades to a websocket that pushes the current
//     plan and then every committed plan.
//   - POST /ops/external-mutation commits a synthetic foreign edit
//     (administrators only).
//   - GET /alerts, GET /floors/{floorID}/stats and GET /rooms/{roomID}/schedule
//     report occupancy and upcoming bookings.
//   - GET /desks/recommendations?needs_workstation=&floor= ranks desks.
//   - POST /meetings books the best fitting meeting room; POST
//     /rooms/{roomID}/meetings books a specific room. Booked answers 201,
//     conflicts 409 and other refusals 422, always with the result body.
//   - POST /checkins and DELETE /checkins/current seat and release the caller.
package http
