// Package http provides HTTP handlers and middleware for the asset inventory API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"username","password","totp_code"}.
//     Response: {"token","expires_at","user"} with the token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie. Accounts with two-factor
//     authentication enabled must supply a valid `totp_code`.
//   - DELETE /sessions/current: revokes the current session token extracted from the
//     Authorization header or session cookie. Returns 204 No Content and clears the cookie.
//   - GET /users, POST /users, GET /users/{id}, PUT /users/{id}, DELETE /users/{id}:
//     account management endpoints exchanging the `userDTO` payload defined in
//     user_handler.go. Listing and mutations require the administrator role while
//     GET /users/{id} also accepts the caller's own id (or the literal "me").
//   - POST /users/me/two-factor, POST /users/me/two-factor/confirm,
//     DELETE /users/{id}/two-factor: two-factor authentication lifecycle for the
//     calling principal; disabling another account's enrollment requires admin.
//   - GET /equipment, POST /equipment, GET /equipment/{id}, PUT /equipment/{id},
//     DELETE /equipment/{id}: hardware asset endpoints exchanging the `equipmentDTO`
//     payload defined in equipment_handler.go. Listing accepts the `status`, `category`
//     and `assigned_to` query filters. Mutations require the editor or administrator role.
//   - GET /equipment/{id}/history: change history for one asset, newest first.
//   - POST /equipment/inventory-check: applies a bulk stocktake. Body:
//     {"items":[{"equipment_id","status","notes"}]}. The batch is atomic.
//   - GET /licenses, POST /licenses, GET /licenses/{id}, PUT /licenses/{id},
//     DELETE /licenses/{id}: software license endpoints exchanging the `licenseDTO`
//     payload defined in license_handler.go.
//   - GET /audit-log: administrator view of recorded actions, newest first. Accepts
//     a `limit` query parameter.
//   - GET /settings, PUT /settings: application wide configuration exchanged as a
//     flat key/value map. Updates require the administrator role.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
