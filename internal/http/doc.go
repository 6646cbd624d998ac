// Package http exposes the chat webhook and health endpoints.
//
// The router serves:
//   - POST /whatsapp: inbound chat message from the messaging provider as a
//     form with `From` (sender identity, e.g. "whatsapp:+56912345678") and
//     `Body`. The reply is a TwiML document, `<Response><Message>...</Message></Response>`.
//   - GET /: plain text liveness message.
//   - GET /healthz: pings the database. 200 {"status":"ok"} or 503
//     {"status":"unavailable"}.
package http
