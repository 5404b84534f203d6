// Package metadata handles the request headers of the sect service.
//
// Every unary call gets a request id, taken from the caller's
// x-sect-ascension-request-id header or generated. The id is echoed back in
// response headers, stored in the context for audit records and set on the
// active trace span.
package metadata
