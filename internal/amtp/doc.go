// Package amtp is the HTTP client for an Agent Message Transfer Protocol
// gateway. Each gateway capability is one Client method with a fixed method,
// path and authorization mode; every non-2xx answer becomes an *Error and
// every failure to reach the gateway becomes a *TransportError.
//
// The client never retries. A call blocks until the gateway answers or the
// context passed to it is done.
package amtp
