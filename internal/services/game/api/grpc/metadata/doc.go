// Package metadata defines the x-tabletop-* request headers and the
// interceptors that guarantee every call carries a request id.
package metadata
