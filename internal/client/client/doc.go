// Package client contains the client side of the gophauth API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     Register, Login, VerifyOTP, WhoAmI and Ping.
//  2. A concrete gRPC implementation (see GRPCClient) that manages a
//     connection, tags each call with a request id, passes bearer tokens
//     in the authorization header and maps gRPC status codes to sentinel
//     errors.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrAlreadyExists, ErrInvalidInput.
package client
