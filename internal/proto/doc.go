// Package proto contains the generated messages and gRPC bindings of
// gophauth.AuthService. The source lives in proto/gophauth.proto; run
// `buf generate` from the repository root to refresh it.
package proto
