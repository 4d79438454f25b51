package common

const (
	// AuthorizationHeaderName is the gRPC metadata key carrying bearer
	// credentials ("Bearer <token>") on protected calls.
	AuthorizationHeaderName = "authorization"

	// RequestIDHeaderName is the metadata key used to correlate log lines of
	// a single call.
	RequestIDHeaderName = "request-id"

	// BearerScheme is the only accepted authorization scheme.
	BearerScheme = "Bearer"
)
