// shared/registry/constants.go
package registry

const (
	// RedisRegistryHashPrefix prefixes the Redis hash keys holding service
	// registration data. Full key format: "services:<serviceType>",
	// e.g. "services:scout-service".
	RedisRegistryHashPrefix = "services:"
)
