// Package businessflow contains the business logic for the application.
package businessflow

import (
	"github.com/emalab/pingflow/config"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for logging and auditing
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// redisKey namespaces a cache key with the configured prefix.
func redisKey(c config.CacheConfig, key string) string {
	return c.RedisPrefix + key
}
