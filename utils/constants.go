// File: utils/constants.go
package utils

// TokenKeyPrefix is the prefix used for Redis OAuth token keys.
const TokenKeyPrefix = "oauth:token:"
