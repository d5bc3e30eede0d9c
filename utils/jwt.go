package utils

import (
	"errors"
	"os"
	"time"

	"leadline/config"

	"github.com/golang-jwt/jwt"
)

// ErrNoSecret is returned when no signing secret is configured.
var ErrNoSecret = errors.New("jwt secret not configured")

func secretKey() []byte {
	if s := config.AppConfig.JWTSecret; s != "" {
		return []byte(s)
	}
	return []byte(os.Getenv("JWT_SECRET"))
}

// GenerateToken creates a signed token for a trusted caller of the call API
// (the conversational channel). The token expires after duration.
func GenerateToken(subject string, duration time.Duration) (string, error) {
	key := secretKey()
	if len(key) == 0 {
		return "", ErrNoSecret
	}
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(duration).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	key := secretKey()
	if len(key) == 0 {
		return nil, ErrNoSecret
	}
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	})
}

// ExtractIDFromToken extracts the subject from a valid token string.
func ExtractIDFromToken(tokenString string) (string, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token does not contain a valid 'sub' claim")
	}

	return sub, nil
}
