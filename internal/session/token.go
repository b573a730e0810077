package session

import "github.com/golang-jwt/jwt/v4"

// userIDFromToken recovers the user id from the bearer token's claims without
// verifying the signature. The token is opaque to the client except as a
// best-effort namespace hint before /auth/check has resolved the profile.
func userIDFromToken(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	for _, key := range []string{"id", "user_id", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
