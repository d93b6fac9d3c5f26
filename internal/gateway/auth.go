package gateway

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"
)

const jwtCookieName = "JWT"

// Authenticated reports whether the request carries a valid session
// token in the JWT cookie or the Authorization header. Tokens must be
// HMAC-signed with JWTSecret, unexpired and name a user.
func (c *Config) Authenticated(req *http.Request) bool {
	if !c.AuthEnabled || c.JWTSecret == "" {
		return false
	}
	tokenStr := c.extractToken(req)
	if tokenStr == "" {
		return false
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(c.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return false
	}

	user, ok := claims["user"].(map[string]interface{})
	if !ok {
		return false
	}
	id, _ := user["id"].(string)
	return id != ""
}

func (c *Config) extractToken(req *http.Request) string {
	if cookie, err := req.Cookie(jwtCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := req.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
