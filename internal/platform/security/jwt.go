package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type JWTManager struct {
	secret    []byte
	accessTTL time.Duration
}

func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), accessTTL: accessTTL}
}

// IssueAccess signs an HS256 access token for the given account. The scope
// claim distinguishes a full login token from one minted by PIN consumption.
func (j *JWTManager) IssueAccess(userID int64, email string, role int, scope string) (string, time.Time, error) {
	exp := time.Now().Add(j.accessTTL)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"scope": scope,
		"exp":   exp.Unix(),
		"iat":   time.Now().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := t.SignedString(j.secret)
	return token, exp, err
}
