package jwt

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrInvalidClaims = errors.New("invalid token claims")

// Claims is the identity carried by an access token. Tokens are issued by the
// platform's auth service; this package verifies them and reads them back.
type Claims struct {
	UserID     string
	EmployeeID string
	CompanyID  string
	Role       user.Role
}

type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	GenerateAccessToken(c Claims) (token string, expiresAt int64, err error)
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
	accessTTL time.Duration
	now       func() time.Time
}

func NewJWTService(secretKey string, accessTTL time.Duration) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(c Claims) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTTL).Unix()
	claims := map[string]any{
		"user_id":     c.UserID,
		"employee_id": valueOrNil(c.EmployeeID),
		"company_id":  valueOrNil(c.CompanyID),
		"role":        string(c.Role),
		"type":        "access",
		"exp":         expiresAt,
	}
	_, token, err = j.tokenAuth.Encode(claims)
	return token, expiresAt, err
}

// ParseClaims reads an access token's claim map. employee_id and company_id
// may be null for users that have not joined a company yet.
func ParseClaims(m map[string]any) (Claims, error) {
	if t, _ := m["type"].(string); t != "access" {
		return Claims{}, ErrInvalidClaims
	}
	userID, _ := m["user_id"].(string)
	role, _ := m["role"].(string)
	if userID == "" || role == "" {
		return Claims{}, ErrInvalidClaims
	}
	employeeID, _ := m["employee_id"].(string)
	companyID, _ := m["company_id"].(string)
	return Claims{
		UserID:     userID,
		EmployeeID: employeeID,
		CompanyID:  companyID,
		Role:       user.Role(role),
	}, nil
}

func valueOrNil(value string) any {
	if value == "" {
		return nil
	}
	return value
}
