package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin = "admin"
	issuer    = "penbook"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidPassword = errors.New("invalid password")
)

// Claims 管理员令牌声明
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type JWT struct {
	Secret   []byte
	TokenTTL time.Duration
	now      func() time.Time
}

func NewJWT(secret string, ttl time.Duration) *JWT {
	return &JWT{Secret: []byte(secret), TokenTTL: ttl, now: time.Now}
}

// Sign 签发管理员令牌，每个令牌有独立的 ID 以便注销
func (j *JWT) Sign() (token string, claims Claims, err error) {
	now := j.now().UTC()
	claims = Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Second)),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TokenTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(j.Secret)
	if err != nil {
		return "", Claims{}, err
	}
	return token, claims, nil
}

func (j *JWT) Verify(token string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(j.now))
	if err != nil {
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}
	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || c.Role != RoleAdmin {
		return Claims{}, ErrInvalidToken
	}
	return *c, nil
}

// PasswordChecker 校验管理员口令，配置了 bcrypt 哈希时优先使用哈希
type PasswordChecker struct {
	plain string
	hash  []byte
}

func NewPasswordChecker(plain, hash string) *PasswordChecker {
	p := &PasswordChecker{plain: plain}
	if hash != "" {
		p.hash = []byte(hash)
	}
	return p
}

func (p *PasswordChecker) Check(password string) error {
	if password == "" {
		return ErrInvalidPassword
	}
	if p.hash != nil {
		if err := bcrypt.CompareHashAndPassword(p.hash, []byte(password)); err != nil {
			return ErrInvalidPassword
		}
		return nil
	}
	if p.plain == "" || subtle.ConstantTimeCompare([]byte(p.plain), []byte(password)) != 1 {
		return ErrInvalidPassword
	}
	return nil
}
