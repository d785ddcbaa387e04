package jwt

import (
	"errors"
	"strconv"
	"time"

	"teacreek/pkg/snowflake"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token 已过期")
	ErrTokenInvalid = errors.New("token 无效")
)

// UserClaims 令牌中携带的身份信息
type UserClaims struct {
	UserID int64  `json:"id"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Manager 负责签发和解析令牌
type Manager struct {
	secret []byte
	issuer string
}

func NewManager(secret, issuer string) *Manager {
	return &Manager{secret: []byte(secret), issuer: issuer}
}

// GenToken 签发一个 ttl 后过期的访问令牌，同时返回过期时间
// 每个令牌带唯一的 jti，同一秒内的两次登录也会得到不同的令牌
func (m *Manager) GenToken(userID int64, role, name string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expireAt := now.Add(ttl)
	c := UserClaims{
		UserID: userID,
		Role:   role,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        strconv.FormatInt(snowflake.GenID(), 10),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expireAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expireAt, nil
}

// ParseToken 解析并校验令牌
// 过期返回 ErrTokenExpired，签名错误、格式错误、签发方不符返回 ErrTokenInvalid
func (m *Manager) ParseToken(tokenString string) (*UserClaims, error) {
	mc := new(UserClaims)
	keyFunc := func(*jwt.Token) (interface{}, error) { return m.secret, nil }
	token, err := jwt.ParseWithClaims(tokenString, mc, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return mc, nil
}
