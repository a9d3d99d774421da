package middleware

import (
	"errors"
	"net/http"
	"time"

	"storefront/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const (
	CtxSessionIDKey   = "session_id" // string
	SessionCookieName = "cart_session"
)

// 匿名セッション用ミドルウェア。
// cookieに署名付きJWT（sub=セッションID）を持たせ、無い・壊れている・署名違いなら新しく発行する。
func Session(cfg config.Config) echo.MiddlewareFunc {
	secret := []byte(cfg.SessionSecret)
	secure := cfg.GoEnv == "prod"

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ck, err := c.Cookie(SessionCookieName); err == nil {
				if sid, ok := ParseSessionToken(ck.Value, secret); ok {
					c.Set(CtxSessionIDKey, sid)
					return next(c)
				}
			}

			//新規セッション
			now := time.Now()
			sid := uuid.NewString()
			token, err := IssueSessionToken(sid, secret, now, cfg.SessionTTL)
			if err != nil {
				log.WithError(err).Error("session: failed to sign token")
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			c.SetCookie(&http.Cookie{
				Name:     SessionCookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(cfg.SessionTTL.Seconds()),
				Expires:  now.Add(cfg.SessionTTL),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(CtxSessionIDKey, sid)
			return next(c)
		}
	}
}

func IssueSessionToken(sessionID string, secret []byte, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// 署名・期限・subがUUIDかを確認してセッションIDを返す
func ParseSessionToken(raw string, secret []byte) (string, bool) {
	if raw == "" {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		//HS256以外は拒否
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !tok.Valid {
		return "", false
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", false
	}
	return claims.Subject, true
}

func errorJSON(msg string) map[string]string {
	return map[string]string{"error": msg}
}
