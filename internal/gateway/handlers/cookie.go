package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const DefaultCookieName = "kubelearn.sid"

type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

func (cc CookieConfig) read(c *gin.Context) string {
	v, err := c.Cookie(cc.Name)
	if err != nil {
		return ""
	}
	return v
}

func (cc CookieConfig) set(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cc.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cc.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (cc CookieConfig) clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cc.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
