package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func newServer(t *testing.T, setup func(r *gin.Engine)) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	setup(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newSession(t *testing.T, url string) *Session {
	t.Helper()

	s, err := NewSession(url, 0)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestGet_SendsBearerAndDecodes(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(r *gin.Engine) {
		r.GET("/v1/clans/:tag/members", func(c *gin.Context) {
			if c.GetHeader("Authorization") != "Bearer secret" {
				c.JSON(http.StatusForbidden, gin.H{"reason": "accessDenied"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"items": []gin.H{{"tag": c.Param("tag")}}})
		})
	})

	s := newSession(t, srv.URL+"/v1/")
	s.SetJWT("secret")

	var out struct {
		Items []struct {
			Tag string `json:"tag"`
		} `json:"items"`
	}
	require.NoError(t, s.Get(context.Background(), "/clans/%23ABC/members", &out))
	require.Len(t, out.Items, 1)
	require.Equal(t, "#ABC", out.Items[0].Tag)
}

func TestGet_StatusError(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(r *gin.Engine) {
		r.GET("/x", func(c *gin.Context) {
			c.JSON(http.StatusForbidden, gin.H{"reason": "accessDenied"})
		})
	})

	s := newSession(t, srv.URL)
	err := s.Get(context.Background(), "/x", nil)
	require.Error(t, err)
	require.True(t, IsStatus(err, http.StatusForbidden))
	require.False(t, IsStatus(err, http.StatusNotFound))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Contains(t, se.Payload, "accessDenied")
}

func TestPost_JSONBodyAndCookies(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(r *gin.Engine) {
		r.POST("/login", func(c *gin.Context) {
			var body struct {
				Email string `json:"email"`
			}
			if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "bad body"})
				return
			}
			c.SetCookie("session", "s1", 3600, "/", "", false, true)
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		r.POST("/whoami", func(c *gin.Context) {
			cookie, err := c.Cookie("session")
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"session": cookie})
		})
	})

	s := newSession(t, srv.URL)
	require.NoError(t, s.Post(context.Background(), "/login", map[string]string{"email": "a@b.c"}, nil))

	var out struct {
		Session string `json:"session"`
	}
	require.NoError(t, s.Post(context.Background(), "/whoami", nil, &out))
	require.Equal(t, "s1", out.Session)
}

func TestExternalIP(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(r *gin.Engine) {
		r.GET("/plain", func(c *gin.Context) {
			c.String(http.StatusOK, "203.0.113.7\n")
		})
	})

	s := newSession(t, srv.URL)
	ip, err := ExternalIP(context.Background(), s.HTTPClient(), srv.URL+"/plain")
	require.NoError(t, err)
	require.Equal(t, "203.0.113.7", ip)
}
