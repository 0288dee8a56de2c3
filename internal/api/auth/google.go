package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"community-app/internal/domain/users"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

func (h *Handler) googleOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.cfg.Google.ClientID,
		ClientSecret: h.cfg.Google.ClientSecret,
		RedirectURL:  h.cfg.Google.RedirectURL,
		Scopes: []string{
			"openid",
			"email",
			"profile",
		},
		Endpoint: google.Endpoint,
	}
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GET /auth/google
func (h *Handler) GoogleStart(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate state"})
		return
	}

	// store state in an HttpOnly cookie
	c.SetCookie(
		"oauth_state",
		state,
		300, // 5 minutes
		"/",
		"",    // domain (set in prod)
		false, // secure (true in prod HTTPS)
		true,  // httpOnly
	)

	url := h.googleOAuthConfig().AuthCodeURL(state, oauth2.AccessTypeOnline)
	c.Redirect(http.StatusFound, url)
}

// GET /auth/google/callback
func (h *Handler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code/state"})
		return
	}

	cookieState, err := c.Cookie("oauth_state")
	if err != nil || cookieState != state {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}

	tok, err := h.googleOAuthConfig().Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "failed to exchange code"})
		return
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing id_token"})
		return
	}

	claims, err := h.verifyGoogleIDToken(c, rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if claims.Email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "google account has no email"})
		return
	}

	user, err := h.findOrCreateGoogleUser(claims)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	tokenString, err := h.issueJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create token"})
		return
	}

	if h.cfg.Google.FrontendRedirect != "" {
		c.Redirect(http.StatusFound, h.cfg.Google.FrontendRedirect+"#token="+tokenString)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tokenString})
}

type googleClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

func (h *Handler) verifyGoogleIDToken(c *gin.Context, rawIDToken string) (*googleClaims, error) {
	provider, err := oidc.NewProvider(c.Request.Context(), "https://accounts.google.com")
	if err != nil {
		return nil, errors.New("failed to reach google oidc provider")
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: h.cfg.Google.ClientID})
	idToken, err := verifier.Verify(c.Request.Context(), rawIDToken)
	if err != nil {
		return nil, errors.New("invalid google id_token")
	}

	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.New("failed to parse google claims")
	}
	if claims.Sub == "" {
		return nil, errors.New("google id_token missing sub")
	}
	return &claims, nil
}

func (h *Handler) findOrCreateGoogleUser(claims *googleClaims) (*users.User, error) {
	var user users.User

	err := h.db.Where("google_sub = ?", claims.Sub).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Link an existing local account with the same email, else create.
	err = h.db.Where("email = ?", claims.Email).First(&user).Error
	if err == nil {
		sub := claims.Sub
		if err := h.db.Model(&user).Updates(map[string]interface{}{
			"google_sub":  sub,
			"is_verified": true,
		}).Error; err != nil {
			return nil, err
		}
		user.GoogleSub = &sub
		user.IsVerified = true
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sub := claims.Sub
	user = users.User{
		Name:         claims.GivenName,
		Lastname:     claims.FamilyName,
		Email:        claims.Email,
		AuthProvider: "google",
		GoogleSub:    &sub,
		Role:         users.RoleUser,
		IsVerified:   claims.EmailVerified,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
