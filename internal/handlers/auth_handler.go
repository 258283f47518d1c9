package handlers

import (
	"encoding/json"
	"net/http"

	"omcounter/internal/config"
	"omcounter/internal/models"
	"omcounter/internal/security"
	"omcounter/internal/service"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

// AuthHandler handles registration, login and the OAuth flows
type AuthHandler struct {
	authService          *service.AuthService
	emailService         *service.EmailService
	csrf                 *security.CSRFGenerator
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, emailService *service.EmailService, csrf *security.CSRFGenerator, cfg *config.Config) *AuthHandler {
	providers := map[string]OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Continue with Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Scopes:       []string{"openid", "email", "profile"},
				Endpoint:     google.Endpoint,
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
		"facebook": {
			Name:  "facebook",
			Label: "Continue with Facebook",
			Config: &oauth2.Config{
				ClientID:     cfg.FacebookClientID,
				ClientSecret: cfg.FacebookClientSecret,
				Scopes:       []string{"email", "public_profile"},
				Endpoint:     facebook.Endpoint,
			},
			UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email",
		},
		"apple": {
			Name:  "apple",
			Label: "Continue with Apple",
			Config: &oauth2.Config{
				ClientID:     cfg.AppleClientID,
				ClientSecret: cfg.AppleClientSecret,
				Scopes:       []string{"name", "email"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://appleid.apple.com/auth/authorize",
					TokenURL: "https://appleid.apple.com/auth/token",
				},
			},
			AuthParams: map[string]string{"response_mode": "query"},
		},
	}

	return &AuthHandler{
		authService:          authService,
		emailService:         emailService,
		csrf:                 csrf,
		oauthProviders:       providers,
		oauthRedirectBaseURL: cfg.OAuthRedirectBaseURL,
	}
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sessionResponse struct {
	User      userResponse `json:"user"`
	CSRFToken string       `json:"csrfToken"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{ID: user.ID, Name: user.Name, Email: user.Email}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	user, err := h.authService.Register(r.Context(), h.emailService, req.Email, req.Password, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toUserResponse(user))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	session, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, "session_id", session.ID, session.ExpiresAt))

	token, err := h.csrf.GenerateToken(session.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Something went wrong", "failed to generate csrf token", err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{User: toUserResponse(user), CSRFToken: token})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("session_id"); err == nil {
		if err := h.authService.Logout(cookie.Value); err != nil {
			respondServiceError(w, err)
			return
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, "session_id"))
	respondJSON(w, http.StatusOK, map[string]bool{"loggedOut": true})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Please sign in", "", nil)
		return
	}

	cookie, err := r.Cookie("session_id")
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Please sign in", "", nil)
		return
	}
	token, err := h.csrf.GenerateToken(cookie.Value)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Something went wrong", "failed to generate csrf token", err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{User: toUserResponse(user), CSRFToken: token})
}

// UpdateName handles PUT /api/auth/me
func (h *AuthHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	if err := h.authService.UpdateName(user.ID, req.Name); err != nil {
		respondServiceError(w, err)
		return
	}

	user.Name = req.Name
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

// Providers handles GET /api/auth/providers, listing the configured
// OAuth providers
func (h *AuthHandler) Providers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.oauthProviderViews())
}
