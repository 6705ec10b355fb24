package auth

import (
	"context"
	"encoding/json"
	"net/http"

	userstore "github.com/dalemusser/markloft/internal/app/store/users"
	"github.com/dalemusser/markloft/internal/app/system/auth"
	"github.com/dalemusser/markloft/internal/app/system/respond"
	"github.com/dalemusser/markloft/internal/app/system/stamp"
	"github.com/dalemusser/markloft/internal/app/system/timeouts"
	"github.com/dalemusser/markloft/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the sign-in endpoints.
type Handler struct {
	Users        *userstore.Store
	Verifier     auth.TokenVerifier
	Log          *zap.Logger
	ExposeErrors bool
}

// NewHandler constructs an auth Handler.
func NewHandler(users *userstore.Store, verifier auth.TokenVerifier, logger *zap.Logger, exposeErrors bool) *Handler {
	return &Handler{
		Users:        users,
		Verifier:     verifier,
		Log:          logger,
		ExposeErrors: exposeErrors,
	}
}

// signInRequest is the JSON body for POST /auth/google.
type signInRequest struct {
	IDToken string `json:"idToken"`
}

// userPayload is the user object returned by the sign-in endpoints.
// createdAt keeps the day-month-year wire format shipped clients parse.
type userPayload struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	CreatedAt   string `json:"createdAt"`
}

func payloadFor(u *models.User) userPayload {
	return userPayload{
		UID:         u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		CreatedAt:   stamp.Format(u.CreatedAt),
	}
}

// HandleGoogleSignIn handles POST /auth/google. It verifies the Google
// ID token from the request body, records the sign-in (creating the
// profile on first contact) and returns the stored profile.
func (h *Handler) HandleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if req.IDToken == "" {
		respond.JSON(w, http.StatusBadRequest, respond.Envelope{
			Status:  respond.BadRequest,
			Message: "ID token is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	claims, err := h.Verifier.Verify(ctx, req.IDToken)
	if err != nil {
		h.Log.Debug("google sign-in: token rejected", zap.Error(err))
		respond.Unauthenticated(w, "Invalid ID token")
		return
	}

	user, err := h.Users.Upsert(ctx, claims)
	if err != nil {
		h.Log.Error("google sign-in: profile upsert failed",
			zap.Error(err), zap.String("user_id", claims.UserID))
		respond.StoreError(w, err, h.ExposeErrors)
		return
	}

	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Status:  respond.Success,
		Message: "Authentication successful",
		Data:    map[string]any{"user": payloadFor(user)},
	})
}

// HandleVerify handles GET /auth/verify. The bearer middleware has
// already verified the token; this only confirms the profile exists.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r)
	if !ok {
		respond.Unauthenticated(w, "No authorization token provided")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, claims.UserID)
	if err == mongo.ErrNoDocuments {
		respond.Missing(w, "User not found in database")
		return
	}
	if err != nil {
		h.Log.Error("verify: profile lookup failed",
			zap.Error(err), zap.String("user_id", claims.UserID))
		respond.StoreError(w, err, h.ExposeErrors)
		return
	}

	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Status:  respond.Success,
		Message: "User verified successfully",
		Data:    map[string]any{"user": payloadFor(user)},
	})
}
