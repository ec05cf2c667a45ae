package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"docstore-api/internal/httputil"
	"docstore-api/internal/logging"
	"docstore-api/internal/user"
)

// Handler contains HTTP handlers for account and password-reset endpoints.
type Handler struct {
	service *Service
	echoOTP bool // dev-only: echo the issued code in the forgot-password response
}

func NewHandler(service *Service, echoOTP bool) *Handler {
	return &Handler{
		service: service,
		echoOTP: echoOTP,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name            string      `json:"name"`
	Phone           string      `json:"phone"`
	Age             json.Number `json:"age"`
	Gender          string      `json:"gender"`
	Email           string      `json:"email"`
	Username        string      `json:"username"`
	Password        string      `json:"password"`
	ConfirmPassword string      `json:"confirmPassword"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ForgotPasswordRequest represents the password reset request
type ForgotPasswordRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// ResetPasswordRequest represents the password reset confirmation
type ResetPasswordRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	OTP             string `json:"otp"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// MessageResponse is a plain success message
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse carries the authenticated account, password stripped
type LoginResponse struct {
	Message string        `json:"message"`
	User    *user.Account `json:"user"`
}

// ForgotPasswordResponse echoes the code only when the server runs in dev mode
type ForgotPasswordResponse struct {
	Message string `json:"message"`
	OTP     string `json:"otp,omitempty"`
}

// Register handles user registration
// @Summary      Register a new account
// @Description  Create an account. Username and email must be unique.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration fields"
// @Success      201 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error or duplicate username/email"
// @Failure      500 {object} httputil.ErrorResponse "Store error"
// @Router       /register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"username": req.Username})

	err := h.service.Register(r.Context(), RegisterInput{
		Name:            req.Name,
		Phone:           req.Phone,
		Age:             req.Age,
		Gender:          req.Gender,
		Email:           req.Email,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			logger.Warn("registration failed: missing fields")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeMissingFields, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordMismatch):
			logger.Warn("registration failed: password mismatch")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordMismatch, http.StatusBadRequest)
		case errors.Is(err, ErrUsernameTaken):
			logger.Warn("registration failed: username already taken")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeUsernameTaken, http.StatusBadRequest)
		case errors.Is(err, ErrEmailRegistered):
			logger.Warn("registration failed: email already registered")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeEmailRegistered, http.StatusBadRequest)
		default:
			logger.Error("registration failed: store error", "error", err.Error())
			httputil.RespondError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	logger.Info("account registered")

	httputil.RespondJSON(w, MessageResponse{Message: "registration successful"}, http.StatusCreated)
}

// Login handles user login
// @Summary      Log in
// @Description  Authenticate with username and password. Returns the account without its password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      500 {object} httputil.ErrorResponse "Store error"
// @Router       /login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"username": req.Username})

	account, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			logger.Warn("login failed: missing fields")
			httputil.RespondErrorWithCode(w, "username and password required", httputil.CodeMissingFields, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidCredentials):
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		default:
			logger.Error("login failed: store error", "error", err.Error())
			httputil.RespondError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	logger.Info("login successful")

	httputil.RespondJSON(w, LoginResponse{Message: "login successful", User: account}, http.StatusOK)
}

// ForgotPassword issues a reset code
// @Summary      Request a password reset code
// @Description  Issue a 6-digit code for the (username, email) pair, valid for 5 minutes. The code is delivered out of band; dev builds also echo it in the response.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Account identification"
// @Success      200 {object} ForgotPasswordResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields"
// @Failure      404 {object} httputil.ErrorResponse "Unknown username/email pair"
// @Failure      500 {object} httputil.ErrorResponse "Store error"
// @Router       /forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid forgot password request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"username": req.Username})

	otp, err := h.service.ForgotPassword(r.Context(), req.Email, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			logger.Warn("forgot password failed: missing fields")
			httputil.RespondErrorWithCode(w, "email and username required", httputil.CodeMissingFields, http.StatusBadRequest)
		case errors.Is(err, ErrUserNotFound):
			logger.Warn("forgot password failed: user not found")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeUserNotFound, http.StatusNotFound)
		default:
			logger.Error("forgot password failed: store error", "error", err.Error())
			httputil.RespondError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	logger.Info("otp issued")

	resp := ForgotPasswordResponse{Message: "otp sent to email"}
	if h.echoOTP {
		// Demo-only convenience, never enabled in production builds.
		resp.OTP = otp
	}
	httputil.RespondJSON(w, resp, http.StatusOK)
}

// ResetPassword consumes a reset code
// @Summary      Reset password with a code
// @Description  Verify the code issued by forgot-password and set a new password. The code is single-use and expires after 5 minutes.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Reset fields"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error or invalid/expired code"
// @Failure      404 {object} httputil.ErrorResponse "Unknown username/email pair"
// @Failure      500 {object} httputil.ErrorResponse "Store error"
// @Router       /reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reset password request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"username": req.Username})

	err := h.service.ResetPassword(r.Context(), ResetInput{
		Email:           req.Email,
		Username:        req.Username,
		OTP:             req.OTP,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			logger.Warn("password reset failed: missing fields")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeMissingFields, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordMismatch):
			logger.Warn("password reset failed: password mismatch")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordMismatch, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidOTP):
			logger.Warn("password reset failed: invalid or expired otp")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidOTP, http.StatusBadRequest)
		case errors.Is(err, ErrUserNotFound):
			logger.Warn("password reset failed: user not found")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeUserNotFound, http.StatusNotFound)
		default:
			logger.Error("password reset failed: store error", "error", err.Error())
			httputil.RespondError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	logger.Info("password updated")

	httputil.RespondJSON(w, MessageResponse{Message: "password updated successfully"}, http.StatusOK)
}
