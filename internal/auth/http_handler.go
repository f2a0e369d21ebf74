package auth

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	log     *zap.Logger
}

func NewHTTPHandler(service *Service, log *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, log: log}
}

type registerReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /register
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body registerReq true "Registration request"
// @Success 200 {object} httpx.MessageResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /register [post]
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BodyError(w, r, err, "Invalid request body")
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.ValidationFailed(w, r, details)
		return
	}

	_, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			httpx.JSONError(w, r, http.StatusBadRequest, "USERNAME_TAKEN", "Username already registered", nil)
		case errors.Is(err, ErrInvalidInput):
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		default:
			h.internalError(w, r, err)
		}
		return
	}
	httpx.JSONMessage(w, "User registered successfully")
}

type loginReq struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

const maxFormMemory = 32 << 10

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Login handles POST /login
// @Summary Obtain an access token
// @Description Password grant. Accepts application/x-www-form-urlencoded or JSON.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} tokenResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /login [post]
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLogin(w, r)
	if !ok {
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.ValidationFailed(w, r, details)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Unauthorized(w, r, "Incorrect username or password")
			return
		}
		h.internalError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, tokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   token.ExpiresIn,
	})
}

func decodeLogin(w http.ResponseWriter, r *http.Request) (loginReq, bool) {
	var req loginReq
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.BodyError(w, r, err, "Invalid request body")
			return req, false
		}
		return req, true
	}

	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		httpx.BodyError(w, r, err, "Invalid form body")
		return req, false
	}
	req.Username = r.PostForm.Get("username")
	req.Password = r.PostForm.Get("password")
	return req, true
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("auth request failed",
		zap.String("request_id", httpx.RequestIDFrom(r)),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	httpx.InternalError(w, r)
}
