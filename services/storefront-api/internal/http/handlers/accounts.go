package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ecommerce-storefront/services/storefront-api/internal/service"
	"ecommerce-storefront/shared/pkg/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type AccountsService interface {
	CreateAccount(ctx context.Context, in service.CreateAccountInput) (*models.Account, error)
	GetAllAccounts(ctx context.Context) ([]models.Account, error)
	GetAccountsByEmail(ctx context.Context, email string) ([]models.Account, error)
	Authenticate(ctx context.Context, email, password string) (*models.Account, error)
	UpdateCart(ctx context.Context, email string, cart []models.LineItem) (*models.Account, error)
}

type AccountsHandler struct {
	base
	Svc AccountsService
}

func NewAccountsHandler(svc AccountsService, log zerolog.Logger, timeout time.Duration) *AccountsHandler {
	return &AccountsHandler{base: base{Log: log, Timeout: timeout}, Svc: svc}
}

type createAccountReq struct {
	Firstname       string `json:"firstname"`
	Lastname        string `json:"lastname"`
	Email           string `json:"email"`
	Number          string `json:"number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Address         string `json:"address"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateCartReq struct {
	Cart []models.LineItem `json:"cart"`
}

func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountReq
	if err := decodeBody(r, w, &req); err != nil {
		h.fail(w, r, "create account", err)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	a, err := h.Svc.CreateAccount(ctx, service.CreateAccountInput{
		Firstname:       req.Firstname,
		Lastname:        req.Lastname,
		Email:           req.Email,
		PhoneNumber:     req.Number,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Address:         req.Address,
	})
	switch {
	case errors.Is(err, service.ErrAlreadyExists):
		WriteFail(w, http.StatusInternalServerError, "User Already Exists")
	case errors.Is(err, service.ErrHashing):
		h.Log.Error().Err(err).Msg("hash password")
		WriteFail(w, http.StatusServiceUnavailable, "Unable to secure password, try again later")
	case err != nil:
		h.fail(w, r, "create account", err)
	default:
		h.Log.Info().Str("email", a.Email).Msg("account created")
		writeOK(w, a, "Account created successfully")
	}
}

func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	accounts, err := h.Svc.GetAllAccounts(ctx)
	if err != nil {
		h.fail(w, r, "list accounts", err)
		return
	}
	writeOK(w, accounts, "Accounts fetched successfully")
}

func (h *AccountsHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	accounts, err := h.Svc.GetAccountsByEmail(ctx, chi.URLParam(r, "email"))
	if err != nil {
		h.fail(w, r, "get accounts by email", err)
		return
	}
	writeOK(w, accounts, "Account details fetched successfully")
}

func (h *AccountsHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeBody(r, w, &req); err != nil {
		h.fail(w, r, "login", err)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	a, err := h.Svc.Authenticate(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrMissingCredentials):
		WriteFail(w, http.StatusBadRequest, "Email and password are required")
	case errors.Is(err, service.ErrNotFound):
		WriteFail(w, http.StatusUnauthorized, "Account not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteFail(w, http.StatusForbidden, "Invalid credentials")
	case err != nil:
		h.fail(w, r, "login", err)
	default:
		writeOK(w, a, "Login successful")
	}
}

func (h *AccountsHandler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	var req updateCartReq
	if err := decodeBody(r, w, &req); err != nil {
		h.fail(w, r, "update cart", err)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	email := chi.URLParam(r, "email")
	a, err := h.Svc.UpdateCart(ctx, email, req.Cart)
	switch {
	case errors.Is(err, service.ErrNotFound):
		WriteFail(w, http.StatusNotFound, "Account not found")
	case err != nil:
		h.fail(w, r, "update cart", err)
	default:
		writeOK(w, a, "Cart updated successfully")
	}
}
