// Package httpserver exposes the storefront over a JSON HTTP API.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/and161185/storefront/internal/errs"
	"github.com/and161185/storefront/internal/model"
	"github.com/and161185/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Server wires the storefront into HTTP handlers.
type Server struct {
	shop   *service.Storefront
	tokens *Tokens
	log    *zap.Logger
}

// New constructs an HTTP server with injected storefront and token issuer.
func New(shop *service.Storefront, tokens *Tokens, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{shop: shop, tokens: tokens, log: log}
}

// Routes returns the root handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(s.log), Logging(s.log), s.authenticate)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/categories", s.categories)
	r.Get("/products", s.products)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)
		r.Post("/logout", s.logout)
		r.Get("/me", s.me)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", s.cart)
		r.Post("/items", s.addItem)
		r.Put("/items/{id}", s.setQuantity)
		r.Delete("/items/{id}", s.removeItem)
		r.Post("/checkout", s.checkout)
	})
	return r
}

// --- Catalog ---

func (s *Server) categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, service.Categories())
}

func (s *Server) products(w http.ResponseWriter, r *http.Request) {
	c := model.Category(r.URL.Query().Get("category"))
	if c == "" {
		c = model.CategoryAll
	}
	if !slices.ContainsFunc(service.Categories(), func(ci model.CategoryInfo) bool { return ci.Key == c }) {
		writeError(w, s.log, errs.ErrValidation)
		return
	}
	out := []productView{}
	for p := range s.shop.Inventory.FilterByCategory(c) {
		out = append(out, viewProduct(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// --- Auth ---

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresAt   time.Time     `json:"expires_at"`
	Session     model.Session `json:"session"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, s.log, &req) {
		return
	}
	sess, err := s.shop.Register(r.Context(), service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	s.issue(w, http.StatusCreated, sess)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, s.log, &req) {
		return
	}
	sess, err := s.shop.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	s.issue(w, http.StatusOK, sess)
}

func (s *Server) issue(w http.ResponseWriter, code int, sess model.Session) {
	tok, exp, err := s.tokens.Issue(sess.Email)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, code, authResponse{AccessToken: tok, ExpiresAt: exp, Session: sess})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := CapabilityFromCtx(r.Context()).(model.Authenticated); !ok {
		writeError(w, s.log, errs.ErrForbidden)
		return
	}
	if err := s.shop.Logout(r.Context()); err != nil {
		writeError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	a, ok := CapabilityFromCtx(r.Context()).(model.Authenticated)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "session": a.Session})
}

// --- Cart ---

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) cart(w http.ResponseWriter, r *http.Request) {
	if _, ok := CapabilityFromCtx(r.Context()).(model.Authenticated); !ok {
		writeError(w, s.log, errs.ErrForbidden)
		return
	}
	writeJSON(w, http.StatusOK, viewCart(s.shop.Cart.Lines()))
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decode(w, r, s.log, &req) {
		return
	}
	if err := s.shop.Cart.AddItem(CapabilityFromCtx(r.Context()), req.ProductID); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, viewCart(s.shop.Cart.Lines()))
}

func (s *Server) setQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r, s.log)
	if !ok {
		return
	}
	var req setQuantityRequest
	if !decode(w, r, s.log, &req) {
		return
	}
	if err := s.shop.Cart.SetQuantity(CapabilityFromCtx(r.Context()), id, req.Quantity); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, viewCart(s.shop.Cart.Lines()))
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r, s.log)
	if !ok {
		return
	}
	if err := s.shop.Cart.RemoveItem(CapabilityFromCtx(r.Context()), id); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, viewCart(s.shop.Cart.Lines()))
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	rec, err := s.shop.Cart.Checkout(r.Context(), CapabilityFromCtx(r.Context()))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, viewReceipt(rec))
}

// --- helpers ---

func productID(w http.ResponseWriter, r *http.Request, log *zap.Logger) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, log, errs.ErrValidation)
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, log *zap.Logger, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		log.Debug("bad request body", zap.Error(err))
		writeError(w, log, errs.ErrValidation)
		return false
	}
	return true
}

type errorBody struct {
	Error string `json:"error"`
}

// statusOf maps domain sentinels to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, errs.ErrExceedsStock),
		errors.Is(err, errs.ErrInsufficientStock),
		errors.Is(err, errs.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	code := statusOf(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		msg = "internal"
	}
	writeJSON(w, code, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
