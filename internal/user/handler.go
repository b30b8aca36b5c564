package user

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/YarnBridge/api-trading/internal/auth"
	"github.com/YarnBridge/api-trading/internal/models"
	"github.com/YarnBridge/api-trading/internal/utils"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository()}
}

type registerRequest struct {
	Name         string `json:"name"`
	BusinessType string `json:"businessType"`
	Email        string `json:"email"`
	Password     string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type attachCertificateRequest struct {
	Name     string `json:"name"`
	FilePath string `json:"filePath"`
}

// POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	req.BusinessType = strings.TrimSpace(req.BusinessType)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		models.WriteError(w, models.NewValidationError("name, email and password are required"))
		return
	}
	if req.BusinessType != auth.BusinessTypeCustomer && req.BusinessType != auth.BusinessTypeSupplier {
		models.WriteError(w, models.NewValidationError("businessType must be customer or supplier"))
		return
	}
	if _, err := h.Repository.FindByEmail(h.DB, req.Email); err == nil {
		models.WriteError(w, &models.ConflictError{Message: "email already registered"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	u := User{
		Name:         req.Name,
		BusinessType: req.BusinessType,
		Email:        req.Email,
		Password:     hash,
	}
	if err := h.Repository.Create(h.DB, &u); err != nil {
		models.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(u)
}

// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	u, err := h.Repository.FindByEmail(h.DB, req.Email)
	if err != nil || !utils.CheckPassword(u.Password, req.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	token, err := auth.GenerateToken(u.ID, u.BusinessType)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(loginResponse{Token: token, User: *u})
}

// GET /users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := auth.Identity(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	u, err := h.Repository.FindByID(h.DB, userID)
	if err != nil {
		models.WriteError(w, &models.NotFoundError{Entity: "user", ID: userID})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}

// PUT /users/me/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := auth.Identity(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	var profile Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	u, err := h.Repository.FindByID(h.DB, userID)
	if err != nil {
		models.WriteError(w, &models.NotFoundError{Entity: "user", ID: userID})
		return
	}
	u.Profile = profile
	if err := h.Repository.Update(h.DB, u); err != nil {
		models.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}

// POST /users/me/certificates — anexa a referência (nome + caminho) de um
// certificado já armazenado pelo collaborator de upload.
func (h *Handler) AttachCertificate(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := auth.Identity(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	var req attachCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.FilePath == "" {
		models.WriteError(w, models.NewValidationError("name and filePath are required"))
		return
	}
	u, err := h.Repository.FindByID(h.DB, userID)
	if err != nil {
		models.WriteError(w, &models.NotFoundError{Entity: "user", ID: userID})
		return
	}
	u.Profile.Certificates = append(u.Profile.Certificates, Certificate{
		Name:     req.Name,
		FilePath: req.FilePath,
	})
	if err := h.Repository.Update(h.DB, u); err != nil {
		models.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u.Profile.Certificates)
}

// GET /users/suppliers — lista fornecedores para montar nominations.
func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repository.ListByBusinessType(h.DB, auth.BusinessTypeSupplier)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}
