package supplychainterm

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/YarnBridge/api-trading/internal/auth"
	"github.com/YarnBridge/api-trading/internal/models"
	"github.com/gorilla/mux"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, models.NewValidationError("invalid %s %q", name, raw)
	}
	return uint(id), nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type createNewRequest struct {
	SupplierID uint `json:"supplierId"`
	TermInput
}

type acceptRequest struct {
	CustomerID uint `json:"customerId"`
	SupplierID uint `json:"supplierId"`
}

// POST /supply-chain-terms/general
func (h *Handler) CreateGeneral(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := auth.Identity(r.Context())
	var in TermInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	term, err := h.Service.CreateGeneral(userID, in)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, term)
}

// GET /supply-chain-terms/general
func (h *Handler) GetGeneral(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := auth.Identity(r.Context())
	term, err := h.Service.GetGeneral(userID)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, term)
}

// PUT /supply-chain-terms/general/{id}
func (h *Handler) UpdateGeneral(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	userID, _, _ := auth.Identity(r.Context())
	var in TermInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	term, err := h.Service.UpdateGeneral(id, userID, in)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, term)
}

// POST /supply-chain-terms
func (h *Handler) CreateNew(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := auth.Identity(r.Context())
	var req createNewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	term, err := h.Service.CreateNew(userID, req.SupplierID, req.TermInput)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, term)
}

// GET /supply-chain-terms
func (h *Handler) ListScoped(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := auth.Identity(r.Context())
	list, err := h.Service.ListScoped(userID)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// PATCH /supply-chain-terms/{id}/renew
func (h *Handler) Renew(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	userID, _, _ := auth.Identity(r.Context())
	var in TermInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	term, err := h.Service.Renew(id, userID, in)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, term)
}

// PATCH /supply-chain-terms/{id}/reply
func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	userID, _, _ := auth.Identity(r.Context())
	var in ReplyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	term, err := h.Service.Reply(id, userID, in)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, term)
}

// PATCH /supply-chain-terms/{id}/accept
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	term, err := h.Service.Accept(id, req.CustomerID, req.SupplierID)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, term)
}
