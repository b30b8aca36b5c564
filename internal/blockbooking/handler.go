package blockbooking

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

// POST /blockbooking/inquiries
func (h *Handler) CreateInquiry(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := auth.Identity(r.Context())
	var in InquiryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	inquiry, err := h.Service.CreateInquiry(userID, in)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inquiry)
}

// GET /blockbooking/inquiries
func (h *Handler) ListInquiries(w http.ResponseWriter, r *http.Request) {
	userID, businessType, _ := auth.Identity(r.Context())
	views, err := h.Service.ListInquiries(userID, businessType)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// GET /blockbooking/inquiries/{id}
func (h *Handler) GetInquiry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	inquiry, err := h.Service.GetInquiry(id)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inquiry)
}

// PATCH /blockbooking/inquiries/{id}/decline
func (h *Handler) DeclineInquiry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	userID, _, _ := auth.Identity(r.Context())
	closed, err := h.Service.DeclineInquiry(id, userID)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, closed)
}

// POST /blockbooking/proposals
func (h *Handler) SubmitProposal(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := auth.Identity(r.Context())
	var in ProposalInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	proposal, err := h.Service.SubmitProposal(userID, in)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proposal)
}

// GET /blockbooking/proposals
func (h *Handler) ListProposals(w http.ResponseWriter, r *http.Request) {
	userID, businessType, _ := auth.Identity(r.Context())
	list, err := h.Service.ListProposals(userID, businessType)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /blockbooking/inquiries/{id}/proposals
func (h *Handler) ListProposalsForInquiry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	userID, businessType, _ := auth.Identity(r.Context())
	view, err := h.Service.ListProposalsForInquiry(id, userID, businessType)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// PATCH /blockbooking/proposals/{id}/accept
func (h *Handler) AcceptProposal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	userID, _, _ := auth.Identity(r.Context())
	accepted, err := h.Service.AcceptProposal(id, userID)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accepted)
}
