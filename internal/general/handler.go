package general

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/YarnBridge/api-trading/internal/auth"
	"github.com/YarnBridge/api-trading/internal/models"
	"github.com/gorilla/mux"
)

// Handler traduz HTTP para o Service; nenhuma regra de negócio aqui.
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

type createInquiriesRequest struct {
	Inquiries []InquiryInput `json:"inquiries"`
}

type submitProposalsRequest struct {
	Proposals []ProposalInput `json:"proposals"`
}

type closeInquiryRequest struct {
	Reason string `json:"reason"`
}

type acceptProposalRequest struct {
	PO string `json:"po"`
}

// POST /general/inquiries
func (h *Handler) CreateInquiries(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := auth.Identity(r.Context())
	var req createInquiriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	created, err := h.Service.CreateInquiries(userID, req.Inquiries)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GET /general/inquiries
func (h *Handler) ListInquiries(w http.ResponseWriter, r *http.Request) {
	userID, businessType, _ := auth.Identity(r.Context())
	views, err := h.Service.ListInquiries(userID, businessType)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// GET /general/inquiries/{id}
func (h *Handler) GetInquiry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	userID, businessType, _ := auth.Identity(r.Context())
	detail, err := h.Service.GetInquiry(id, userID, businessType)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// PATCH /general/inquiries/{id}/close
func (h *Handler) CloseInquiry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	userID, _, _ := auth.Identity(r.Context())
	inquiry, err := h.Service.GetInquiry(id, userID, auth.BusinessTypeCustomer)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	if inquiry.Inquiry.CustomerID != userID {
		models.WriteError(w, &models.AuthorizationError{Message: "caller is not a party to this inquiry"})
		return
	}
	var req closeInquiryRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	closed, err := h.Service.CloseInquiry(id, req.Reason)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, closed)
}

// POST /general/proposals
func (h *Handler) SubmitProposals(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := auth.Identity(r.Context())
	var req submitProposalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	result, err := h.Service.SubmitProposals(userID, req.Proposals)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// GET /general/proposals
func (h *Handler) ListProposals(w http.ResponseWriter, r *http.Request) {
	userID, businessType, _ := auth.Identity(r.Context())
	list, err := h.Service.ListProposals(userID, businessType)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /general/inquiries/{id}/proposals
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

// PATCH /general/proposals/{id}/accept
func (h *Handler) AcceptProposal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	userID, _, _ := auth.Identity(r.Context())
	var req acceptProposalRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	accepted, err := h.Service.AcceptProposal(id, userID, req.PO)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accepted)
}

// PATCH /general/proposals/{id}/reject
func (h *Handler) RejectProposal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	userID, _, _ := auth.Identity(r.Context())
	rejected, err := h.Service.RejectProposal(id, userID)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rejected)
}
