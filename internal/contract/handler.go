package contract

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

type acceptRequest struct {
	CustomerID uint `json:"customerId"`
	SupplierID uint `json:"supplierId"`
}

type soDocumentRequest struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type createPlansRequest struct {
	Contracts []PlanBatch `json:"contracts"`
}

type replyPlanRequest struct {
	SupplierTerms SupplierPlanTerms `json:"supplierTerms"`
}

type resolvePlanRequest struct {
	Agreed         bool            `json:"agreed"`
	FinalAgreement *FinalAgreement `json:"finalAgreement"`
}

// POST /contracts
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var in SendInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	userID, _, _ := auth.Identity(r.Context())
	in.SupplierID = userID
	created, err := h.Service.Send(in)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GET /contracts/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	view, err := h.Service.GetByID(id)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// PATCH /contracts/{id}/accept
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
	accepted, err := h.Service.Accept(id, req.CustomerID, req.SupplierID)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accepted)
}

// GET /contracts
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := auth.Identity(r.Context())
	views, err := h.Service.ListActive(userID)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// GET /contracts/running
func (h *Handler) ListRunning(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := auth.Identity(r.Context())
	views, err := h.Service.ListRunning(userID)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// GET /contracts/new
func (h *Handler) ListNew(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := auth.Identity(r.Context())
	views, err := h.Service.ListNew(userID, TypeGeneral)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// GET /contracts/new/blockbooking
func (h *Handler) ListNewBlockBooking(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := auth.Identity(r.Context())
	views, err := h.Service.ListNew(userID, TypeBlockBooking)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// GET /contracts/completed
func (h *Handler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := auth.Identity(r.Context())
	views, err := h.Service.ListCompleted(userID)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// PUT /contracts/{id}/so-document
func (h *Handler) AttachSODocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	var req soDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	contract, err := h.Service.AttachSODocument(id, req.Name, req.Path)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contract)
}

// POST /contracts/monthly-plans
func (h *Handler) CreateMonthlyPlans(w http.ResponseWriter, r *http.Request) {
	var req createPlansRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	if err := h.Service.CreateMonthlyPlans(req.Contracts); err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "monthly plans created"})
}

// GET /contracts/{id}/monthly-plans
func (h *Handler) GetMonthlyPlans(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	plans, err := h.Service.GetMonthlyPlans(id)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// PATCH /contracts/{id}/monthly-plans/{planId}/reply
func (h *Handler) ReplyMonthlyPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	planID := mux.Vars(r)["planId"]
	var req replyPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	plan, err := h.Service.ReplyMonthlyPlan(id, planID, req.SupplierTerms)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// PATCH /contracts/{id}/monthly-plans/{planId}/resolve
func (h *Handler) ResolveMonthlyPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		models.WriteError(w, err)
		return
	}
	planID := mux.Vars(r)["planId"]
	var req resolvePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, models.NewValidationError("invalid JSON"))
		return
	}
	plan, err := h.Service.ResolveMonthlyPlan(id, planID, req.Agreed, req.FinalAgreement)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
