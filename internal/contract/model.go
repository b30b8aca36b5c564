package contract

import (
	"time"

	"github.com/YarnBridge/api-trading/internal/status"
	"gorm.io/gorm"
)

// Tipos de contrato suportados; determinam em qual cadeia as referências
// de Description são resolvidas.
const (
	TypeGeneral      = "general"
	TypeBlockBooking = "block-booking"
)

// ProposalInfo é a visão mínima de uma proposal referenciada, qualquer
// que seja a cadeia de origem.
type ProposalInfo struct {
	ID        uint          `json:"proposalId"`
	InquiryID uint          `json:"inquiryId"`
	Status    status.Status `json:"status"`
}

// ProposalBook resolve e muta proposals de uma cadeia específica. Cada
// cadeia (general, block booking) registra a sua implementação; o
// contrato nunca importa os pacotes de domínio diretamente.
type ProposalBook interface {
	Get(db *gorm.DB, id uint) (ProposalInfo, error)
	SetStatus(db *gorm.DB, id uint, s status.Status) error
}

// SODocument é a referência opaca ao documento de sales order anexado.
type SODocument struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// SupplierPlanTerms é a contraproposta do supplier a um plano mensal.
type SupplierPlanTerms struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
	Remarks  string    `json:"remarks"`
}

// FinalAgreement fecha a negociação de um plano mensal.
type FinalAgreement struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
}

// MonthlyPlan é uma entrada do sub-ledger de planos mensais: uma thread
// de negociação secundária aninhada no contrato, com status próprio.
type MonthlyPlan struct {
	PlanID         string             `json:"planId"`
	Date           time.Time          `json:"date"`
	Quantity       float64            `json:"quantity"`
	Status         status.Status      `json:"status"`
	SupplierTerms  *SupplierPlanTerms `json:"supplierTerms,omitempty"`
	FinalAgreement *FinalAgreement    `json:"finalAgreement,omitempty"`
}

// Contract referencia proposals por id (união etiquetada por
// ContractType); não é dono delas.
type Contract struct {
	ID        uint      `gorm:"primaryKey" json:"contractId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ContractNumber string    `gorm:"not null" json:"contractNumber"`
	ContractDate   time.Time `json:"contractDate"`

	SupplierID uint `gorm:"not null;index" json:"supplierId"`
	CustomerID uint `gorm:"not null;index" json:"customerId"`

	ContractType     string `gorm:"size:20;not null" json:"contractType"`
	AllocationNumber string `json:"allocationNumber,omitempty"` // obrigatório para block-booking

	ContractStatus status.Status `gorm:"size:50;index" json:"contractStatus"`

	Description  []uint        `gorm:"type:jsonb;serializer:json" json:"description"`
	SODocument   *SODocument   `gorm:"type:jsonb;serializer:json" json:"soDocument,omitempty"`
	MonthlyPlans []MonthlyPlan `gorm:"type:jsonb;serializer:json" json:"monthlyPlans"`

	Version int64 `json:"-"`
}

// View devolvida nas listagens: contrato mais as proposals resolvidas que
// passaram no filtro de status da listagem.
type ContractView struct {
	Contract
	Proposals []ProposalInfo `json:"proposals,omitempty"`
}
