package general

import (
	"time"

	"github.com/YarnBridge/api-trading/internal/models"
	"github.com/YarnBridge/api-trading/internal/status"
)

// Inquiry é o pedido de cotação nominado: só os suppliers listados em
// Nomination enxergam e respondem.
type Inquiry struct {
	ID        uint      `gorm:"primaryKey" json:"inquiryId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CustomerID uint `gorm:"not null;index" json:"customerId"` // imutável após a criação

	PO             string    `json:"po"`
	Quantity       float64   `gorm:"not null" json:"quantity"`
	QuantityType   string    `gorm:"size:10;not null" json:"quantityType"` // kg | lbs | bags
	Rate           float64   `json:"rate"`
	DeliveryStart  time.Time `json:"deliveryStartDate"`
	DeliveryEnd    time.Time `json:"deliveryEndDate"`
	Conewt         float64   `json:"conewt"`
	Specifications string    `json:"specifications"`
	CloseReason    string    `json:"closeReason,omitempty"`

	Certification []string            `gorm:"type:jsonb;serializer:json" json:"certification"`
	PaymentTerms  models.PaymentTerms `gorm:"type:jsonb;serializer:json" json:"paymentTerms"`
	Nomination    []uint              `gorm:"type:jsonb;serializer:json" json:"nomination"`

	Status          status.Status `gorm:"size:50;index" json:"status"`
	StatusChangedAt time.Time     `json:"statusChangedAt"`
	Aging           int           `json:"aging"`
	Version         int64         `json:"-"`
}

// TableName separa a cadeia general da cadeia block booking no banco.
func (Inquiry) TableName() string { return "general_inquiries" }

// Nominated informa se o supplier está na lista de nomination.
func (i *Inquiry) Nominated(supplierID uint) bool {
	for _, id := range i.Nomination {
		if id == supplierID {
			return true
		}
	}
	return false
}

// setStatus aplica a mutação de status e recalcula o aging.
func (i *Inquiry) setStatus(s status.Status, at time.Time) {
	i.Status = s
	i.StatusChangedAt = at
	i.Aging = status.AgingDays(i.CreatedAt, at)
}

// Proposal é a contraproposta de um supplier para uma Inquiry. No máximo
// uma ativa por par (inquiry, supplier).
type Proposal struct {
	ID        uint      `gorm:"primaryKey" json:"proposalId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	InquiryID  uint `gorm:"not null;uniqueIndex:idx_general_pair" json:"inquiryId"`
	SupplierID uint `gorm:"not null;uniqueIndex:idx_general_pair" json:"supplierId"`

	PO            string    `json:"po"`
	Rate          float64   `gorm:"not null" json:"rate"`
	Quantity      float64   `gorm:"not null" json:"quantity"`
	QuantityType  string    `gorm:"size:10" json:"quantityType"`
	DeliveryStart time.Time `json:"deliveryStartDate"`
	DeliveryEnd   time.Time `json:"deliveryEndDate"`

	PaymentTerms models.PaymentTerms `gorm:"type:jsonb;serializer:json" json:"paymentTerms"`

	Status          status.Status `gorm:"size:50;index" json:"status"`
	StatusChangedAt time.Time     `json:"statusChangedAt"`
	Aging           int           `json:"aging"`
	Version         int64         `json:"-"`
}

func (Proposal) TableName() string { return "general_proposals" }

func (p *Proposal) setStatus(s status.Status, at time.Time) {
	p.Status = s
	p.StatusChangedAt = at
	p.Aging = status.AgingDays(p.CreatedAt, at)
}

// InquiryView é a projeção de listagem: a inquiry mais o contador
// derivado de proposals recebidas (nunca persistido).
type InquiryView struct {
	Inquiry
	ProposalsReceived int64 `json:"proposalsReceived,omitempty"`
}
