package blockbooking

import (
	"time"

	"github.com/YarnBridge/api-trading/internal/models"
	"github.com/YarnBridge/api-trading/internal/status"
)

// BaseSpecs descreve o fio solicitado na inquiry.
type BaseSpecs struct {
	Carded  bool `json:"carded"`
	Combed  bool `json:"combed"`
	Compact bool `json:"compact"`
	Plain   bool `json:"plain"`
	Slub    bool `json:"slub"`
	Lycra   bool `json:"lycra"`
}

// CountPrice é o preço alvo do customer para um count específico.
type CountPrice struct {
	Count int     `json:"count"`
	Price float64 `json:"price"`
}

type MaterialCharge struct {
	Material string  `json:"material"`
	Upcharge float64 `json:"upcharge"`
}

type CertificateUpcharge struct {
	Certificate string  `json:"certificate"`
	Upcharge    float64 `json:"upcharge"`
}

// Inquiry de block booking é broadcast: qualquer supplier enxerga e pode
// responder, não há nomination.
type Inquiry struct {
	ID        uint      `gorm:"primaryKey" json:"inquiryId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CustomerID uint `gorm:"not null;index" json:"customerId"` // imutável após a criação

	BaseSpecs       BaseSpecs `gorm:"type:jsonb;serializer:json" json:"baseSpecs"`
	BaseCount       int       `gorm:"not null" json:"baseCount"` // 6..120
	SlubUpcharge    float64   `json:"slubUpcharge"`
	TargetBasePrice float64   `gorm:"not null" json:"targetBasePrice"`
	Quantity        float64   `gorm:"not null" json:"quantity"`
	QuantityType    string    `gorm:"size:10;not null" json:"quantityType"`
	DeliveryStart   time.Time `json:"deliveryStartDate"`
	DeliveryEnd     time.Time `json:"deliveryEndDate"`

	// CountPrices precisa cobrir todos os counts inteiros no intervalo
	// [LowerCount, UpperCount].
	LowerCount  int          `gorm:"not null" json:"lowerCount"`
	UpperCount  int          `gorm:"not null" json:"upperCount"`
	CountPrices []CountPrice `gorm:"type:jsonb;serializer:json" json:"countPrices"`

	PaymentTerms         models.PaymentTerms   `gorm:"type:jsonb;serializer:json" json:"paymentTerms"`
	MaterialCharges      []MaterialCharge      `gorm:"type:jsonb;serializer:json" json:"materialCharges"`
	CertificateUpcharges []CertificateUpcharge `gorm:"type:jsonb;serializer:json" json:"certificateUpcharges"`

	Status          status.Status `gorm:"size:50;index" json:"status"`
	StatusChangedAt time.Time     `json:"statusChangedAt"`
	Aging           int           `json:"aging"`
	Version         int64         `json:"-"`
}

// TableName separa a cadeia block booking da cadeia general no banco.
func (Inquiry) TableName() string { return "block_booking_inquiries" }

func (i *Inquiry) setStatus(s status.Status, at time.Time) {
	i.Status = s
	i.StatusChangedAt = at
	i.Aging = status.AgingDays(i.CreatedAt, at)
}

// Contrapartes ofertadas pelo supplier, espelhando os campos da inquiry.
type OfferedCountPrice struct {
	Count        int     `json:"count"`
	OfferedPrice float64 `json:"offeredPrice"`
}

type OfferedMaterialCharge struct {
	Material        string  `json:"material"`
	OfferedUpcharge float64 `json:"offeredUpcharge"`
}

type OfferedCertificateUpcharge struct {
	Certificate     string  `json:"certificate"`
	OfferedUpcharge float64 `json:"offeredUpcharge"`
}

type OfferedPaymentTerms struct {
	OfferedPaymentMode        string `json:"offeredPaymentMode"`
	OfferedDays               int    `json:"offeredDays"`
	OfferedShipmentTerms      string `json:"offeredShipmentTerms"`
	OfferedBusinessConditions string `json:"offeredBusinessConditions"`
}

// Proposal de block booking. No máximo uma ativa por par (inquiry,
// supplier).
type Proposal struct {
	ID        uint      `gorm:"primaryKey" json:"proposalId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	InquiryID  uint `gorm:"not null;uniqueIndex:idx_blockbooking_pair" json:"inquiryId"`
	SupplierID uint `gorm:"not null;uniqueIndex:idx_blockbooking_pair" json:"supplierId"`

	CountPrices          []OfferedCountPrice          `gorm:"type:jsonb;serializer:json" json:"countPrices"`
	MaterialCharges      []OfferedMaterialCharge      `gorm:"type:jsonb;serializer:json" json:"materialCharges"`
	CertificateUpcharges []OfferedCertificateUpcharge `gorm:"type:jsonb;serializer:json" json:"certificateUpcharges"`
	PaymentTerms         OfferedPaymentTerms          `gorm:"type:jsonb;serializer:json" json:"paymentTerms"`

	Status          status.Status `gorm:"size:50;index" json:"status"`
	StatusChangedAt time.Time     `json:"statusChangedAt"`
	Aging           int           `json:"aging"`
	Version         int64         `json:"-"`
}

func (Proposal) TableName() string { return "block_booking_proposals" }

func (p *Proposal) setStatus(s status.Status, at time.Time) {
	p.Status = s
	p.StatusChangedAt = at
	p.Aging = status.AgingDays(p.CreatedAt, at)
}

// InquiryView é a projeção de listagem com o contador derivado de
// proposals recebidas.
type InquiryView struct {
	Inquiry
	ProposalsReceived int64 `json:"proposalsReceived,omitempty"`
}
