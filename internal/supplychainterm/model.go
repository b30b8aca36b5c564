package supplychainterm

import (
	"time"

	"github.com/YarnBridge/api-trading/internal/status"
)

// Revision é um snapshot imutável dos valores correntes do term antes de
// uma sobrescrita; o log é append-only.
type Revision struct {
	RevisionNo                 int           `json:"revisionNo"`
	RevisionDate               time.Time     `json:"revisionDate"`
	PaymentMode                string        `json:"paymentMode"`
	ShipmentTerms              string        `json:"shipmentTerms"`
	BusinessConditions         string        `json:"businessConditions"`
	Status                     status.Status `json:"status"`
	SupplierShipmentTerms      string        `json:"supplierShipmentTerms,omitempty"`
	SupplierBusinessConditions string        `json:"supplierBusinessConditions,omitempty"`
	SupplierEndDate            *time.Time    `json:"supplierEndDate,omitempty"`
	Days                       int           `json:"days"`
	EndDate                    *time.Time    `json:"endDate,omitempty"`
}

// Term é o acordo de condições de pagamento da cadeia de suprimento,
// independente da cadeia inquiry-proposal-contract. General=true vale
// para todos os suppliers do customer e não admite endDate;
// general=false é escopado a um supplier e exige endDate futura. Um term
// por par (customer, supplier).
type Term struct {
	ID        uint      `gorm:"primaryKey" json:"termId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CustomerID uint `gorm:"not null;uniqueIndex:idx_term_pair" json:"customerId"`
	SupplierID uint `gorm:"uniqueIndex:idx_term_pair" json:"supplierId,omitempty"` // 0 quando general

	General bool `json:"general"`

	PaymentMode        string     `gorm:"size:20;not null" json:"paymentMode"`
	ShipmentTerms      string     `gorm:"not null" json:"shipmentTerms"`
	BusinessConditions string     `gorm:"size:20;not null" json:"businessConditions"`
	Days               int        `gorm:"not null" json:"days"`
	EndDate            *time.Time `json:"endDate,omitempty"`

	SupplierShipmentTerms      string     `json:"supplierShipmentTerms,omitempty"`
	SupplierBusinessConditions string     `json:"supplierBusinessConditions,omitempty"`
	SupplierEndDate            *time.Time `json:"supplierEndDate,omitempty"`

	Status status.Status `gorm:"size:50;index" json:"status,omitempty"`

	// RevisionNo acompanha o tamanho de Revisions após cada snapshot.
	Revisions  []Revision `gorm:"type:jsonb;serializer:json" json:"revisions"`
	RevisionNo int        `json:"revisionNo"`

	Version int64 `json:"-"`
}

// snapshot anexa os valores correntes ao log e avança RevisionNo para o
// novo tamanho do log.
func (t *Term) snapshot(at time.Time) {
	t.Revisions = append(t.Revisions, Revision{
		RevisionNo:                 len(t.Revisions) + 1,
		RevisionDate:               at,
		PaymentMode:                t.PaymentMode,
		ShipmentTerms:              t.ShipmentTerms,
		BusinessConditions:         t.BusinessConditions,
		Status:                     t.Status,
		SupplierShipmentTerms:      t.SupplierShipmentTerms,
		SupplierBusinessConditions: t.SupplierBusinessConditions,
		SupplierEndDate:            t.SupplierEndDate,
		Days:                       t.Days,
		EndDate:                    t.EndDate,
	})
	t.RevisionNo = len(t.Revisions)
}
