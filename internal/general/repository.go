package general

import (
	"github.com/YarnBridge/api-trading/internal/status"
	"github.com/YarnBridge/api-trading/internal/store"
	"gorm.io/gorm"
)

type InquiryRepository interface {
	Create(db *gorm.DB, i *Inquiry) error
	FindByID(db *gorm.DB, id uint) (*Inquiry, error)
	ListByCustomer(db *gorm.DB, customerID uint) ([]Inquiry, error)
	ListAll(db *gorm.DB) ([]Inquiry, error)
	SaveVersioned(db *gorm.DB, i *Inquiry) error
}

type ProposalRepository interface {
	Create(db *gorm.DB, p *Proposal) error
	FindByID(db *gorm.DB, id uint) (*Proposal, error)
	FindByPair(db *gorm.DB, inquiryID, supplierID uint) (*Proposal, error)
	ListByInquiry(db *gorm.DB, inquiryID uint) ([]Proposal, error)
	ListByInquiryAndSupplier(db *gorm.DB, inquiryID, supplierID uint) ([]Proposal, error)
	ListBySupplier(db *gorm.DB, supplierID uint) ([]Proposal, error)
	CountByInquiry(db *gorm.DB, inquiryIDs []uint) (map[uint]int64, error)
	CountOthers(db *gorm.DB, inquiryID, supplierID uint) (int64, error)
	SaveVersioned(db *gorm.DB, p *Proposal) error
	ForceStatusByInquiry(db *gorm.DB, inquiryID uint, s status.Status) error
}

type inquiryRepositoryImpl struct{}

func NewInquiryRepository() InquiryRepository {
	return &inquiryRepositoryImpl{}
}

func (r *inquiryRepositoryImpl) Create(db *gorm.DB, i *Inquiry) error {
	return db.Create(i).Error
}

func (r *inquiryRepositoryImpl) FindByID(db *gorm.DB, id uint) (*Inquiry, error) {
	var i Inquiry
	err := db.First(&i, id).Error
	return &i, err
}

func (r *inquiryRepositoryImpl) ListByCustomer(db *gorm.DB, customerID uint) ([]Inquiry, error) {
	var list []Inquiry
	err := db.Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *inquiryRepositoryImpl) ListAll(db *gorm.DB) ([]Inquiry, error) {
	var list []Inquiry
	err := db.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *inquiryRepositoryImpl) SaveVersioned(db *gorm.DB, i *Inquiry) error {
	old := i.Version
	i.Version = old + 1
	return store.SaveVersioned(db, i, old)
}

type proposalRepositoryImpl struct{}

func NewProposalRepository() ProposalRepository {
	return &proposalRepositoryImpl{}
}

func (r *proposalRepositoryImpl) Create(db *gorm.DB, p *Proposal) error {
	return db.Create(p).Error
}

func (r *proposalRepositoryImpl) FindByID(db *gorm.DB, id uint) (*Proposal, error) {
	var p Proposal
	err := db.First(&p, id).Error
	return &p, err
}

func (r *proposalRepositoryImpl) FindByPair(db *gorm.DB, inquiryID, supplierID uint) (*Proposal, error) {
	var p Proposal
	err := db.Where("inquiry_id = ? AND supplier_id = ?", inquiryID, supplierID).
		First(&p).Error
	return &p, err
}

func (r *proposalRepositoryImpl) ListByInquiry(db *gorm.DB, inquiryID uint) ([]Proposal, error) {
	var list []Proposal
	err := db.Where("inquiry_id = ?", inquiryID).Find(&list).Error
	return list, err
}

func (r *proposalRepositoryImpl) ListByInquiryAndSupplier(db *gorm.DB, inquiryID, supplierID uint) ([]Proposal, error) {
	var list []Proposal
	err := db.Where("inquiry_id = ? AND supplier_id = ?", inquiryID, supplierID).
		Find(&list).Error
	return list, err
}

func (r *proposalRepositoryImpl) ListBySupplier(db *gorm.DB, supplierID uint) ([]Proposal, error) {
	var list []Proposal
	err := db.Where("supplier_id = ?", supplierID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *proposalRepositoryImpl) CountByInquiry(db *gorm.DB, inquiryIDs []uint) (map[uint]int64, error) {
	return store.CountBy(db, &Proposal{}, "inquiry_id", inquiryIDs)
}

func (r *proposalRepositoryImpl) CountOthers(db *gorm.DB, inquiryID, supplierID uint) (int64, error) {
	var count int64
	err := db.Model(&Proposal{}).
		Where("inquiry_id = ? AND supplier_id <> ?", inquiryID, supplierID).
		Count(&count).Error
	return count, err
}

func (r *proposalRepositoryImpl) SaveVersioned(db *gorm.DB, p *Proposal) error {
	old := p.Version
	p.Version = old + 1
	return store.SaveVersioned(db, p, old)
}

// ForceStatusByInquiry é o updateMany da cascata de decline: ignora a
// tabela de transição por definição.
func (r *proposalRepositoryImpl) ForceStatusByInquiry(db *gorm.DB, inquiryID uint, s status.Status) error {
	return db.Model(&Proposal{}).
		Where("inquiry_id = ?", inquiryID).
		Updates(map[string]any{"status": s, "version": gorm.Expr("version + 1")}).Error
}
