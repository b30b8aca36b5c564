package supplychainterm

import (
	"github.com/YarnBridge/api-trading/internal/store"
	"gorm.io/gorm"
)

type Repository interface {
	Create(db *gorm.DB, t *Term) error
	FindByID(db *gorm.DB, id uint) (*Term, error)
	FindGeneralByCustomer(db *gorm.DB, customerID uint) (*Term, error)
	FindByPair(db *gorm.DB, customerID, supplierID uint) (*Term, error)
	ListScopedByParty(db *gorm.DB, userID uint) ([]Term, error)
	SaveVersioned(db *gorm.DB, t *Term) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, t *Term) error {
	return db.Create(t).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Term, error) {
	var t Term
	err := db.First(&t, id).Error
	return &t, err
}

func (r *repositoryImpl) FindGeneralByCustomer(db *gorm.DB, customerID uint) (*Term, error) {
	var t Term
	err := db.Where("customer_id = ? AND general = ?", customerID, true).
		First(&t).Error
	return &t, err
}

func (r *repositoryImpl) FindByPair(db *gorm.DB, customerID, supplierID uint) (*Term, error) {
	var t Term
	err := db.Where("customer_id = ? AND supplier_id = ?", customerID, supplierID).
		First(&t).Error
	return &t, err
}

// ListScopedByParty lista os terms não gerais em que o usuário participa
// como customer ou supplier.
func (r *repositoryImpl) ListScopedByParty(db *gorm.DB, userID uint) ([]Term, error) {
	var list []Term
	err := db.Where("general = ? AND (customer_id = ? OR supplier_id = ?)", false, userID, userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *repositoryImpl) SaveVersioned(db *gorm.DB, t *Term) error {
	old := t.Version
	t.Version = old + 1
	return store.SaveVersioned(db, t, old)
}
