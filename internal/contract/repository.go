package contract

import (
	"github.com/YarnBridge/api-trading/internal/status"
	"github.com/YarnBridge/api-trading/internal/store"
	"gorm.io/gorm"
)

type Repository interface {
	Create(db *gorm.DB, c *Contract) error
	FindByID(db *gorm.DB, id uint) (*Contract, error)
	ListByParty(db *gorm.DB, userID uint, statuses []status.Status, contractType string, exclude bool) ([]Contract, error)
	SaveVersioned(db *gorm.DB, c *Contract) error
	AdvanceStatus(db *gorm.DB, id uint, from, to status.Status) (bool, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, c *Contract) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Contract, error) {
	var c Contract
	err := db.First(&c, id).Error
	return &c, err
}

// ListByParty filtra por contraparte (supplier ou customer) e por
// status; exclude inverte o filtro de status (NOT IN).
func (r *repositoryImpl) ListByParty(db *gorm.DB, userID uint, statuses []status.Status, contractType string, exclude bool) ([]Contract, error) {
	q := db.Where("supplier_id = ? OR customer_id = ?", userID, userID)
	if len(statuses) > 0 {
		if exclude {
			q = q.Where("contract_status NOT IN ?", statuses)
		} else {
			q = q.Where("contract_status IN ?", statuses)
		}
	}
	if contractType != "" {
		q = q.Where("contract_type = ?", contractType)
	}
	var list []Contract
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) SaveVersioned(db *gorm.DB, c *Contract) error {
	old := c.Version
	c.Version = old + 1
	return store.SaveVersioned(db, c, old)
}

// AdvanceStatus é o ponto de serialização do accept: um UPDATE
// condicionado ao status atual. Devolve false quando outro chamador já
// avançou o contrato.
func (r *repositoryImpl) AdvanceStatus(db *gorm.DB, id uint, from, to status.Status) (bool, error) {
	res := db.Model(&Contract{}).
		Where("id = ? AND contract_status = ?", id, from).
		Updates(map[string]any{"contract_status": to, "version": gorm.Expr("version + 1")})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
