package store

import (
	"errors"

	"github.com/YarnBridge/api-trading/internal/models"
	"gorm.io/gorm"
)

type groupCount struct {
	GroupKey uint  `gorm:"column:group_key"`
	Total    int64 `gorm:"column:total"`
}

// CountBy centraliza a agregação count-por-grupo usada pelas listagens
// (ex.: proposals recebidas por inquiry). Nunca é persistido.
func CountBy(db *gorm.DB, model any, groupCol string, keys []uint) (map[uint]int64, error) {
	q := db.Model(model).
		Select(groupCol + " AS group_key, COUNT(*) AS total").
		Group(groupCol)
	if len(keys) > 0 {
		q = q.Where(groupCol+" IN ?", keys)
	}
	var rows []groupCount
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]int64, len(rows))
	for _, r := range rows {
		out[r.GroupKey] = r.Total
	}
	return out, nil
}

// SaveVersioned grava todos os campos da entidade condicionado à versão
// lida. O chamador já deve ter incrementado model.Version; oldVersion é a
// versão observada na leitura. Zero linhas afetadas vira ConflictError.
func SaveVersioned(db *gorm.DB, model any, oldVersion int64) error {
	res := db.Model(model).
		Where("version = ?", oldVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &models.ConflictError{Message: "entity changed since it was read"}
	}
	return nil
}

// IsNotFound abstrai o erro de registro ausente do gorm.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate abstrai a violação de constraint única traduzida pelo
// driver (exige TranslateError na abertura da conexão).
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
