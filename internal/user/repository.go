package user

import (
	"gorm.io/gorm"
)

type Repository interface {
	Create(db *gorm.DB, u *User) error
	FindByID(db *gorm.DB, id uint) (*User, error)
	FindByEmail(db *gorm.DB, email string) (*User, error)
	Update(db *gorm.DB, u *User) error
	ListByBusinessType(db *gorm.DB, businessType string) ([]User, error)
	HasBusinessType(db *gorm.DB, id uint, businessType string) (bool, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, u *User) error {
	return db.Create(u).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*User, error) {
	var u User
	err := db.First(&u, id).Error
	return &u, err
}

func (r *repositoryImpl) FindByEmail(db *gorm.DB, email string) (*User, error) {
	var u User
	err := db.Where("email = ?", email).First(&u).Error
	return &u, err
}

func (r *repositoryImpl) Update(db *gorm.DB, u *User) error {
	return db.Save(u).Error
}

func (r *repositoryImpl) ListByBusinessType(db *gorm.DB, businessType string) ([]User, error) {
	var list []User
	err := db.Where("business_type = ?", businessType).Find(&list).Error
	return list, err
}

// HasBusinessType valida referências a usuários por papel (ex.: customerId
// de uma inquiry precisa apontar para um customer).
func (r *repositoryImpl) HasBusinessType(db *gorm.DB, id uint, businessType string) (bool, error) {
	var count int64
	err := db.Model(&User{}).
		Where("id = ? AND business_type = ?", id, businessType).
		Count(&count).Error
	return count > 0, err
}
