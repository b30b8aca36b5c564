package user

import (
	"time"
)

// Certificate é uma referência opaca de arquivo (nome + caminho) anexada
// ao perfil; o conteúdo nunca é interpretado por este módulo.
type Certificate struct {
	Name     string `json:"name"`
	FilePath string `json:"filePath"`
}

type CompanyDetails struct {
	CompanyName  string `json:"companyName"`
	UserName     string `json:"userName"`
	CompanyEmail string `json:"companyEmail"`
	Address      string `json:"address"`
	NTN          string `json:"ntn"`
	GST          string `json:"gst"`
}

type ContactPersonInfo struct {
	Name        string `json:"name"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

type Profile struct {
	CompanyDetails    CompanyDetails    `json:"companyDetails"`
	ContactPersonInfo ContactPersonInfo `json:"contactPersonInfo"`
	Certificates      []Certificate     `json:"certificates"`
	Material          string            `json:"material,omitempty"`
	Blend             string            `json:"blend,omitempty"`
	CountRange        string            `json:"countRange,omitempty"`
}

// User representa um participante da plataforma: customer ou supplier.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name         string  `gorm:"not null" json:"name"`
	BusinessType string  `gorm:"size:20;not null;index" json:"businessType"` // "customer" | "supplier"
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	Password     string  `gorm:"not null" json:"-"`
	Profile      Profile `gorm:"type:jsonb;serializer:json" json:"profile"`
}
