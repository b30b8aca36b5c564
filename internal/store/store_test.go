package store

import (
	"errors"
	"testing"

	"github.com/YarnBridge/api-trading/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID      uint `gorm:"primaryKey"`
	OwnerID uint
	Label   string
	Version int64
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("abrindo sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestCountByGroupsPerKey(t *testing.T) {
	db := newTestDB(t)
	rows := []widget{
		{OwnerID: 1}, {OwnerID: 1}, {OwnerID: 2}, {OwnerID: 3},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatal(err)
	}

	counts, err := CountBy(db, &widget{}, "owner_id", []uint{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if counts[1] != 2 || counts[2] != 1 {
		t.Fatalf("contagem inesperada: %v", counts)
	}
	if _, ok := counts[3]; ok {
		t.Fatal("chave fora do filtro não deveria aparecer")
	}
}

func TestSaveVersionedDetectsStaleWrite(t *testing.T) {
	db := newTestDB(t)
	w := widget{Label: "a"}
	if err := db.Create(&w).Error; err != nil {
		t.Fatal(err)
	}

	// duas leituras da mesma versão
	first := w
	second := w

	first.Label = "b"
	first.Version++
	if err := SaveVersioned(db, &first, 0); err != nil {
		t.Fatalf("primeira escrita deveria passar: %v", err)
	}

	second.Label = "c"
	second.Version++
	err := SaveVersioned(db, &second, 0)
	var conflict *models.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("escrita desatualizada deveria falhar com ConflictError, veio %v", err)
	}

	var got widget
	if err := db.First(&got, w.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Label != "b" || got.Version != 1 {
		t.Fatalf("update perdido: %+v", got)
	}
}

func TestIsNotFound(t *testing.T) {
	db := newTestDB(t)
	var w widget
	err := db.First(&w, 42).Error
	if !IsNotFound(err) {
		t.Fatalf("esperava registro ausente, veio %v", err)
	}
	if IsNotFound(errors.New("outro erro")) {
		t.Fatal("erro genérico não é not found")
	}
}
