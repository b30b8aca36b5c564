package supplychainterm

import (
	"errors"
	"testing"
	"time"

	"github.com/YarnBridge/api-trading/internal/auth"
	"github.com/YarnBridge/api-trading/internal/models"
	"github.com/YarnBridge/api-trading/internal/status"
	"github.com/YarnBridge/api-trading/internal/user"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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
		t.Fatalf("obtendo sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&user.User{}, &Term{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, businessType string) uint {
	t.Helper()
	u := user.User{Name: name, BusinessType: businessType, Email: name + "@example.com", Password: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("criando usuário: %v", err)
	}
	return u.ID
}

func baseInput(endDate *time.Time) TermInput {
	return TermInput{
		PaymentMode:        "credit",
		ShipmentTerms:      "FOB",
		BusinessConditions: "gst",
		Days:               45,
		EndDate:            endDate,
	}
}

func future() *time.Time {
	d := time.Now().AddDate(1, 0, 0)
	return &d
}

func TestCreateGeneralRejectsEndDate(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)

	_, err := svc.CreateGeneral(customerID, baseInput(future()))
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("general=true com endDate deveria falhar, veio %v", err)
	}
}

func TestCreateGeneralIsUniquePerCustomer(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)

	if _, err := svc.CreateGeneral(customerID, baseInput(nil)); err != nil {
		t.Fatal(err)
	}
	_, err := svc.CreateGeneral(customerID, baseInput(nil))
	var ce *models.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("segundo term geral deveria falhar com ConflictError, veio %v", err)
	}
}

func TestCreateNewValidatesEndDate(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)

	if _, err := svc.CreateNew(customerID, supplierID, baseInput(nil)); err == nil {
		t.Fatal("term escopado sem endDate deveria falhar")
	}
	past := time.Now().AddDate(0, 0, -1)
	if _, err := svc.CreateNew(customerID, supplierID, baseInput(&past)); err == nil {
		t.Fatal("endDate no passado deveria falhar")
	}

	term, err := svc.CreateNew(customerID, supplierID, baseInput(future()))
	if err != nil {
		t.Fatal(err)
	}
	if term.Status != status.TermProposalSentReceived {
		t.Fatalf("term novo deveria nascer proposal_sent_received, veio %s", term.Status)
	}
}

func TestCreateNewIsUniquePerPair(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)

	if _, err := svc.CreateNew(customerID, supplierID, baseInput(future())); err != nil {
		t.Fatal(err)
	}
	_, err := svc.CreateNew(customerID, supplierID, baseInput(future()))
	var ce *models.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("par duplicado deveria falhar com ConflictError, veio %v", err)
	}
}

func TestCreateNewRejectsNonSupplier(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	otherCustomer := seedUser(t, db, "malharia", auth.BusinessTypeCustomer)

	if _, err := svc.CreateNew(customerID, otherCustomer, baseInput(future())); err == nil {
		t.Fatal("contraparte que não é supplier deveria falhar")
	}
}

func TestRenewSnapshotsRevisions(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	term, err := svc.CreateNew(customerID, supplierID, baseInput(future()))
	if err != nil {
		t.Fatal(err)
	}

	in := baseInput(future())
	in.PaymentMode = "lc"
	in.Days = 60
	renewed, err := svc.Renew(term.ID, customerID, in)
	if err != nil {
		t.Fatal(err)
	}
	if len(renewed.Revisions) != 1 || renewed.RevisionNo != 1 {
		t.Fatalf("renew deveria gerar a revisão 1, veio %d/%d", len(renewed.Revisions), renewed.RevisionNo)
	}
	snap := renewed.Revisions[0]
	if snap.RevisionNo != 1 || snap.PaymentMode != "credit" || snap.Days != 45 {
		t.Fatalf("snapshot deveria guardar os valores anteriores: %+v", snap)
	}
	if renewed.PaymentMode != "lc" || renewed.Days != 60 {
		t.Fatalf("valores correntes deveriam ser os novos: %+v", renewed)
	}
	if renewed.Status != status.TermRenewRequested {
		t.Fatalf("renew deveria marcar renew_requested_received, veio %s", renewed.Status)
	}

	// segunda renovação encadeia o log
	again, err := svc.Renew(term.ID, customerID, baseInput(future()))
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Revisions) != 2 || again.RevisionNo != 2 || again.Revisions[1].RevisionNo != 2 {
		t.Fatalf("log de revisões inconsistente: %+v", again.Revisions)
	}
}

func TestReplyAndAccept(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	term, err := svc.CreateNew(customerID, supplierID, baseInput(future()))
	if err != nil {
		t.Fatal(err)
	}

	replied, err := svc.Reply(term.ID, supplierID, ReplyInput{
		SupplierShipmentTerms:      "CIF",
		SupplierBusinessConditions: "efs",
		SupplierEndDate:            future(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if replied.Status != status.TermProposalReplied || replied.SupplierShipmentTerms != "CIF" {
		t.Fatalf("reply inconsistente: %+v", replied)
	}

	accepted, err := svc.Accept(term.ID, customerID, supplierID)
	if err != nil {
		t.Fatal(err)
	}
	if accepted.Status != status.TermContracted {
		t.Fatalf("accept deveria marcar contracted, veio %s", accepted.Status)
	}
}

func TestReplyRejectsOtherSupplier(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	outsider := seedUser(t, db, "fiacao-b", auth.BusinessTypeSupplier)
	term, err := svc.CreateNew(customerID, supplierID, baseInput(future()))
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Reply(term.ID, outsider, ReplyInput{})
	var ae *models.AuthorizationError
	if !errors.As(err, &ae) {
		t.Fatalf("esperava AuthorizationError, veio %v", err)
	}
}

func TestUpdateGeneralSnapshots(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	term, err := svc.CreateGeneral(customerID, baseInput(nil))
	if err != nil {
		t.Fatal(err)
	}

	in := baseInput(nil)
	in.Days = 30
	updated, err := svc.UpdateGeneral(term.ID, customerID, in)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Days != 30 {
		t.Fatalf("update deveria aplicar os novos valores, veio %d", updated.Days)
	}
	if len(updated.Revisions) != 1 || updated.Revisions[0].Days != 45 {
		t.Fatalf("update deveria snapshotar os valores anteriores: %+v", updated.Revisions)
	}
}
