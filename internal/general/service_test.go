package general

import (
	"errors"
	"testing"
	"time"

	"github.com/YarnBridge/api-trading/internal/auth"
	"github.com/YarnBridge/api-trading/internal/models"
	"github.com/YarnBridge/api-trading/internal/status"
	"github.com/YarnBridge/api-trading/internal/store"
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
	if err := db.AutoMigrate(&user.User{}, &Inquiry{}, &Proposal{}); err != nil {
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

func baseInput(nomination []uint) InquiryInput {
	return InquiryInput{
		Quantity:      1000,
		QuantityType:  "kg",
		Rate:          3.5,
		DeliveryStart: time.Now().AddDate(0, 1, 0),
		DeliveryEnd:   time.Now().AddDate(0, 2, 0),
		Nomination:    nomination,
	}
}

func seedInquiry(t *testing.T, svc *Service, customerID uint, nomination []uint) Inquiry {
	t.Helper()
	created, err := svc.CreateInquiries(customerID, []InquiryInput{baseInput(nomination)})
	if err != nil {
		t.Fatalf("criando inquiry: %v", err)
	}
	return created[0]
}

func TestCreateInquiriesRejectsSupplierOwner(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)

	_, err := svc.CreateInquiries(supplierID, []InquiryInput{baseInput(nil)})
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("esperava ValidationError, veio %v", err)
	}
}

func TestSubmitProposalUpsertsPerPair(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	inq := seedInquiry(t, svc, customerID, []uint{supplierID})

	submit := func(rate float64) {
		t.Helper()
		_, err := svc.SubmitProposals(supplierID, []ProposalInput{{
			InquiryID: inq.ID, Rate: rate, Quantity: 500, QuantityType: "kg",
			DeliveryStart: inq.DeliveryStart, DeliveryEnd: inq.DeliveryEnd,
		}})
		if err != nil {
			t.Fatalf("submetendo proposal: %v", err)
		}
	}
	submit(3.2)
	submit(3.0)

	var count int64
	if err := db.Model(&Proposal{}).Where("inquiry_id = ?", inq.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("esperava uma proposal por par, veio %d", count)
	}
	var p Proposal
	if err := db.Where("inquiry_id = ? AND supplier_id = ?", inq.ID, supplierID).First(&p).Error; err != nil {
		t.Fatal(err)
	}
	if p.Rate != 3.0 {
		t.Fatalf("segunda submissão deveria sobrescrever o rate, veio %v", p.Rate)
	}
	if p.Status != status.ProposalSent {
		t.Fatalf("status esperado proposal_sent, veio %s", p.Status)
	}
}

func TestProposalPairUniqueInDatabase(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	inq := seedInquiry(t, svc, customerID, []uint{supplierID})

	// Duas escritas diretas para o mesmo par simulam submissões
	// concorrentes que passaram pelo FindByPair antes do Create.
	first := Proposal{InquiryID: inq.ID, SupplierID: supplierID, Rate: 3.2, Quantity: 500}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("primeira inserção deveria passar: %v", err)
	}
	second := Proposal{InquiryID: inq.ID, SupplierID: supplierID, Rate: 3.0, Quantity: 500}
	err := db.Create(&second).Error
	if err == nil {
		t.Fatal("segunda inserção do mesmo par deveria violar a constraint única")
	}
	if !store.IsDuplicate(err) {
		t.Fatalf("esperava violação de chave duplicada, veio %v", err)
	}

	var count int64
	if err := db.Model(&Proposal{}).Where("inquiry_id = ?", inq.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("esperava uma proposal por par, veio %d", count)
	}
}

func TestSubmitProposalAdvancesInquiryWithoutDowngrade(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	inq := seedInquiry(t, svc, customerID, []uint{supplierID})

	if err := db.Model(&Inquiry{}).Where("id = ?", inq.ID).
		Update("status", status.Negotiation).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SubmitProposals(supplierID, []ProposalInput{{
		InquiryID: inq.ID, Rate: 3.2, Quantity: 500, QuantityType: "kg",
	}}); err != nil {
		t.Fatal(err)
	}
	var got Inquiry
	if err := db.First(&got, inq.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Status != status.Negotiation {
		t.Fatalf("inquiry em negotiation não pode ser rebaixada, veio %s", got.Status)
	}
}

func TestSubmitProposalRejectsClosedInquiry(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	inq := seedInquiry(t, svc, customerID, []uint{supplierID})

	if _, err := svc.CloseInquiry(inq.ID, "orçamento cancelado"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.SubmitProposals(supplierID, []ProposalInput{{
		InquiryID: inq.ID, Rate: 3.2, Quantity: 500, QuantityType: "kg",
	}})
	var illegal *models.IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("esperava IllegalTransitionError, veio %v", err)
	}
}

func TestCloseInquiryCascadesToAllProposals(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierA := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	supplierB := seedUser(t, db, "fiacao-b", auth.BusinessTypeSupplier)
	inq := seedInquiry(t, svc, customerID, []uint{supplierA, supplierB})

	for _, sid := range []uint{supplierA, supplierB} {
		if _, err := svc.SubmitProposals(sid, []ProposalInput{{
			InquiryID: inq.ID, Rate: 3.2, Quantity: 500, QuantityType: "kg",
		}}); err != nil {
			t.Fatal(err)
		}
	}
	// uma das proposals já avançou no funil
	if err := db.Model(&Proposal{}).Where("supplier_id = ?", supplierA).
		Update("status", status.ProposalAccepted).Error; err != nil {
		t.Fatal(err)
	}

	closed, err := svc.CloseInquiry(inq.ID, "demanda cancelada")
	if err != nil {
		t.Fatal(err)
	}
	if closed.Status != status.InquiryClosed {
		t.Fatalf("inquiry deveria fechar, veio %s", closed.Status)
	}
	if closed.CloseReason != "demanda cancelada" {
		t.Fatalf("closeReason não persistiu: %q", closed.CloseReason)
	}

	var proposals []Proposal
	if err := db.Where("inquiry_id = ?", inq.ID).Find(&proposals).Error; err != nil {
		t.Fatal(err)
	}
	if len(proposals) != 2 {
		t.Fatalf("esperava 2 proposals, veio %d", len(proposals))
	}
	for _, p := range proposals {
		if p.Status != status.InquiryClosed {
			t.Fatalf("cascata deveria fechar todas, proposal %d está %s", p.ID, p.Status)
		}
	}
}

func TestAcceptProposalRequiresPO(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	inq := seedInquiry(t, svc, customerID, []uint{supplierID})
	props, err := svc.SubmitProposals(supplierID, []ProposalInput{{
		InquiryID: inq.ID, Rate: 3.2, Quantity: 500, QuantityType: "kg",
	}})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.AcceptProposal(props[0].ID, customerID, "")
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("aceite sem PO deveria falhar com ValidationError, veio %v", err)
	}

	accepted, err := svc.AcceptProposal(props[0].ID, customerID, "PO-7781")
	if err != nil {
		t.Fatal(err)
	}
	if accepted.Status != status.ProposalAccepted || accepted.PO != "PO-7781" {
		t.Fatalf("proposal aceita inconsistente: %s %q", accepted.Status, accepted.PO)
	}
	var got Inquiry
	if err := db.First(&got, inq.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Status != status.ProposalAccepted || got.PO != "PO-7781" {
		t.Fatalf("PO deveria ser copiado para a inquiry: %s %q", got.Status, got.PO)
	}
}

func TestAcceptProposalRejectsOtherCustomer(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	otherID := seedUser(t, db, "malharia", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	inq := seedInquiry(t, svc, customerID, []uint{supplierID})
	props, err := svc.SubmitProposals(supplierID, []ProposalInput{{
		InquiryID: inq.ID, Rate: 3.2, Quantity: 500, QuantityType: "kg",
	}})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.AcceptProposal(props[0].ID, otherID, "PO-1")
	var ae *models.AuthorizationError
	if !errors.As(err, &ae) {
		t.Fatalf("esperava AuthorizationError, veio %v", err)
	}
}

func TestRejectedProposalReopensOnResubmit(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	inq := seedInquiry(t, svc, customerID, []uint{supplierID})
	props, err := svc.SubmitProposals(supplierID, []ProposalInput{{
		InquiryID: inq.ID, Rate: 3.2, Quantity: 500, QuantityType: "kg",
	}})
	if err != nil {
		t.Fatal(err)
	}

	rejected, err := svc.RejectProposal(props[0].ID, customerID)
	if err != nil {
		t.Fatal(err)
	}
	if rejected.Status != status.ProposalRejected {
		t.Fatalf("esperava proposal_rejected, veio %s", rejected.Status)
	}

	resubmitted, err := svc.SubmitProposals(supplierID, []ProposalInput{{
		InquiryID: inq.ID, Rate: 2.9, Quantity: 500, QuantityType: "kg",
	}})
	if err != nil {
		t.Fatal(err)
	}
	if resubmitted[0].Status != status.ProposalSent {
		t.Fatalf("resubmissão deveria reabrir para proposal_sent, veio %s", resubmitted[0].Status)
	}
	if resubmitted[0].ID != props[0].ID {
		t.Fatal("resubmissão não pode criar uma nova proposal")
	}
}

func TestSupplierListingOverridesStatusUntilProposal(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	inq := seedInquiry(t, svc, customerID, []uint{supplierID})

	if err := db.Model(&Inquiry{}).Where("id = ?", inq.ID).
		Update("status", status.Negotiation).Error; err != nil {
		t.Fatal(err)
	}

	views, err := svc.ListInquiries(supplierID, auth.BusinessTypeSupplier)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 || views[0].Status != status.InquirySent {
		t.Fatalf("antes de propor o supplier vê inquiry_sent, veio %+v", views)
	}

	if _, err := svc.SubmitProposals(supplierID, []ProposalInput{{
		InquiryID: inq.ID, Rate: 3.2, Quantity: 500, QuantityType: "kg",
	}}); err != nil {
		t.Fatal(err)
	}
	views, err = svc.ListInquiries(supplierID, auth.BusinessTypeSupplier)
	if err != nil {
		t.Fatal(err)
	}
	if views[0].Status != status.Negotiation {
		t.Fatalf("depois de propor o supplier vê o status global, veio %s", views[0].Status)
	}
}

func TestSupplierListingSkipsNonNominated(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	nominated := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	outsider := seedUser(t, db, "fiacao-b", auth.BusinessTypeSupplier)
	seedInquiry(t, svc, customerID, []uint{nominated})

	views, err := svc.ListInquiries(outsider, auth.BusinessTypeSupplier)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 0 {
		t.Fatalf("supplier fora da nomination não vê a inquiry, veio %d", len(views))
	}
}

func TestCustomerListingCountsProposals(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierA := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	supplierB := seedUser(t, db, "fiacao-b", auth.BusinessTypeSupplier)
	inq := seedInquiry(t, svc, customerID, []uint{supplierA, supplierB})

	for _, sid := range []uint{supplierA, supplierB} {
		if _, err := svc.SubmitProposals(sid, []ProposalInput{{
			InquiryID: inq.ID, Rate: 3.2, Quantity: 500, QuantityType: "kg",
		}}); err != nil {
			t.Fatal(err)
		}
	}
	views, err := svc.ListInquiries(customerID, auth.BusinessTypeCustomer)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 || views[0].ProposalsReceived != 2 {
		t.Fatalf("esperava proposalsReceived=2, veio %+v", views)
	}
}

func TestProposalVisibilityExclusivity(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierA := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	supplierB := seedUser(t, db, "fiacao-b", auth.BusinessTypeSupplier)
	inq := seedInquiry(t, svc, customerID, []uint{supplierA, supplierB})

	if _, err := svc.SubmitProposals(supplierA, []ProposalInput{{
		InquiryID: inq.ID, Rate: 3.2, Quantity: 500, QuantityType: "kg",
	}}); err != nil {
		t.Fatal(err)
	}

	// sozinho na inquiry, o supplier enxerga a própria proposal
	view, err := svc.ListProposalsForInquiry(inq.ID, supplierA, auth.BusinessTypeSupplier)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Proposals) != 1 {
		t.Fatalf("esperava 1 proposal visível, veio %d", len(view.Proposals))
	}

	if _, err := svc.SubmitProposals(supplierB, []ProposalInput{{
		InquiryID: inq.ID, Rate: 3.0, Quantity: 500, QuantityType: "kg",
	}}); err != nil {
		t.Fatal(err)
	}

	_, err = svc.ListProposalsForInquiry(inq.ID, supplierA, auth.BusinessTypeSupplier)
	var forbidden *models.ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("com concorrência esperava ForbiddenError, veio %v", err)
	}

	// o customer dono continua vendo todas
	view, err = svc.ListProposalsForInquiry(inq.ID, customerID, auth.BusinessTypeCustomer)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Proposals) != 2 {
		t.Fatalf("customer deveria ver 2 proposals, veio %d", len(view.Proposals))
	}
}
