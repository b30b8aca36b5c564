package blockbooking

import (
	"errors"
	"strings"
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

func baseInput() InquiryInput {
	return InquiryInput{
		BaseCount:       30,
		TargetBasePrice: 4.1,
		Quantity:        2000,
		QuantityType:    "kg",
		DeliveryStart:   time.Now().AddDate(0, 1, 0),
		DeliveryEnd:     time.Now().AddDate(0, 3, 0),
		LowerCount:      20,
		UpperCount:      22,
		CountPrices: []CountPrice{
			{Count: 20, Price: 10},
			{Count: 21, Price: 11},
			{Count: 22, Price: 12},
		},
	}
}

func seedInquiry(t *testing.T, svc *Service, customerID uint) *Inquiry {
	t.Helper()
	inq, err := svc.CreateInquiry(customerID, baseInput())
	if err != nil {
		t.Fatalf("criando inquiry: %v", err)
	}
	return inq
}

func TestCreateInquiryListsMissingCounts(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)

	in := baseInput()
	in.CountPrices = []CountPrice{{Count: 20, Price: 10}, {Count: 22, Price: 12}}
	_, err := svc.CreateInquiry(customerID, in)
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("esperava ValidationError, veio %v", err)
	}
	if !strings.Contains(err.Error(), "21") {
		t.Fatalf("o erro deveria listar o count faltante 21: %v", err)
	}
}

func TestCreateInquiryRejectsInvertedRange(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)

	in := baseInput()
	in.LowerCount, in.UpperCount = 22, 20
	if _, err := svc.CreateInquiry(customerID, in); err == nil {
		t.Fatal("upperCount < lowerCount deveria falhar")
	}
}

func TestSubmitProposalUpsertsPerPair(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	inq := seedInquiry(t, svc, customerID)

	submit := func(price float64) *Proposal {
		t.Helper()
		p, err := svc.SubmitProposal(supplierID, ProposalInput{
			InquiryID:   inq.ID,
			CountPrices: []OfferedCountPrice{{Count: 20, OfferedPrice: price}},
		})
		if err != nil {
			t.Fatalf("submetendo proposal: %v", err)
		}
		return p
	}
	first := submit(9.5)
	second := submit(9.0)
	if first.ID != second.ID {
		t.Fatal("segunda submissão não pode criar nova proposal")
	}
	if second.CountPrices[0].OfferedPrice != 9.0 {
		t.Fatalf("segunda submissão deveria sobrescrever os preços, veio %v", second.CountPrices)
	}

	var count int64
	if err := db.Model(&Proposal{}).Where("inquiry_id = ?", inq.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("esperava uma proposal por par, veio %d", count)
	}
}

func TestProposalPairUniqueInDatabase(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	inq := seedInquiry(t, svc, customerID)

	// Duas escritas diretas para o mesmo par simulam submissões
	// concorrentes que passaram pelo FindByPair antes do Create.
	first := Proposal{InquiryID: inq.ID, SupplierID: supplierID}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("primeira inserção deveria passar: %v", err)
	}
	second := Proposal{InquiryID: inq.ID, SupplierID: supplierID}
	err := db.Create(&second).Error
	if err == nil {
		t.Fatal("segunda inserção do mesmo par deveria violar a constraint única")
	}
	if !store.IsDuplicate(err) {
		t.Fatalf("esperava violação de chave duplicada, veio %v", err)
	}
}

func TestDeclineInquiryCascades(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierA := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	supplierB := seedUser(t, db, "fiacao-b", auth.BusinessTypeSupplier)
	inq := seedInquiry(t, svc, customerID)

	for _, sid := range []uint{supplierA, supplierB} {
		if _, err := svc.SubmitProposal(sid, ProposalInput{
			InquiryID:   inq.ID,
			CountPrices: []OfferedCountPrice{{Count: 20, OfferedPrice: 9.5}},
		}); err != nil {
			t.Fatal(err)
		}
	}

	closed, err := svc.DeclineInquiry(inq.ID, customerID)
	if err != nil {
		t.Fatal(err)
	}
	if closed.Status != status.InquiryClosed {
		t.Fatalf("inquiry deveria fechar, veio %s", closed.Status)
	}
	var proposals []Proposal
	if err := db.Where("inquiry_id = ?", inq.ID).Find(&proposals).Error; err != nil {
		t.Fatal(err)
	}
	for _, p := range proposals {
		if p.Status != status.InquiryClosed {
			t.Fatalf("cascata deveria fechar todas, proposal %d está %s", p.ID, p.Status)
		}
	}
}

func TestDeclineInquiryRejectsOtherCustomer(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	otherID := seedUser(t, db, "malharia", auth.BusinessTypeCustomer)
	inq := seedInquiry(t, svc, customerID)

	_, err := svc.DeclineInquiry(inq.ID, otherID)
	var ae *models.AuthorizationError
	if !errors.As(err, &ae) {
		t.Fatalf("esperava AuthorizationError, veio %v", err)
	}
}

func TestSupplierBroadcastListing(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	open := seedInquiry(t, svc, customerID)
	declined := seedInquiry(t, svc, customerID)
	if _, err := svc.DeclineInquiry(declined.ID, customerID); err != nil {
		t.Fatal(err)
	}
	if err := db.Model(&Inquiry{}).Where("id = ?", open.ID).
		Update("status", status.Negotiation).Error; err != nil {
		t.Fatal(err)
	}

	// broadcast: supplier sem proposal vê a inquiry aberta como
	// inquiry_sent e não vê a fechada
	views, err := svc.ListInquiries(supplierID, auth.BusinessTypeSupplier)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 {
		t.Fatalf("esperava só a inquiry aberta, veio %d", len(views))
	}
	if views[0].ID != open.ID || views[0].Status != status.InquirySent {
		t.Fatalf("visão do supplier inconsistente: %+v", views[0])
	}
}

func TestAcceptProposal(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	customerID := seedUser(t, db, "tecelagem", auth.BusinessTypeCustomer)
	supplierID := seedUser(t, db, "fiacao-a", auth.BusinessTypeSupplier)
	inq := seedInquiry(t, svc, customerID)
	p, err := svc.SubmitProposal(supplierID, ProposalInput{
		InquiryID:   inq.ID,
		CountPrices: []OfferedCountPrice{{Count: 20, OfferedPrice: 9.5}},
	})
	if err != nil {
		t.Fatal(err)
	}

	accepted, err := svc.AcceptProposal(p.ID, customerID)
	if err != nil {
		t.Fatal(err)
	}
	if accepted.Status != status.ProposalAccepted {
		t.Fatalf("esperava proposal_accepted, veio %s", accepted.Status)
	}
	var got Inquiry
	if err := db.First(&got, inq.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Status != status.ProposalAccepted {
		t.Fatalf("inquiry deveria acompanhar o aceite, veio %s", got.Status)
	}
}
