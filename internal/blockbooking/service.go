package blockbooking

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/YarnBridge/api-trading/internal/auth"
	"github.com/YarnBridge/api-trading/internal/models"
	"github.com/YarnBridge/api-trading/internal/notification"
	"github.com/YarnBridge/api-trading/internal/status"
	"github.com/YarnBridge/api-trading/internal/store"
	"github.com/YarnBridge/api-trading/internal/user"
	"gorm.io/gorm"
)

const (
	minCount = 6
	maxCount = 120
)

// Service concentra as operações de block booking. O modelo é broadcast:
// toda inquiry aberta é visível a qualquer supplier.
type Service struct {
	DB        *gorm.DB
	Inquiries InquiryRepository
	Proposals ProposalRepository
	Users     user.Repository
	Notifier  *notification.Client
}

func NewService(db *gorm.DB, notifier *notification.Client) *Service {
	return &Service{
		DB:        db,
		Inquiries: NewInquiryRepository(),
		Proposals: NewProposalRepository(),
		Users:     user.NewRepository(),
		Notifier:  notifier,
	}
}

// InquiryInput é o payload de criação de uma inquiry de block booking.
type InquiryInput struct {
	BaseSpecs            BaseSpecs             `json:"baseSpecs"`
	BaseCount            int                   `json:"baseCount"`
	SlubUpcharge         float64               `json:"slubUpcharge"`
	TargetBasePrice      float64               `json:"targetBasePrice"`
	Quantity             float64               `json:"quantity"`
	QuantityType         string                `json:"quantityType"`
	DeliveryStart        time.Time             `json:"deliveryStartDate"`
	DeliveryEnd          time.Time             `json:"deliveryEndDate"`
	LowerCount           int                   `json:"lowerCount"`
	UpperCount           int                   `json:"upperCount"`
	CountPrices          []CountPrice          `json:"countPrices"`
	PaymentTerms         models.PaymentTerms   `json:"paymentTerms"`
	MaterialCharges      []MaterialCharge      `json:"materialCharges"`
	CertificateUpcharges []CertificateUpcharge `json:"certificateUpcharges"`
}

// ProposalInput é o payload de submissão do supplier.
type ProposalInput struct {
	InquiryID            uint                         `json:"inquiryId"`
	CountPrices          []OfferedCountPrice          `json:"countPrices"`
	MaterialCharges      []OfferedMaterialCharge      `json:"materialCharges"`
	CertificateUpcharges []OfferedCertificateUpcharge `json:"certificateUpcharges"`
	PaymentTerms         OfferedPaymentTerms          `json:"paymentTerms"`
}

// validateCountPrices exige cobertura de todos os counts inteiros no
// intervalo [lower, upper]; o erro lista os counts faltantes.
func validateCountPrices(lower, upper int, prices []CountPrice) error {
	if upper < lower {
		return models.NewValidationError("upper count cannot be less than lower count")
	}
	provided := make(map[int]bool, len(prices))
	for _, cp := range prices {
		provided[cp.Count] = true
	}
	var missing []int
	for c := lower; c <= upper; c++ {
		if !provided[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		parts := make([]string, len(missing))
		for i, c := range missing {
			parts[i] = strconv.Itoa(c)
		}
		return models.NewValidationError("missing prices for counts: %s", strings.Join(parts, ", "))
	}
	return nil
}

func validateInquiryInput(in InquiryInput) error {
	if in.Quantity == 0 || in.TargetBasePrice == 0 ||
		in.DeliveryStart.IsZero() || in.DeliveryEnd.IsZero() {
		return models.NewValidationError("missing required inquiry fields")
	}
	if in.BaseCount < minCount || in.BaseCount > maxCount {
		return models.NewValidationError("base count must be between %d and %d", minCount, maxCount)
	}
	if in.LowerCount < minCount || in.UpperCount > maxCount {
		return models.NewValidationError("count range must be between %d and %d", minCount, maxCount)
	}
	if err := models.ValidateQuantityType(in.QuantityType); err != nil {
		return err
	}
	if err := validateCountPrices(in.LowerCount, in.UpperCount, in.CountPrices); err != nil {
		return err
	}
	return models.ValidatePaymentTerms(in.PaymentTerms)
}

// CreateInquiry cria uma inquiry de block booking para o customer.
func (s *Service) CreateInquiry(customerID uint, in InquiryInput) (*Inquiry, error) {
	if err := validateInquiryInput(in); err != nil {
		return nil, err
	}
	isCustomer, err := s.Users.HasBusinessType(s.DB, customerID, auth.BusinessTypeCustomer)
	if err != nil {
		return nil, err
	}
	if !isCustomer {
		return nil, models.NewValidationError("%d is not a valid customer", customerID)
	}

	inquiry := Inquiry{
		CustomerID:           customerID,
		BaseSpecs:            in.BaseSpecs,
		BaseCount:            in.BaseCount,
		SlubUpcharge:         in.SlubUpcharge,
		TargetBasePrice:      in.TargetBasePrice,
		Quantity:             in.Quantity,
		QuantityType:         in.QuantityType,
		DeliveryStart:        in.DeliveryStart,
		DeliveryEnd:          in.DeliveryEnd,
		LowerCount:           in.LowerCount,
		UpperCount:           in.UpperCount,
		CountPrices:          in.CountPrices,
		PaymentTerms:         in.PaymentTerms,
		MaterialCharges:      in.MaterialCharges,
		CertificateUpcharges: in.CertificateUpcharges,
	}
	inquiry.setStatus(status.InquirySent, time.Now())
	if err := s.Inquiries.Create(s.DB, &inquiry); err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// ListInquiries devolve a projeção por papel. Supplier vê todas as
// inquiries abertas (broadcast), com o status rebaixado para inquiry_sent
// enquanto ele não propôs; customer vê as próprias com proposalsReceived.
func (s *Service) ListInquiries(userID uint, businessType string) ([]InquiryView, error) {
	if businessType == auth.BusinessTypeCustomer {
		list, err := s.Inquiries.ListByCustomer(s.DB, userID)
		if err != nil {
			return nil, err
		}
		ids := make([]uint, len(list))
		for i, inq := range list {
			ids[i] = inq.ID
		}
		counts, err := s.Proposals.CountByInquiry(s.DB, ids)
		if err != nil {
			return nil, err
		}
		views := make([]InquiryView, len(list))
		for i, inq := range list {
			views[i] = InquiryView{Inquiry: inq, ProposalsReceived: counts[inq.ID]}
		}
		return views, nil
	}

	all, err := s.Inquiries.ListAll(s.DB)
	if err != nil {
		return nil, err
	}
	views := make([]InquiryView, 0, len(all))
	for _, inq := range all {
		if inq.Status == status.InquiryClosed {
			continue
		}
		if _, err := s.Proposals.FindByPair(s.DB, inq.ID, userID); err != nil {
			if !store.IsNotFound(err) {
				return nil, err
			}
			inq.Status = status.InquirySent
		}
		views = append(views, InquiryView{Inquiry: inq})
	}
	return views, nil
}

func (s *Service) GetInquiry(inquiryID uint) (*Inquiry, error) {
	inquiry, err := s.Inquiries.FindByID(s.DB, inquiryID)
	if err != nil {
		return nil, &models.NotFoundError{Entity: "inquiry", ID: inquiryID}
	}
	return inquiry, nil
}

// DeclineInquiry encerra a inquiry e força inquiry_closed em todas as
// proposals vinculadas, numa transação só.
func (s *Service) DeclineInquiry(inquiryID, customerID uint) (*Inquiry, error) {
	var closed *Inquiry
	var openProposals int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		inquiry, err := s.Inquiries.FindByID(tx, inquiryID)
		if err != nil {
			return &models.NotFoundError{Entity: "inquiry", ID: inquiryID}
		}
		if inquiry.CustomerID != customerID {
			return &models.AuthorizationError{Message: "caller is not a party to this inquiry"}
		}
		proposals, err := s.Proposals.ListByInquiry(tx, inquiryID)
		if err != nil {
			return err
		}
		openProposals = int64(len(proposals))

		inquiry.setStatus(status.InquiryClosed, time.Now())
		if err := s.Inquiries.SaveVersioned(tx, inquiry); err != nil {
			return err
		}
		if err := s.Proposals.ForceStatusByInquiry(tx, inquiryID, status.InquiryClosed); err != nil {
			return err
		}
		closed = inquiry
		return nil
	})
	if err != nil {
		return nil, err
	}
	if openProposals > 0 {
		go s.Notifier.InquiryWithdrawn("blockbooking", inquiryID, openProposals)
	}
	return closed, nil
}

// SubmitProposal cria ou atualiza a proposal do supplier para a inquiry.
// Segunda submissão atualiza a existente; rejeitada reabre.
func (s *Service) SubmitProposal(supplierID uint, in ProposalInput) (*Proposal, error) {
	var result *Proposal
	now := time.Now()
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		inquiry, err := s.Inquiries.FindByID(tx, in.InquiryID)
		if err != nil {
			return &models.NotFoundError{Entity: "inquiry", ID: in.InquiryID}
		}
		if inquiry.Status == status.InquiryClosed {
			return &models.IllegalTransitionError{
				Kind: string(status.KindInquiry),
				From: string(status.InquiryClosed),
				To:   string(status.ProposalSent),
			}
		}

		existing, err := s.Proposals.FindByPair(tx, in.InquiryID, supplierID)
		switch {
		case err == nil:
			existing.CountPrices = in.CountPrices
			existing.MaterialCharges = in.MaterialCharges
			existing.CertificateUpcharges = in.CertificateUpcharges
			existing.PaymentTerms = in.PaymentTerms
			if existing.Status == status.ProposalRejected {
				existing.setStatus(status.ProposalSent, now)
			}
			if err := s.Proposals.SaveVersioned(tx, existing); err != nil {
				return err
			}
			result = existing
		case store.IsNotFound(err):
			proposal := Proposal{
				InquiryID:            in.InquiryID,
				SupplierID:           supplierID,
				CountPrices:          in.CountPrices,
				MaterialCharges:      in.MaterialCharges,
				CertificateUpcharges: in.CertificateUpcharges,
				PaymentTerms:         in.PaymentTerms,
			}
			proposal.setStatus(status.ProposalSent, now)
			if err := s.Proposals.Create(tx, &proposal); err != nil {
				// Corrida entre duas submissões do mesmo par: a
				// constraint única segura a segunda.
				if store.IsDuplicate(err) {
					return &models.ConflictError{Message: "proposal already exists for this inquiry"}
				}
				return err
			}
			result = &proposal
		default:
			return err
		}

		if status.InquiryStageRank(inquiry.Status) < status.InquiryStageRank(status.ProposalSent) {
			inquiry.setStatus(status.ProposalSent, now)
			if err := s.Inquiries.SaveVersioned(tx, inquiry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AcceptProposal aceita a proposal de block booking. Diferente da cadeia
// general, não há PO nesta etapa.
func (s *Service) AcceptProposal(proposalID, customerID uint) (*Proposal, error) {
	var accepted *Proposal
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		proposal, err := s.Proposals.FindByID(tx, proposalID)
		if err != nil {
			return &models.NotFoundError{Entity: "proposal", ID: proposalID}
		}
		inquiry, err := s.Inquiries.FindByID(tx, proposal.InquiryID)
		if err != nil {
			return &models.NotFoundError{Entity: "inquiry", ID: proposal.InquiryID}
		}
		if inquiry.CustomerID != customerID {
			return &models.AuthorizationError{Message: "caller is not a party to this inquiry"}
		}
		if inquiry.Status == status.InquiryClosed {
			return &models.NotFoundError{Entity: "inquiry", ID: inquiry.ID}
		}
		if err := status.Advance(status.KindProposal, proposal.Status, status.ProposalAccepted); err != nil {
			return err
		}
		if err := status.Advance(status.KindInquiry, inquiry.Status, status.ProposalAccepted); err != nil {
			return err
		}

		now := time.Now()
		inquiry.setStatus(status.ProposalAccepted, now)
		if err := s.Inquiries.SaveVersioned(tx, inquiry); err != nil {
			return err
		}
		proposal.setStatus(status.ProposalAccepted, now)
		if err := s.Proposals.SaveVersioned(tx, proposal); err != nil {
			return err
		}
		accepted = proposal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// InquiryProposalsView combina a inquiry com as proposals visíveis.
type InquiryProposalsView struct {
	Inquiry   Inquiry    `json:"inquiryDetails"`
	Proposals []Proposal `json:"proposals"`
}

// ListProposalsForInquiry: customer dono vê todas; supplier vê apenas as
// próprias. Não há regra de exclusividade no modelo broadcast.
func (s *Service) ListProposalsForInquiry(inquiryID, userID uint, businessType string) (*InquiryProposalsView, error) {
	inquiry, err := s.Inquiries.FindByID(s.DB, inquiryID)
	if err != nil {
		return nil, &models.NotFoundError{Entity: "inquiry", ID: inquiryID}
	}
	var proposals []Proposal
	if businessType == auth.BusinessTypeSupplier {
		proposals, err = s.Proposals.ListByInquiryAndSupplier(s.DB, inquiryID, userID)
	} else {
		if inquiry.CustomerID != userID {
			return nil, &models.AuthorizationError{Message: "caller is not a party to this inquiry"}
		}
		proposals, err = s.Proposals.ListByInquiry(s.DB, inquiryID)
	}
	if err != nil {
		return nil, err
	}
	if len(proposals) == 0 {
		return nil, &models.NotFoundError{Entity: "proposal"}
	}
	return &InquiryProposalsView{Inquiry: *inquiry, Proposals: proposals}, nil
}

// ListProposals lista as proposals do papel.
func (s *Service) ListProposals(userID uint, businessType string) ([]Proposal, error) {
	if businessType == auth.BusinessTypeSupplier {
		return s.Proposals.ListBySupplier(s.DB, userID)
	}
	inquiries, err := s.Inquiries.ListByCustomer(s.DB, userID)
	if err != nil {
		return nil, err
	}
	var all []Proposal
	for _, inq := range inquiries {
		list, err := s.Proposals.ListByInquiry(s.DB, inq.ID)
		if err != nil {
			return nil, err
		}
		all = append(all, list...)
	}
	return all, nil
}
