package general

import (
	"time"

	"github.com/YarnBridge/api-trading/internal/auth"
	"github.com/YarnBridge/api-trading/internal/models"
	"github.com/YarnBridge/api-trading/internal/notification"
	"github.com/YarnBridge/api-trading/internal/status"
	"github.com/YarnBridge/api-trading/internal/store"
	"github.com/YarnBridge/api-trading/internal/user"
	"gorm.io/gorm"
)

// Service concentra as operações de negociação de inquiries gerais. Os
// handlers só traduzem HTTP; toda regra vive aqui.
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

// InquiryInput é o payload de criação de uma inquiry.
type InquiryInput struct {
	Quantity       float64             `json:"quantity"`
	QuantityType   string              `json:"quantityType"`
	Rate           float64             `json:"rate"`
	DeliveryStart  time.Time           `json:"deliveryStartDate"`
	DeliveryEnd    time.Time           `json:"deliveryEndDate"`
	PO             string              `json:"po"`
	Certification  []string            `json:"certification"`
	PaymentTerms   models.PaymentTerms `json:"paymentTerms"`
	Nomination     []uint              `json:"nomination"`
	Specifications string              `json:"specifications"`
	Conewt         float64             `json:"conewt"`
}

// ProposalInput é o payload de submissão de uma proposal.
type ProposalInput struct {
	InquiryID     uint                `json:"inquiryId"`
	Rate          float64             `json:"rate"`
	Quantity      float64             `json:"quantity"`
	QuantityType  string              `json:"quantityType"`
	DeliveryStart time.Time           `json:"deliveryStartDate"`
	DeliveryEnd   time.Time           `json:"deliveryEndDate"`
	PaymentTerms  models.PaymentTerms `json:"paymentTerms"`
}

func validateInquiryInput(in InquiryInput) error {
	if in.Quantity == 0 || in.QuantityType == "" || in.Rate == 0 ||
		in.DeliveryStart.IsZero() || in.DeliveryEnd.IsZero() {
		return models.NewValidationError("missing required fields in one or more inquiries")
	}
	if err := models.ValidateQuantityType(in.QuantityType); err != nil {
		return err
	}
	if err := models.ValidateCertifications(in.Certification); err != nil {
		return err
	}
	return models.ValidatePaymentTerms(in.PaymentTerms)
}

// CreateInquiries cria um lote de inquiries para o customer. Ou todas
// entram, ou nenhuma.
func (s *Service) CreateInquiries(customerID uint, inputs []InquiryInput) ([]Inquiry, error) {
	if len(inputs) == 0 {
		return nil, models.NewValidationError("inquiries data is missing or empty")
	}
	isCustomer, err := s.Users.HasBusinessType(s.DB, customerID, auth.BusinessTypeCustomer)
	if err != nil {
		return nil, err
	}
	if !isCustomer {
		return nil, models.NewValidationError("%d is not a valid customer", customerID)
	}

	now := time.Now()
	created := make([]Inquiry, 0, len(inputs))
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, in := range inputs {
			if err := validateInquiryInput(in); err != nil {
				return err
			}
			inquiry := Inquiry{
				CustomerID:     customerID,
				PO:             in.PO,
				Quantity:       in.Quantity,
				QuantityType:   in.QuantityType,
				Rate:           in.Rate,
				DeliveryStart:  in.DeliveryStart,
				DeliveryEnd:    in.DeliveryEnd,
				Conewt:         in.Conewt,
				Specifications: in.Specifications,
				Certification:  in.Certification,
				PaymentTerms:   in.PaymentTerms,
				Nomination:     in.Nomination,
			}
			inquiry.setStatus(status.InquirySent, now)
			if err := s.Inquiries.Create(tx, &inquiry); err != nil {
				return err
			}
			created = append(created, inquiry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListInquiries devolve a projeção por papel. Customer: as próprias,
// anotadas com proposalsReceived. Supplier: as que o nominam, com o
// status rebaixado para inquiry_sent enquanto ele não propôs.
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
	views := make([]InquiryView, 0)
	for _, inq := range all {
		if !inq.Nominated(userID) {
			continue
		}
		// A visão do supplier é relativa à proposal dele, não ao
		// status global da inquiry.
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

// InquiryDetail é a visão individual da inquiry; para o customer dono,
// inclui os nomes dos suppliers nominados.
type InquiryDetail struct {
	Inquiry      Inquiry  `json:"inquiryDetails"`
	CustomerName string   `json:"customerName"`
	Suppliers    []string `json:"suppliers,omitempty"`
}

func (s *Service) GetInquiry(inquiryID, userID uint, businessType string) (*InquiryDetail, error) {
	inquiry, err := s.Inquiries.FindByID(s.DB, inquiryID)
	if err != nil {
		return nil, &models.NotFoundError{Entity: "inquiry", ID: inquiryID}
	}
	detail := &InquiryDetail{Inquiry: *inquiry, CustomerName: "N/A"}
	if customer, err := s.Users.FindByID(s.DB, inquiry.CustomerID); err == nil {
		detail.CustomerName = customer.Name
	}
	if businessType == auth.BusinessTypeCustomer {
		for _, supplierID := range inquiry.Nomination {
			if supplier, err := s.Users.FindByID(s.DB, supplierID); err == nil {
				detail.Suppliers = append(detail.Suppliers, supplier.Name)
			}
		}
	}
	return detail, nil
}

// CloseInquiry encerra a inquiry e força inquiry_closed em todas as
// proposals vinculadas, numa transação só. É a única escrita autorizada a
// ignorar a tabela de transição.
func (s *Service) CloseInquiry(inquiryID uint, reason string) (*Inquiry, error) {
	var closed *Inquiry
	var openProposals int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		inquiry, err := s.Inquiries.FindByID(tx, inquiryID)
		if err != nil {
			return &models.NotFoundError{Entity: "inquiry", ID: inquiryID}
		}
		proposals, err := s.Proposals.ListByInquiry(tx, inquiryID)
		if err != nil {
			return err
		}
		openProposals = int64(len(proposals))

		inquiry.setStatus(status.InquiryClosed, time.Now())
		if reason != "" {
			inquiry.CloseReason = reason
		}
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
		go s.Notifier.InquiryWithdrawn("general", inquiryID, openProposals)
	}
	return closed, nil
}

// SubmitProposals processa um lote de proposals do supplier. Segunda
// submissão para a mesma inquiry atualiza a existente em vez de duplicar;
// uma proposal rejeitada reabre para proposal_sent.
func (s *Service) SubmitProposals(supplierID uint, inputs []ProposalInput) ([]Proposal, error) {
	if len(inputs) == 0 {
		return nil, models.NewValidationError("no proposals provided")
	}
	now := time.Now()
	result := make([]Proposal, 0, len(inputs))
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, in := range inputs {
			if err := models.ValidatePaymentTerms(in.PaymentTerms); err != nil {
				return err
			}
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
				existing.Rate = in.Rate
				existing.Quantity = in.Quantity
				existing.QuantityType = in.QuantityType
				existing.DeliveryStart = in.DeliveryStart
				existing.DeliveryEnd = in.DeliveryEnd
				existing.PaymentTerms = in.PaymentTerms
				if existing.Status == status.ProposalRejected {
					existing.setStatus(status.ProposalSent, now)
				}
				if err := s.Proposals.SaveVersioned(tx, existing); err != nil {
					return err
				}
				result = append(result, *existing)
			case store.IsNotFound(err):
				proposal := Proposal{
					InquiryID:     in.InquiryID,
					SupplierID:    supplierID,
					Rate:          in.Rate,
					Quantity:      in.Quantity,
					QuantityType:  in.QuantityType,
					DeliveryStart: in.DeliveryStart,
					DeliveryEnd:   in.DeliveryEnd,
					PaymentTerms:  in.PaymentTerms,
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
				result = append(result, proposal)
			default:
				return err
			}

			// Avança a inquiry para proposal_sent sem rebaixar quem já
			// passou desse estágio.
			if status.InquiryStageRank(inquiry.Status) < status.InquiryStageRank(status.ProposalSent) {
				inquiry.setStatus(status.ProposalSent, now)
				if err := s.Inquiries.SaveVersioned(tx, inquiry); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AcceptProposal aceita a proposal em nome do customer dono da inquiry.
// O número de PO é obrigatório e é copiado para inquiry e proposal.
func (s *Service) AcceptProposal(proposalID, customerID uint, po string) (*Proposal, error) {
	if po == "" {
		return nil, models.NewValidationError("PO required")
	}
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
		inquiry.PO = po
		inquiry.setStatus(status.ProposalAccepted, now)
		if err := s.Inquiries.SaveVersioned(tx, inquiry); err != nil {
			return err
		}
		proposal.PO = po
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

// RejectProposal marca a proposal como rejeitada; uma nova submissão do
// supplier reabre.
func (s *Service) RejectProposal(proposalID, customerID uint) (*Proposal, error) {
	var rejected *Proposal
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
		if err := status.Advance(status.KindProposal, proposal.Status, status.ProposalRejected); err != nil {
			return err
		}
		proposal.setStatus(status.ProposalRejected, time.Now())
		if err := s.Proposals.SaveVersioned(tx, proposal); err != nil {
			return err
		}
		rejected = proposal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// InquiryProposalsView combina a inquiry com as proposals visíveis ao
// chamador.
type InquiryProposalsView struct {
	Inquiry   Inquiry    `json:"inquiryDetails"`
	Proposals []Proposal `json:"proposals"`
}

// ListProposalsForInquiry aplica a regra de exclusividade: o supplier só
// enxerga as próprias proposals, e apenas enquanto nenhum outro supplier
// tiver proposta na mesma inquiry.
func (s *Service) ListProposalsForInquiry(inquiryID, userID uint, businessType string) (*InquiryProposalsView, error) {
	inquiry, err := s.Inquiries.FindByID(s.DB, inquiryID)
	if err != nil {
		return nil, &models.NotFoundError{Entity: "inquiry", ID: inquiryID}
	}

	var proposals []Proposal
	if businessType == auth.BusinessTypeSupplier {
		own, err := s.Proposals.ListByInquiryAndSupplier(s.DB, inquiryID, userID)
		if err != nil {
			return nil, err
		}
		if len(own) == 0 {
			return nil, &models.NotFoundError{Entity: "proposal"}
		}
		others, err := s.Proposals.CountOthers(s.DB, inquiryID, userID)
		if err != nil {
			return nil, err
		}
		if others > 0 {
			return nil, &models.ForbiddenError{Message: "competing proposals exist"}
		}
		proposals = own
	} else {
		if inquiry.CustomerID != userID {
			return nil, &models.AuthorizationError{Message: "caller is not a party to this inquiry"}
		}
		proposals, err = s.Proposals.ListByInquiry(s.DB, inquiryID)
		if err != nil {
			return nil, err
		}
	}
	if len(proposals) == 0 {
		return nil, &models.NotFoundError{Entity: "proposal"}
	}
	return &InquiryProposalsView{Inquiry: *inquiry, Proposals: proposals}, nil
}

// ListProposals lista as proposals do papel: supplier vê as próprias
// (mais recentes primeiro); customer vê as recebidas nas suas inquiries.
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
