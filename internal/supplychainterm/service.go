package supplychainterm

import (
	"time"

	"github.com/YarnBridge/api-trading/internal/auth"
	"github.com/YarnBridge/api-trading/internal/models"
	"github.com/YarnBridge/api-trading/internal/status"
	"github.com/YarnBridge/api-trading/internal/store"
	"github.com/YarnBridge/api-trading/internal/user"
	"gorm.io/gorm"
)

// Service concentra as operações de supply chain terms. Toda escrita que
// altera os valores correntes snapshota o estado anterior em Revisions.
type Service struct {
	DB         *gorm.DB
	Repository Repository
	Users      user.Repository
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, Repository: NewRepository(), Users: user.NewRepository()}
}

// TermInput carrega as condições comerciais do customer.
type TermInput struct {
	PaymentMode        string     `json:"paymentMode"`
	ShipmentTerms      string     `json:"shipmentTerms"`
	BusinessConditions string     `json:"businessConditions"`
	Days               int        `json:"days"`
	EndDate            *time.Time `json:"endDate"`
}

// ReplyInput carrega a contraproposta do supplier.
type ReplyInput struct {
	SupplierShipmentTerms      string     `json:"supplierShipmentTerms"`
	SupplierBusinessConditions string     `json:"supplierBusinessConditions"`
	SupplierEndDate            *time.Time `json:"supplierEndDate"`
}

func validateTermInput(in TermInput) error {
	if in.ShipmentTerms == "" || in.Days == 0 {
		return models.NewValidationError("shipment terms and days are required")
	}
	if err := models.ValidatePaymentMode(in.PaymentMode); err != nil {
		return err
	}
	return models.ValidateBusinessConditions(in.BusinessConditions)
}

func validateEndDate(general bool, endDate *time.Time, now time.Time) error {
	if general {
		if endDate != nil {
			return models.NewValidationError("endDate must not be provided when general is true")
		}
		return nil
	}
	if endDate == nil {
		return models.NewValidationError("endDate is required for supplier-scoped terms")
	}
	if !endDate.After(now) {
		return models.NewValidationError("endDate must be in the future")
	}
	return nil
}

// CreateGeneral cria o term geral do customer; no máximo um por customer.
func (s *Service) CreateGeneral(customerID uint, in TermInput) (*Term, error) {
	if err := validateTermInput(in); err != nil {
		return nil, err
	}
	if err := validateEndDate(true, in.EndDate, time.Now()); err != nil {
		return nil, err
	}
	if _, err := s.Repository.FindGeneralByCustomer(s.DB, customerID); err == nil {
		return nil, &models.ConflictError{Message: "general term already exists"}
	} else if !store.IsNotFound(err) {
		return nil, err
	}

	term := Term{
		CustomerID:         customerID,
		General:            true,
		PaymentMode:        in.PaymentMode,
		ShipmentTerms:      in.ShipmentTerms,
		BusinessConditions: in.BusinessConditions,
		Days:               in.Days,
		Revisions:          []Revision{},
	}
	if err := s.Repository.Create(s.DB, &term); err != nil {
		return nil, err
	}
	return &term, nil
}

// UpdateGeneral sobrescreve as condições do term geral, snapshotando os
// valores anteriores.
func (s *Service) UpdateGeneral(termID, customerID uint, in TermInput) (*Term, error) {
	if err := validateTermInput(in); err != nil {
		return nil, err
	}
	var updated *Term
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		term, err := s.Repository.FindByID(tx, termID)
		if err != nil {
			return &models.NotFoundError{Entity: "term", ID: termID}
		}
		if term.CustomerID != customerID {
			return &models.AuthorizationError{Message: "caller is not a party to this term"}
		}
		if !term.General {
			return models.NewValidationError("term %d is not a general term", termID)
		}
		term.snapshot(time.Now())
		term.PaymentMode = in.PaymentMode
		term.ShipmentTerms = in.ShipmentTerms
		term.BusinessConditions = in.BusinessConditions
		term.Days = in.Days
		if err := s.Repository.SaveVersioned(tx, term); err != nil {
			return err
		}
		updated = term
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CreateNew cria um term escopado a um supplier; único por par
// (customer, supplier) e com endDate futura obrigatória.
func (s *Service) CreateNew(customerID, supplierID uint, in TermInput) (*Term, error) {
	if err := validateTermInput(in); err != nil {
		return nil, err
	}
	if err := validateEndDate(false, in.EndDate, time.Now()); err != nil {
		return nil, err
	}
	isSupplier, err := s.Users.HasBusinessType(s.DB, supplierID, auth.BusinessTypeSupplier)
	if err != nil {
		return nil, err
	}
	if !isSupplier {
		return nil, models.NewValidationError("%d is not a valid supplier", supplierID)
	}
	if _, err := s.Repository.FindByPair(s.DB, customerID, supplierID); err == nil {
		return nil, &models.ConflictError{Message: "term already exists with this supplier"}
	} else if !store.IsNotFound(err) {
		return nil, err
	}

	term := Term{
		CustomerID:         customerID,
		SupplierID:         supplierID,
		General:            false,
		PaymentMode:        in.PaymentMode,
		ShipmentTerms:      in.ShipmentTerms,
		BusinessConditions: in.BusinessConditions,
		Days:               in.Days,
		EndDate:            in.EndDate,
		Status:             status.TermProposalSentReceived,
		Revisions:          []Revision{},
	}
	if err := s.Repository.Create(s.DB, &term); err != nil {
		return nil, err
	}
	return &term, nil
}

// Renew snapshota os valores correntes, sobrescreve com os novos e marca
// o term como renew_requested_received.
func (s *Service) Renew(termID, customerID uint, in TermInput) (*Term, error) {
	if err := validateTermInput(in); err != nil {
		return nil, err
	}
	var renewed *Term
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		term, err := s.Repository.FindByID(tx, termID)
		if err != nil {
			return &models.NotFoundError{Entity: "term", ID: termID}
		}
		if term.CustomerID != customerID {
			return &models.AuthorizationError{Message: "caller is not a party to this term"}
		}
		if err := validateEndDate(term.General, in.EndDate, time.Now()); err != nil {
			return err
		}
		if term.Status != "" {
			if err := status.Advance(status.KindTerm, term.Status, status.TermRenewRequested); err != nil {
				return err
			}
		}
		term.snapshot(time.Now())
		term.PaymentMode = in.PaymentMode
		term.ShipmentTerms = in.ShipmentTerms
		term.BusinessConditions = in.BusinessConditions
		term.Days = in.Days
		term.EndDate = in.EndDate
		term.Status = status.TermRenewRequested
		if err := s.Repository.SaveVersioned(tx, term); err != nil {
			return err
		}
		renewed = term
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renewed, nil
}

// Reply registra a contraproposta do supplier e marca o term como
// proposal_replied.
func (s *Service) Reply(termID, supplierID uint, in ReplyInput) (*Term, error) {
	var replied *Term
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		term, err := s.Repository.FindByID(tx, termID)
		if err != nil {
			return &models.NotFoundError{Entity: "term", ID: termID}
		}
		if term.SupplierID != supplierID {
			return &models.AuthorizationError{Message: "caller is not a party to this term"}
		}
		if in.SupplierBusinessConditions != "" {
			if err := models.ValidateBusinessConditions(in.SupplierBusinessConditions); err != nil {
				return err
			}
		}
		if err := status.Advance(status.KindTerm, term.Status, status.TermProposalReplied); err != nil {
			return err
		}
		term.SupplierShipmentTerms = in.SupplierShipmentTerms
		term.SupplierBusinessConditions = in.SupplierBusinessConditions
		term.SupplierEndDate = in.SupplierEndDate
		term.Status = status.TermProposalReplied
		if err := s.Repository.SaveVersioned(tx, term); err != nil {
			return err
		}
		replied = term
		return nil
	})
	if err != nil {
		return nil, err
	}
	return replied, nil
}

// Accept fecha o acordo: o term passa a contracted.
func (s *Service) Accept(termID, customerID, supplierID uint) (*Term, error) {
	var accepted *Term
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		term, err := s.Repository.FindByID(tx, termID)
		if err != nil {
			return &models.NotFoundError{Entity: "term", ID: termID}
		}
		if term.CustomerID != customerID || term.SupplierID != supplierID {
			return &models.AuthorizationError{Message: "caller is not a party to this term"}
		}
		if err := status.Advance(status.KindTerm, term.Status, status.TermContracted); err != nil {
			return err
		}
		term.Status = status.TermContracted
		if err := s.Repository.SaveVersioned(tx, term); err != nil {
			return err
		}
		accepted = term
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// GetGeneral devolve o term geral do customer, ou nil se não existir.
func (s *Service) GetGeneral(customerID uint) (*Term, error) {
	term, err := s.Repository.FindGeneralByCustomer(s.DB, customerID)
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return term, nil
}

// ListScoped lista os terms escopados em que o usuário participa.
func (s *Service) ListScoped(userID uint) ([]Term, error) {
	return s.Repository.ListScopedByParty(s.DB, userID)
}
