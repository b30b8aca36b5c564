package contract

import (
	"time"

	"github.com/YarnBridge/api-trading/internal/models"
	"github.com/YarnBridge/api-trading/internal/status"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service coordena as cascatas contrato-proposals. Toda escrita
// multi-entidade roda numa transação: ou aplica inteira, ou nada.
type Service struct {
	DB         *gorm.DB
	Repository Repository
	Books      map[string]ProposalBook
}

// NewService recebe um ProposalBook por tipo de contrato; as cadeias de
// domínio registram as implementações na composição do servidor.
func NewService(db *gorm.DB, books map[string]ProposalBook) *Service {
	return &Service{DB: db, Repository: NewRepository(), Books: books}
}

func (s *Service) book(contractType string) (ProposalBook, error) {
	b, ok := s.Books[contractType]
	if !ok {
		return nil, models.NewValidationError("unknown contract type %q", contractType)
	}
	return b, nil
}

// SendInput é o payload de criação de contrato.
type SendInput struct {
	ContractNumber   string    `json:"contractNumber"`
	ContractDate     time.Time `json:"contractDate"`
	ContractType     string    `json:"contractType"`
	SupplierID       uint      `json:"supplierId"`
	CustomerID       uint      `json:"customerId"`
	AllocationNumber string    `json:"allocationNumber"`
	Description      []uint    `json:"description"`
}

// Send valida as referências, cria o contrato em contract_sent_rcvd e
// move cada proposal referenciada para contract_sent, tudo numa unidade.
func (s *Service) Send(in SendInput) (*Contract, error) {
	if in.ContractNumber == "" || in.ContractDate.IsZero() {
		return nil, models.NewValidationError("contract number and date are required")
	}
	if in.ContractType != TypeGeneral && in.ContractType != TypeBlockBooking {
		return nil, models.NewValidationError("contract type must be %q or %q", TypeGeneral, TypeBlockBooking)
	}
	if in.ContractType == TypeBlockBooking && in.AllocationNumber == "" {
		return nil, models.NewValidationError("allocation number is required for block-booking contracts")
	}
	if len(in.Description) == 0 {
		return nil, models.NewValidationError("contract must reference at least one proposal")
	}
	book, err := s.book(in.ContractType)
	if err != nil {
		return nil, err
	}

	var created *Contract
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Toda referência precisa resolver para uma proposal da cadeia
		// correspondente antes de qualquer escrita.
		for _, proposalID := range in.Description {
			if _, err := book.Get(tx, proposalID); err != nil {
				return models.NewValidationError("invalid %s proposal reference %d", in.ContractType, proposalID)
			}
		}
		contract := Contract{
			ContractNumber:   in.ContractNumber,
			ContractDate:     in.ContractDate,
			ContractType:     in.ContractType,
			SupplierID:       in.SupplierID,
			CustomerID:       in.CustomerID,
			AllocationNumber: in.AllocationNumber,
			ContractStatus:   status.ContractSentRcvd,
			Description:      in.Description,
			MonthlyPlans:     []MonthlyPlan{},
		}
		if err := s.Repository.Create(tx, &contract); err != nil {
			return err
		}
		for _, proposalID := range in.Description {
			if err := book.SetStatus(tx, proposalID, status.ContractSent); err != nil {
				return err
			}
		}
		created = &contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Accept move o contrato de contract_sent_rcvd para running e cada
// proposal referenciada para contract_running. O flip condicionado do
// status do contrato é o ponto de serialização: de dois aceites
// concorrentes, o segundo observa o status já avançado e falha sem
// reaplicar a cascata.
func (s *Service) Accept(contractID, customerID, supplierID uint) (*Contract, error) {
	var accepted *Contract
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		contract, err := s.Repository.FindByID(tx, contractID)
		if err != nil {
			return &models.NotFoundError{Entity: "contract", ID: contractID}
		}
		if contract.CustomerID != customerID || contract.SupplierID != supplierID {
			return &models.AuthorizationError{Message: "caller is not a party to this contract"}
		}
		book, err := s.book(contract.ContractType)
		if err != nil {
			return err
		}

		flipped, err := s.Repository.AdvanceStatus(tx, contractID, status.ContractSentRcvd, status.ContractStatusRunning)
		if err != nil {
			return err
		}
		if !flipped {
			return &models.IllegalTransitionError{
				Kind: string(status.KindContract),
				From: string(contract.ContractStatus),
				To:   string(status.ContractStatusRunning),
			}
		}
		for _, proposalID := range contract.Description {
			if err := book.SetStatus(tx, proposalID, status.ContractRunning); err != nil {
				return err
			}
		}
		contract.ContractStatus = status.ContractStatusRunning
		accepted = contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// GetByID devolve o contrato com as proposals referenciadas resolvidas.
func (s *Service) GetByID(contractID uint) (*ContractView, error) {
	contract, err := s.Repository.FindByID(s.DB, contractID)
	if err != nil {
		return nil, &models.NotFoundError{Entity: "contract", ID: contractID}
	}
	view := ContractView{Contract: *contract}
	book, err := s.book(contract.ContractType)
	if err != nil {
		return nil, err
	}
	for _, proposalID := range contract.Description {
		info, err := book.Get(s.DB, proposalID)
		if err != nil {
			continue
		}
		view.Proposals = append(view.Proposals, info)
	}
	return &view, nil
}

// resolveFiltered monta as views resolvendo as proposals e mantendo
// apenas as que estão em um dos statuses aceitos (vazio = todas).
func (s *Service) resolveFiltered(contracts []Contract, keep []status.Status) ([]ContractView, error) {
	keepSet := make(map[status.Status]struct{}, len(keep))
	for _, st := range keep {
		keepSet[st] = struct{}{}
	}
	views := make([]ContractView, 0, len(contracts))
	for _, c := range contracts {
		book, err := s.book(c.ContractType)
		if err != nil {
			return nil, err
		}
		view := ContractView{Contract: c}
		for _, proposalID := range c.Description {
			info, err := book.Get(s.DB, proposalID)
			if err != nil {
				continue
			}
			if len(keepSet) > 0 {
				if _, ok := keepSet[info.Status]; !ok {
					continue
				}
			}
			view.Proposals = append(view.Proposals, info)
		}
		views = append(views, view)
	}
	return views, nil
}

// ListActive lista os contratos da contraparte que já saíram de
// contract_sent_rcvd, com as proposals em estágio de contrato.
func (s *Service) ListActive(userID uint) ([]ContractView, error) {
	contracts, err := s.Repository.ListByParty(s.DB, userID,
		[]status.Status{status.ContractSentRcvd}, "", true)
	if err != nil {
		return nil, err
	}
	return s.resolveFiltered(contracts, []status.Status{
		status.ContractSent, status.ContractAccepted,
		status.ContractRunning, status.Delivered,
	})
}

// ListRunning lista os contratos em execução.
func (s *Service) ListRunning(userID uint) ([]ContractView, error) {
	contracts, err := s.Repository.ListByParty(s.DB, userID,
		[]status.Status{status.ContractStatusRunning}, "", false)
	if err != nil {
		return nil, err
	}
	return s.resolveFiltered(contracts, []status.Status{status.ContractRunning})
}

// ListNew lista os contratos recém enviados e ainda não aceitos, por
// tipo de cadeia.
func (s *Service) ListNew(userID uint, contractType string) ([]ContractView, error) {
	contracts, err := s.Repository.ListByParty(s.DB, userID,
		[]status.Status{status.ContractSentRcvd}, contractType, false)
	if err != nil {
		return nil, err
	}
	return s.resolveFiltered(contracts, nil)
}

// ListCompleted lista os contratos entregues.
func (s *Service) ListCompleted(userID uint) ([]ContractView, error) {
	contracts, err := s.Repository.ListByParty(s.DB, userID,
		[]status.Status{status.ContractDelivered}, "", false)
	if err != nil {
		return nil, err
	}
	return s.resolveFiltered(contracts, []status.Status{status.Delivered})
}

// AttachSODocument anexa a referência do documento de sales order. O
// conteúdo em si nunca é interpretado aqui.
func (s *Service) AttachSODocument(contractID uint, name, path string) (*Contract, error) {
	if name == "" || path == "" {
		return nil, models.NewValidationError("document name and path are required")
	}
	contract, err := s.Repository.FindByID(s.DB, contractID)
	if err != nil {
		return nil, &models.NotFoundError{Entity: "contract", ID: contractID}
	}
	contract.SODocument = &SODocument{Name: name, Path: path}
	if err := s.Repository.SaveVersioned(s.DB, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// PlanInput é uma entrada nova do ledger de planos mensais.
type PlanInput struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
}

// PlanBatch agrupa planos novos por contrato.
type PlanBatch struct {
	ContractID uint        `json:"contractId"`
	Plans      []PlanInput `json:"monthlyPlans"`
}

// CreateMonthlyPlans anexa planos pendentes ao ledger de cada contrato
// sem tocar nas entradas anteriores nem no status do contrato.
func (s *Service) CreateMonthlyPlans(batches []PlanBatch) error {
	if len(batches) == 0 {
		return models.NewValidationError("no plans provided")
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, batch := range batches {
			contract, err := s.Repository.FindByID(tx, batch.ContractID)
			if err != nil {
				return &models.NotFoundError{Entity: "contract", ID: batch.ContractID}
			}
			for _, in := range batch.Plans {
				if in.Date.IsZero() || in.Quantity == 0 {
					return models.NewValidationError("plan date and quantity are required")
				}
				contract.MonthlyPlans = append(contract.MonthlyPlans, MonthlyPlan{
					PlanID:   uuid.NewString(),
					Date:     in.Date,
					Quantity: in.Quantity,
					Status:   status.PlanPending,
				})
			}
			if err := s.Repository.SaveVersioned(tx, contract); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetMonthlyPlans devolve o ledger de planos do contrato.
func (s *Service) GetMonthlyPlans(contractID uint) ([]MonthlyPlan, error) {
	contract, err := s.Repository.FindByID(s.DB, contractID)
	if err != nil {
		return nil, &models.NotFoundError{Entity: "contract", ID: contractID}
	}
	return contract.MonthlyPlans, nil
}

func (s *Service) mutatePlan(contractID uint, planID string, fn func(*MonthlyPlan) error) (*MonthlyPlan, error) {
	var out *MonthlyPlan
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		contract, err := s.Repository.FindByID(tx, contractID)
		if err != nil {
			return &models.NotFoundError{Entity: "contract", ID: contractID}
		}
		for i := range contract.MonthlyPlans {
			if contract.MonthlyPlans[i].PlanID != planID {
				continue
			}
			if err := fn(&contract.MonthlyPlans[i]); err != nil {
				return err
			}
			if err := s.Repository.SaveVersioned(tx, contract); err != nil {
				return err
			}
			out = &contract.MonthlyPlans[i]
			return nil
		}
		return &models.NotFoundError{Entity: "monthly plan"}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReplyMonthlyPlan registra a contraproposta do supplier para um plano.
func (s *Service) ReplyMonthlyPlan(contractID uint, planID string, terms SupplierPlanTerms) (*MonthlyPlan, error) {
	return s.mutatePlan(contractID, planID, func(p *MonthlyPlan) error {
		if err := status.Advance(status.KindMonthlyPlan, p.Status, status.PlanReplied); err != nil {
			return err
		}
		p.SupplierTerms = &terms
		p.Status = status.PlanReplied
		return nil
	})
}

// ResolveMonthlyPlan fecha a negociação do plano: agreed registra o
// acordo final, caso contrário o plano é rejeitado.
func (s *Service) ResolveMonthlyPlan(contractID uint, planID string, agreed bool, final *FinalAgreement) (*MonthlyPlan, error) {
	target := status.PlanRejected
	if agreed {
		target = status.PlanAgreed
	}
	return s.mutatePlan(contractID, planID, func(p *MonthlyPlan) error {
		if err := status.Advance(status.KindMonthlyPlan, p.Status, target); err != nil {
			return err
		}
		if agreed {
			if final == nil {
				return models.NewValidationError("final agreement is required to agree a plan")
			}
			p.FinalAgreement = final
		}
		p.Status = target
		return nil
	})
}
