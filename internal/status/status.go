package status

import (
	"time"

	"github.com/YarnBridge/api-trading/internal/models"
)

// Status é o valor textual persistido no banco, um conjunto fechado por
// tipo de entidade.
type Status string

// Ciclo de vida de inquiries e proposals.
const (
	InquirySent      Status = "inquiry_sent"
	ProposalSent     Status = "proposal_sent"
	Negotiation      Status = "negotiation"
	ProposalAccepted Status = "proposal_accepted"
	ContractSent     Status = "contract_sent"
	ContractAccepted Status = "contract_accepted"
	ContractRunning  Status = "contract_running"
	Delivered        Status = "delivered"
	InquiryClosed    Status = "inquiry_closed"
	ProposalRejected Status = "proposal_rejected"
)

// Ciclo de vida do contrato (contractStatus).
const (
	ContractReplyAwaited     Status = "reply_awaited"
	ContractClosed           Status = "closed"
	ContractProposalRcvd     Status = "proposal_rcvd"
	ContractUnderNegotiation Status = "under_negotiation"
	ContractAwaited          Status = "contract_awaited"
	ContractSentRcvd         Status = "contract_sent_rcvd"
	ContractConfirmed        Status = "confirmed"
	ContractStatusRunning    Status = "running"
	ContractDelivered        Status = "dlvrd"
)

// Ciclo de vida do supply chain term.
const (
	TermProposalSentReceived Status = "proposal_sent_received"
	TermProposalReplied      Status = "proposal_replied"
	TermContractSentReceived Status = "contract_sent_received"
	TermContracted           Status = "contracted"
	TermRenewRequested       Status = "renew_requested_received"
)

// Ciclo de vida de um plano mensal dentro de um contrato.
const (
	PlanPending  Status = "pending"
	PlanAgreed   Status = "agreed"
	PlanRejected Status = "rejected"
	PlanReplied  Status = "replied"
	PlanRevised  Status = "revised"
)

// Kind identifica qual tabela de transição governa a entidade.
type Kind string

const (
	KindInquiry     Kind = "inquiry"
	KindProposal    Kind = "proposal"
	KindContract    Kind = "contract"
	KindTerm        Kind = "supply_chain_term"
	KindMonthlyPlan Kind = "monthly_plan"
)

// AgingDays devolve os dias inteiros decorridos entre a criação e a
// mudança de status rastreada.
func AgingDays(createdAt, changedAt time.Time) int {
	if changedAt.Before(createdAt) {
		return 0
	}
	return int(changedAt.Sub(createdAt).Hours() / 24)
}

// Validate falha com InvalidStateError quando o status não pertence à
// enumeração do tipo.
func Validate(kind Kind, s Status) error {
	if _, ok := enums[kind][s]; !ok {
		return &models.InvalidStateError{Kind: string(kind), Status: string(s)}
	}
	return nil
}

// CanAdvance informa se a tabela permite a transição. Transições para o
// mesmo status são sempre permitidas (saves que não mexem no status).
func CanAdvance(kind Kind, from, to Status) bool {
	if from == to {
		return true
	}
	next, ok := transitions[kind][from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Advance valida enumeração e tabela; o chamador aplica a mutação.
func Advance(kind Kind, from, to Status) error {
	if err := Validate(kind, to); err != nil {
		return err
	}
	if !CanAdvance(kind, from, to) {
		return &models.IllegalTransitionError{Kind: string(kind), From: string(from), To: string(to)}
	}
	return nil
}

// InquiryStageRank ordena os estágios da inquiry para decidir se ela já
// passou de um ponto do funil (ex.: não rebaixar para proposal_sent).
func InquiryStageRank(s Status) int {
	switch s {
	case InquirySent:
		return 0
	case ProposalSent:
		return 1
	case Negotiation:
		return 2
	case ProposalAccepted:
		return 3
	case ContractSent:
		return 4
	case ContractAccepted:
		return 5
	case ContractRunning:
		return 6
	case Delivered:
		return 7
	default:
		return -1
	}
}
