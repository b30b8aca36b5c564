package status

// Tabelas de transição por tipo de entidade. A cascata de decline é a
// única escrita que ignora a tabela: um fechamento abrupto força
// inquiry_closed nas proposals vinculadas independente do estado atual.

var inquiryStatuses = []Status{
	InquirySent, ProposalSent, Negotiation, ProposalAccepted,
	ContractSent, ContractAccepted, ContractRunning, Delivered,
	InquiryClosed,
}

var proposalStatuses = []Status{
	ProposalSent, Negotiation, ProposalAccepted, ContractSent,
	ContractAccepted, ContractRunning, Delivered, InquiryClosed,
	ProposalRejected,
}

var contractStatuses = []Status{
	ContractReplyAwaited, ContractClosed, ContractProposalRcvd,
	ContractUnderNegotiation, ContractAwaited, ContractSentRcvd,
	ContractConfirmed, ContractStatusRunning, ContractDelivered,
}

var termStatuses = []Status{
	TermProposalSentReceived, TermProposalReplied,
	TermContractSentReceived, TermContracted, TermRenewRequested,
}

var planStatuses = []Status{
	PlanPending, PlanAgreed, PlanRejected, PlanReplied, PlanRevised,
}

var transitions = map[Kind]map[Status][]Status{
	KindInquiry: {
		InquirySent:      {ProposalSent, InquiryClosed},
		ProposalSent:     {Negotiation, ProposalAccepted, InquiryClosed},
		Negotiation:      {ProposalAccepted, InquiryClosed},
		ProposalAccepted: {ContractSent, InquiryClosed},
		ContractSent:     {ContractAccepted, ContractRunning, InquiryClosed},
		ContractAccepted: {ContractRunning, InquiryClosed},
		ContractRunning:  {Delivered, InquiryClosed},
		Delivered:        {},
		InquiryClosed:    {},
	},
	KindProposal: {
		ProposalSent:     {Negotiation, ProposalAccepted, ProposalRejected, InquiryClosed},
		Negotiation:      {ProposalAccepted, ProposalRejected, InquiryClosed},
		ProposalAccepted: {ContractSent, InquiryClosed},
		ContractSent:     {ContractAccepted, ContractRunning, InquiryClosed},
		ContractAccepted: {ContractRunning, InquiryClosed},
		ContractRunning:  {Delivered, InquiryClosed},
		Delivered:        {},
		InquiryClosed:    {},
		ProposalRejected: {ProposalSent},
	},
	KindContract: {
		ContractReplyAwaited:     {ContractUnderNegotiation, ContractClosed},
		ContractProposalRcvd:     {ContractUnderNegotiation, ContractClosed},
		ContractUnderNegotiation: {ContractConfirmed, ContractAwaited, ContractClosed},
		ContractAwaited:          {ContractSentRcvd, ContractClosed},
		ContractSentRcvd:         {ContractStatusRunning, ContractClosed},
		ContractConfirmed:        {ContractStatusRunning, ContractClosed},
		ContractStatusRunning:    {ContractDelivered},
		ContractDelivered:        {},
		ContractClosed:           {},
	},
	KindTerm: {
		TermProposalSentReceived: {TermProposalReplied, TermRenewRequested},
		TermProposalReplied:      {TermContractSentReceived, TermContracted, TermRenewRequested},
		TermContractSentReceived: {TermContracted, TermRenewRequested},
		TermContracted:           {TermRenewRequested},
		TermRenewRequested:       {TermProposalReplied, TermContracted},
	},
	KindMonthlyPlan: {
		PlanPending:  {PlanAgreed, PlanRejected, PlanReplied},
		PlanReplied:  {PlanAgreed, PlanRejected, PlanRevised},
		PlanRevised:  {PlanAgreed, PlanRejected, PlanReplied},
		PlanAgreed:   {},
		PlanRejected: {},
	},
}

var enums = buildEnums()

func buildEnums() map[Kind]map[Status]struct{} {
	all := map[Kind][]Status{
		KindInquiry:     inquiryStatuses,
		KindProposal:    proposalStatuses,
		KindContract:    contractStatuses,
		KindTerm:        termStatuses,
		KindMonthlyPlan: planStatuses,
	}
	out := make(map[Kind]map[Status]struct{}, len(all))
	for kind, list := range all {
		set := make(map[Status]struct{}, len(list))
		for _, s := range list {
			set[s] = struct{}{}
		}
		out[kind] = set
	}
	return out
}
