package status

import (
	"errors"
	"testing"
	"time"

	"github.com/YarnBridge/api-trading/internal/models"
)

func TestValidateRejectsUnknownStatus(t *testing.T) {
	err := Validate(KindInquiry, Status("half_done"))
	var invalid *models.InvalidStateError
	if !errors.As(err, &invalid) {
		t.Fatalf("esperava InvalidStateError, veio %v", err)
	}
	if err := Validate(KindInquiry, InquirySent); err != nil {
		t.Fatalf("inquiry_sent deveria ser válido: %v", err)
	}
}

func TestValidateScopesEnumPerKind(t *testing.T) {
	// running pertence ao contrato, não à inquiry
	if err := Validate(KindInquiry, ContractStatusRunning); err == nil {
		t.Fatal("running não pertence à enumeração de inquiry")
	}
	if err := Validate(KindContract, ContractStatusRunning); err != nil {
		t.Fatalf("running deveria valer para contrato: %v", err)
	}
}

func TestAdvanceFollowsTable(t *testing.T) {
	cases := []struct {
		kind Kind
		from Status
		to   Status
		ok   bool
	}{
		{KindInquiry, InquirySent, ProposalSent, true},
		{KindInquiry, InquirySent, ContractRunning, false},
		{KindInquiry, Negotiation, InquiryClosed, true},
		{KindInquiry, Delivered, ProposalSent, false},
		{KindProposal, ProposalSent, ProposalRejected, true},
		{KindProposal, ProposalRejected, ProposalSent, true},
		{KindProposal, Delivered, ProposalSent, false},
		{KindContract, ContractSentRcvd, ContractStatusRunning, true},
		{KindContract, ContractStatusRunning, ContractSentRcvd, false},
		{KindTerm, TermContracted, TermRenewRequested, true},
		{KindMonthlyPlan, PlanPending, PlanReplied, true},
		{KindMonthlyPlan, PlanAgreed, PlanReplied, false},
	}
	for _, c := range cases {
		err := Advance(c.kind, c.from, c.to)
		if c.ok && err != nil {
			t.Errorf("%s: %s -> %s deveria ser legal: %v", c.kind, c.from, c.to, err)
		}
		if !c.ok {
			var illegal *models.IllegalTransitionError
			if !errors.As(err, &illegal) {
				t.Errorf("%s: %s -> %s deveria falhar com IllegalTransitionError, veio %v", c.kind, c.from, c.to, err)
			}
		}
	}
}

func TestAdvanceSameStatusAlwaysAllowed(t *testing.T) {
	if err := Advance(KindInquiry, Delivered, Delivered); err != nil {
		t.Fatalf("transição para o mesmo status deveria passar: %v", err)
	}
}

func TestAgingDays(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := AgingDays(created, created.Add(49*time.Hour)); got != 2 {
		t.Fatalf("esperava 2 dias, veio %d", got)
	}
	if got := AgingDays(created, created.Add(-time.Hour)); got != 0 {
		t.Fatalf("aging nunca é negativo, veio %d", got)
	}
}

func TestInquiryStageRank(t *testing.T) {
	if InquiryStageRank(InquirySent) >= InquiryStageRank(ProposalSent) {
		t.Fatal("inquiry_sent precisa vir antes de proposal_sent no funil")
	}
	if InquiryStageRank(InquiryClosed) != -1 {
		t.Fatal("status terminal não tem posição no funil")
	}
}
