package general

import (
	"time"

	"github.com/YarnBridge/api-trading/internal/contract"
	"github.com/YarnBridge/api-trading/internal/status"
	"gorm.io/gorm"
)

// Book adapta as proposals da cadeia general para o coordenador de
// contratos.
type Book struct {
	Proposals ProposalRepository
}

func NewBook() *Book {
	return &Book{Proposals: NewProposalRepository()}
}

func (b *Book) Get(db *gorm.DB, id uint) (contract.ProposalInfo, error) {
	p, err := b.Proposals.FindByID(db, id)
	if err != nil {
		return contract.ProposalInfo{}, err
	}
	return contract.ProposalInfo{ID: p.ID, InquiryID: p.InquiryID, Status: p.Status}, nil
}

// SetStatus aplica a escrita da cascata de contrato na proposal.
func (b *Book) SetStatus(db *gorm.DB, id uint, s status.Status) error {
	p, err := b.Proposals.FindByID(db, id)
	if err != nil {
		return err
	}
	p.setStatus(s, time.Now())
	return b.Proposals.SaveVersioned(db, p)
}
