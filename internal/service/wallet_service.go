package service

import (
	"fmt"

	"couple-kitchen/internal/domain"
)

// WalletService exposes the shared balance. Debits are never issued directly;
// they only happen inside order placement.
type WalletService struct {
	repo WalletRepository
}

func NewWalletService(repo WalletRepository) *WalletService {
	return &WalletService{repo: repo}
}

func (s *WalletService) Balance() (float64, error) {
	return s.repo.Balance()
}

func (s *WalletService) Recharge(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: recharge amount must be positive", domain.ErrValidation)
	}
	return s.repo.Recharge(amount)
}

var _ WalletServiceInterface = (*WalletService)(nil)
