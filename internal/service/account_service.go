package service

import (
	"context"
	"fmt"
	"time"

	"contaflow/internal/dto"
	"contaflow/internal/models"
	"contaflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AccountService struct {
	accountRepo *repository.AccountRepository
	logger      *zap.Logger
}

func NewAccountService(accountRepo *repository.AccountRepository, logger *zap.Logger) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, userID uuid.UUID, req *dto.CreateAccountRequest) (*dto.AccountResponse, error) {
	now := time.Now()
	acc := &models.Account{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      req.Name,
		IBAN:      req.IBAN,
		Metadata:  req.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return accountToResponse(acc), nil
}

func (s *AccountService) ListAccounts(ctx context.Context, userID uuid.UUID) ([]*dto.AccountResponse, error) {
	accounts, err := s.accountRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = accountToResponse(&accounts[i])
	}
	return responses, nil
}

func (s *AccountService) DeleteAccount(ctx context.Context, userID uuid.UUID, id string) error {
	return s.accountRepo.Delete(ctx, userID, id)
}

func accountToResponse(acc *models.Account) *dto.AccountResponse {
	return &dto.AccountResponse{
		ID:       acc.ID,
		Name:     acc.Name,
		IBAN:     acc.IBAN,
		Metadata: acc.Metadata,
	}
}
