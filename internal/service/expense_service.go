package service

import (
	"context"

	"contaflow/internal/dto"
	"contaflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExpenseService exposes read access to derived expenses and their timeline
// projection. Writes only happen through document processing.
type ExpenseService struct {
	expenseRepo  *repository.ExpenseRepository
	timelineRepo *repository.TimelineRepository
	logger       *zap.Logger
}

func NewExpenseService(expenseRepo *repository.ExpenseRepository, timelineRepo *repository.TimelineRepository, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		expenseRepo:  expenseRepo,
		timelineRepo: timelineRepo,
		logger:       logger,
	}
}

func (s *ExpenseService) ListExpenses(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*dto.ExpenseResponse, error) {
	expenses, err := s.expenseRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ExpenseResponse, len(expenses))
	for i, exp := range expenses {
		responses[i] = expenseToResponse(exp)
	}
	return responses, nil
}

func (s *ExpenseService) ListTimeline(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*dto.TimelineEntryResponse, error) {
	entries, err := s.timelineRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.TimelineEntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = timelineToResponse(entry)
	}
	return responses, nil
}
