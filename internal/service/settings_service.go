package service

import (
	"context"

	"contaflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SettingsService stores small per-user key/value preferences, such as the
// preferred extraction model or a default account id.
type SettingsService struct {
	settingsRepo *repository.SettingsRepository
	logger       *zap.Logger
}

func NewSettingsService(settingsRepo *repository.SettingsRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

func (s *SettingsService) Get(ctx context.Context, userID uuid.UUID, key string) (string, error) {
	return s.settingsRepo.Get(ctx, userID, key)
}

func (s *SettingsService) Set(ctx context.Context, userID uuid.UUID, key, value string) error {
	return s.settingsRepo.Set(ctx, userID, key, value)
}

func (s *SettingsService) Remove(ctx context.Context, userID uuid.UUID, key string) error {
	return s.settingsRepo.Remove(ctx, userID, key)
}
