package services

import (
	"context"

	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/utils"
)

// BlacklistCleanupService sweeps expired revocation entries each night.
// The blacklist already prunes lazily on lookup; the scheduled sweep
// bounds the memory held by entries that are never looked up again.
type BlacklistCleanupService interface {
	CleanupDaily(ctx context.Context) error
}

type blacklistCleanupService struct {
	blacklist TokenBlacklist
}

func NewBlacklistCleanupService(blacklist TokenBlacklist) BlacklistCleanupService {
	return &blacklistCleanupService{blacklist: blacklist}
}

func (s *blacklistCleanupService) CleanupDaily(ctx context.Context) error {
	if err := s.blacklist.Sweep(ctx); err != nil {
		utils.Logger.WithError(err).Error("Failed to sweep token blacklist")
		return err
	}

	size, err := s.blacklist.Size(ctx)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to read blacklist size after sweep")
		return err
	}

	utils.Logger.Infof("Daily blacklist sweep completed; %d live entries remain", size)
	return nil
}
