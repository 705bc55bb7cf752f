package service

import (
	"context"
	"fmt"

	"amoria/internal/domain"
)

// BlockService manages block records. Blocking removes any match between
// the pair; the symmetric gate everywhere else does the rest.
type BlockService struct {
	blocks  domain.BlockRepository
	matches domain.MatchRepository
	users   domain.UserRepository
}

func NewBlockService(
	blocks domain.BlockRepository,
	matches domain.MatchRepository,
	users domain.UserRepository,
) *BlockService {
	return &BlockService{
		blocks:  blocks,
		matches: matches,
		users:   users,
	}
}

func (s *BlockService) Block(ctx context.Context, blockerID, targetID int64) (*domain.Block, error) {
	if targetID <= 0 || blockerID == targetID {
		return nil, domain.ErrInvalidInput
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("get target: %w", err)
	}
	if target == nil {
		return nil, domain.ErrNotFound
	}

	blocks, err := s.blocks.ListForBlocker(ctx, blockerID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	for _, b := range blocks {
		if b.BlockedID == targetID {
			return nil, domain.ErrConflict
		}
	}

	block := &domain.Block{
		BlockerID: blockerID,
		BlockedID: targetID,
	}
	if err := s.blocks.Create(ctx, block); err != nil {
		return nil, err
	}

	if err := s.matches.DeleteForPair(ctx, blockerID, targetID); err != nil {
		return nil, fmt.Errorf("delete matches: %w", err)
	}
	return block, nil
}

func (s *BlockService) Unblock(ctx context.Context, blockerID, targetID int64) error {
	return s.blocks.Delete(ctx, blockerID, targetID)
}

func (s *BlockService) List(ctx context.Context, blockerID int64) ([]*domain.Block, error) {
	return s.blocks.ListForBlocker(ctx, blockerID)
}
