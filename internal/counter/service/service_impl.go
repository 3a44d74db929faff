package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/ovenlight/orderboard/internal/clock"
	"github.com/ovenlight/orderboard/internal/communityctx"
	counterdomain "github.com/ovenlight/orderboard/internal/counter/domain"
	pkgdb "github.com/ovenlight/orderboard/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  counterdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  counterdomain.Repository
}

func New(p Params) counterdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("counter.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Increment(ctx context.Context, memberID snowflake.ID, delta int, displayName string) (int, error) {
	communityID, err := s.scope(ctx, memberID)
	if err != nil {
		return 0, err
	}

	displayName = strings.TrimSpace(displayName)
	now := s.clock.Now()

	var count int
	attempt := func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.repo.ApplyDelta(ctx, tx, communityID, memberID, delta, displayName, now); err != nil {
				return err
			}
			current, _, err := s.repo.GetCount(ctx, tx, communityID, memberID)
			if err != nil {
				return err
			}
			count = current
			return nil
		})
	}
	err = attempt()
	if pkgdb.IsDuplicateKeyErr(err) {
		// Two first-time upserts for the same member can still collide
		// before the conflict target exists; the row is there by the
		// second attempt.
		err = attempt()
	}
	if err != nil {
		return 0, s.storeErr("increment", communityID, err)
	}
	return count, nil
}

func (s *Service) SetValue(ctx context.Context, memberID snowflake.ID, value int, displayName string) (int, error) {
	communityID, err := s.scope(ctx, memberID)
	if err != nil {
		return 0, err
	}

	// The dispatcher rejects negative input before it gets here; the
	// clamp stays anyway so the count >= 0 invariant does not depend
	// on a single layer.
	if value < 0 {
		value = 0
	}
	displayName = strings.TrimSpace(displayName)
	now := s.clock.Now()

	attempt := func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.repo.SetCount(ctx, tx, communityID, memberID, value, displayName, now)
		})
	}
	err = attempt()
	if pkgdb.IsDuplicateKeyErr(err) {
		err = attempt()
	}
	if err != nil {
		return 0, s.storeErr("set", communityID, err)
	}
	return value, nil
}

func (s *Service) Remove(ctx context.Context, memberID snowflake.ID) (bool, error) {
	communityID, err := s.scope(ctx, memberID)
	if err != nil {
		return false, err
	}

	var affected int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.repo.Delete(ctx, tx, communityID, memberID)
		if err != nil {
			return err
		}
		affected = n
		return nil
	})
	if err != nil {
		return false, s.storeErr("remove", communityID, err)
	}
	return affected > 0, nil
}

func (s *Service) ResetAll(ctx context.Context) (int64, error) {
	communityID, ok := communityctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return 0, counterdomain.ErrInvalidCommunity
	}

	now := s.clock.Now()

	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.repo.ZeroAll(ctx, tx, communityID, now)
		if err != nil {
			return err
		}
		affected = n
		return nil
	})
	if err != nil {
		return 0, s.storeErr("resetall", communityID, err)
	}
	return affected, nil
}

func (s *Service) TopN(ctx context.Context, n int) ([]counterdomain.Record, error) {
	communityID, ok := communityctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return nil, counterdomain.ErrInvalidCommunity
	}
	if n <= 0 {
		return []counterdomain.Record{}, nil
	}

	records, err := s.repo.TopN(ctx, s.db, communityID, n)
	if err != nil {
		return nil, s.storeErr("topn", communityID, err)
	}
	if records == nil {
		records = []counterdomain.Record{}
	}
	return records, nil
}

func (s *Service) scope(ctx context.Context, memberID snowflake.ID) (snowflake.ID, error) {
	communityID, ok := communityctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return 0, counterdomain.ErrInvalidCommunity
	}
	if memberID == 0 {
		return 0, counterdomain.ErrInvalidMember
	}
	return communityID, nil
}

func (s *Service) storeErr(op string, communityID snowflake.ID, err error) error {
	s.log.Error("counter store operation failed",
		zap.String("op", op),
		zap.Int64("community_id", int64(communityID)),
		zap.Error(err),
	)
	return fmt.Errorf("counter %s: %w: %w", op, counterdomain.ErrStore, err)
}
