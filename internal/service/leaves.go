package service

import (
	"context"

	"github.com/geocoder89/hrhub/internal/access"
	"github.com/geocoder89/hrhub/internal/actorctx"
	"github.com/geocoder89/hrhub/internal/apperr"
	"github.com/geocoder89/hrhub/internal/domain/leave"
	"github.com/geocoder89/hrhub/internal/observability"
)

var errInvalidDecision = apperr.Validation("status must be approved or rejected")

type LeaveService struct {
	leaves LeaveStore
	stats  *StatsCache
	prom   *observability.Prom
	strict bool
}

// NewLeaveService builds the workflow. With strict set, a decided request can no
// longer change status.
func NewLeaveService(leaves LeaveStore, stats *StatsCache, prom *observability.Prom, strict bool) *LeaveService {
	return &LeaveService{leaves: leaves, stats: stats, prom: prom, strict: strict}
}

func (s *LeaveService) Create(ctx context.Context, actor actorctx.Actor, in leave.Input) (leave.Leave, error) {
	if actor.ID == "" {
		return leave.Leave{}, access.ErrForbidden
	}

	l, err := leave.New(actor.ID, in)
	if err != nil {
		return leave.Leave{}, err
	}

	created, err := s.leaves.Create(ctx, l)
	if err != nil {
		return leave.Leave{}, err
	}

	s.stats.Invalidate(ctx)
	return created, nil
}

func (s *LeaveService) SetStatus(ctx context.Context, actor actorctx.Actor, id string, status leave.Status) (leave.Leave, error) {
	if err := access.RequireStaff(actor); err != nil {
		return leave.Leave{}, err
	}
	if status != leave.StatusApproved && status != leave.StatusRejected {
		return leave.Leave{}, errInvalidDecision
	}

	updated, err := s.leaves.UpdateStatus(ctx, id, status, s.strict)
	if err != nil {
		return leave.Leave{}, err
	}

	s.prom.IncLeaveTransition(string(status))
	s.stats.Invalidate(ctx)
	return updated, nil
}

// Cancel withdraws the caller's own pending request. A foreign, decided or
// missing request all look the same to the caller.
func (s *LeaveService) Cancel(ctx context.Context, actor actorctx.Actor, id string) error {
	if actor.ID == "" {
		return access.ErrForbidden
	}

	if err := s.leaves.DeletePendingOwned(ctx, id, actor.ID); err != nil {
		return err
	}

	s.prom.IncLeaveTransition("cancelled")
	s.stats.Invalidate(ctx)
	return nil
}

func (s *LeaveService) ListMine(ctx context.Context, actor actorctx.Actor) ([]leave.Leave, error) {
	if actor.ID == "" {
		return nil, access.ErrForbidden
	}
	return s.leaves.ListByOwner(ctx, actor.ID)
}

func (s *LeaveService) ListAll(ctx context.Context, actor actorctx.Actor) ([]leave.WithEmployee, error) {
	if err := access.RequireStaff(actor); err != nil {
		return nil, err
	}
	return s.leaves.ListWithEmployee(ctx, nil)
}

func (s *LeaveService) ListPending(ctx context.Context, actor actorctx.Actor) ([]leave.WithEmployee, error) {
	if err := access.RequireStaff(actor); err != nil {
		return nil, err
	}
	pending := leave.StatusPending
	return s.leaves.ListWithEmployee(ctx, &pending)
}

func (s *LeaveService) ListByEmployee(ctx context.Context, actor actorctx.Actor, employeeID string) ([]leave.WithEmployee, error) {
	if err := access.RequireStaff(actor); err != nil {
		return nil, err
	}
	return s.leaves.ListByEmployee(ctx, employeeID)
}

// RemainingLeaves is recomputed from the approved count on every call.
func (s *LeaveService) RemainingLeaves(ctx context.Context, ownerID string) (int, error) {
	approved := leave.StatusApproved
	n, err := s.leaves.CountByOwner(ctx, ownerID, &approved)
	if err != nil {
		return 0, err
	}
	return leave.Remaining(n), nil
}

func (s *LeaveService) Stats(ctx context.Context, actor actorctx.Actor) (leave.Stats, error) {
	if actor.ID == "" {
		return leave.Stats{}, access.ErrForbidden
	}

	total, err := s.leaves.CountByOwner(ctx, actor.ID, nil)
	if err != nil {
		return leave.Stats{}, err
	}
	pending := leave.StatusPending
	nPending, err := s.leaves.CountByOwner(ctx, actor.ID, &pending)
	if err != nil {
		return leave.Stats{}, err
	}
	approved := leave.StatusApproved
	nApproved, err := s.leaves.CountByOwner(ctx, actor.ID, &approved)
	if err != nil {
		return leave.Stats{}, err
	}

	return leave.Stats{
		TotalLeaves:     total,
		PendingLeaves:   nPending,
		ApprovedLeaves:  nApproved,
		RemainingLeaves: leave.Remaining(nApproved),
	}, nil
}
