package handlers

import (
	"context"

	"github.com/gymdesk/gymdesk/internal/application/membership/dto"
	"github.com/gymdesk/gymdesk/internal/application/membership/usecases"
)

// Use case interfaces for MembershipHandler

type getMembershipWindowUseCase interface {
	Execute(ctx context.Context, memberID uint) (*dto.MembershipWindowDTO, error)
}

// Use case interfaces for ExpirationHandler

type runExpirationCycleUseCase interface {
	Execute(ctx context.Context) (*usecases.CycleReport, error)
	DryRun(ctx context.Context) (*usecases.CycleReport, error)
}

// Dependencies of HealthHandler

type pinger interface {
	PingContext(ctx context.Context) error
}
