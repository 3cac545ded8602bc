package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/gymdesk/gymdesk/internal/domain/membership"
	vo "github.com/gymdesk/gymdesk/internal/domain/membership/valueobjects"
	"github.com/gymdesk/gymdesk/internal/infrastructure/persistence/mappers"
	"github.com/gymdesk/gymdesk/internal/infrastructure/persistence/models"
	"github.com/gymdesk/gymdesk/internal/shared/biztime"
	"github.com/gymdesk/gymdesk/internal/shared/db"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Create(ctx context.Context, m *membership.Member) error {
	model := mappers.MemberToModel(m)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}

	m.SetID(model.ID)
	return nil
}

func (r *MemberRepository) GetByID(ctx context.Context, id uint) (*membership.Member, error) {
	var model models.MemberModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, membership.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return mappers.MemberToDomain(&model)
}

// GetByEmail matches case-insensitively.
func (r *MemberRepository) GetByEmail(ctx context.Context, email string) (*membership.Member, error) {
	var model models.MemberModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, membership.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member by email: %w", err)
	}

	return mappers.MemberToDomain(&model)
}

func (r *MemberRepository) List(ctx context.Context, filter membership.MemberFilter) ([]*membership.Member, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.MemberModel{})

	if filter.AccountStatus != "" {
		query = query.Where("account_status = ?", filter.AccountStatus.String())
	}
	if filter.BillingStatus != "" {
		query = query.Where("payment_status = ?", filter.BillingStatus.String())
	}

	var rows []models.MemberModel
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	return mappers.MembersToDomain(rows)
}

// UpdateAccountStatus writes only the account status column.
func (r *MemberRepository) UpdateAccountStatus(ctx context.Context, id uint, status vo.AccountStatus) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.MemberModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"account_status": status.String(),
			"updated_at":     biztime.NowUTC(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update member account status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return membership.ErrMemberNotFound
	}

	return nil
}

func (r *MemberRepository) Update(ctx context.Context, m *membership.Member) error {
	model := mappers.MemberToModel(m)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.MemberModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":           model.Name,
			"account_status": model.AccountStatus,
			"payment_status": model.BillingStatus,
			"plan_type":      model.PlanType,
			"end_date":       model.EndDate,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update member: %w", result.Error)
	}

	// RowsAffected may be 0 when the stored values are identical.
	return nil
}
