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
	"github.com/gymdesk/gymdesk/internal/shared/db"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *membership.Payment) error {
	model := mappers.PaymentToModel(p)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	p.SetID(model.ID)
	return nil
}

func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*membership.Payment, error) {
	var model models.PaymentModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("order_id = ?", orderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, membership.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by order_id: %w", err)
	}

	return mappers.PaymentToDomain(&model)
}

// List applies filter in SQL. Status filters match every raw gateway
// spelling of the requested canonical statuses, in any casing.
func (r *PaymentRepository) List(ctx context.Context, filter membership.PaymentFilter) ([]*membership.Payment, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.PaymentModel{})

	if len(filter.Statuses) > 0 {
		var raw []string
		for _, s := range filter.Statuses {
			raw = append(raw, vo.RawStatusesFor(s)...)
		}
		if len(raw) == 0 {
			return []*membership.Payment{}, nil
		}
		query = query.Where("LOWER(payment_status) IN ?", raw)
	}
	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if email := strings.TrimSpace(filter.Email); email != "" {
		query = query.Where("LOWER(customer_email) = ?", strings.ToLower(email))
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}

	var rows []models.PaymentModel
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return mappers.PaymentsToDomain(rows)
}

func (r *PaymentRepository) Update(ctx context.Context, p *membership.Payment) error {
	model := mappers.PaymentToModel(p)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"member_id":      model.MemberID,
			"payment_status": model.PaymentStatus,
			"completed_at":   model.CompletedAt,
			"plan_type":      model.PlanType,
			"plan_amount":    model.PlanAmount,
			"plan_duration":  model.PlanDuration,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}

	return nil
}
