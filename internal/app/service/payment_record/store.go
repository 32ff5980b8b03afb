package payment_record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/checkout/internal/models"
	"github.com/fatflowers/checkout/pkg/logctx"
	"github.com/fatflowers/checkout/pkg/types"
)

var (
	ErrNotFound = errors.New("payment record not found")
	ErrConflict = errors.New("payment attempt already exists")
	// ErrInvalidFilter marks a Scan filter on a column that cannot be queried.
	ErrInvalidFilter = errors.New("invalid payment filter")
)

// GatewayFields are the callback attributes stored with a status change.
type GatewayFields struct {
	TransactionID string
	StatusCode    string
	StatusMessage string
}

// Store persists payment records. UpdateStatus and MarkOrderSynced are the
// only mutation paths after Create and both are conditional writes.
type Store struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewStore(db *gorm.DB, log *zap.SugaredLogger) *Store {
	return &Store{db: db, log: log}
}

// Create inserts a new record. ErrConflict is returned when the attempt id is taken.
func (s *Store) Create(ctx context.Context, p *models.Payment) error {
	if p == nil {
		return fmt.Errorf("nil payment")
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrConflict, p.AttemptID)
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (s *Store) first(ctx context.Context, query string, args ...any) (*models.Payment, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).Where(query, args...).Order("created_at desc").Order("attempt_id desc").First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &p, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.first(ctx, "id = ?", id)
}

func (s *Store) FindByAttemptID(ctx context.Context, attemptID string) (*models.Payment, error) {
	return s.first(ctx, "attempt_id = ?", attemptID)
}

// FindByOrderID returns the most recent attempt for an order.
func (s *Store) FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	return s.first(ctx, "order_id = ?", orderID)
}

// UpdateStatus applies a notification to a PENDING record. The write is a
// compare-and-set on (attempt_id, PENDING); applied is false when another
// update already moved the record out of PENDING, in which case the
// returned record is the committed state.
func (s *Store) UpdateStatus(ctx context.Context, attemptID string, status types.PaymentStatus, gw GatewayFields) (*models.Payment, bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("attempt_id = ? AND payment_status = ?", attemptID, types.PaymentStatusPending).
		Updates(map[string]any{
			"payment_status":         status,
			"gateway_transaction_id": gw.TransactionID,
			"gateway_status_code":    gw.StatusCode,
			"gateway_status_message": gw.StatusMessage,
			"updated_at":             time.Now(),
		})
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to update payment status: %w", res.Error)
	}

	p, err := s.FindByAttemptID(ctx, attemptID)
	if err != nil {
		return nil, false, err
	}
	applied := res.RowsAffected == 1
	if !applied {
		logctx.FromCtx(ctx, s.log).Infow("payment_status_unchanged",
			"attempt_id", attemptID, "requested", status, "current", p.PaymentStatus)
	}
	return p, applied, nil
}

// ClaimOrderSync takes the right to call the order service for an unsynced
// record. A claim older than lease is considered abandoned and can be taken
// over. Only one concurrent caller gets true.
func (s *Store) ClaimOrderSync(ctx context.Context, attemptID string, lease time.Duration) (bool, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("attempt_id = ? AND order_synced_at IS NULL", attemptID).
		Where("order_sync_claimed_at IS NULL OR order_sync_claimed_at < ?", now.Add(-lease)).
		Updates(map[string]any{"order_sync_claimed_at": now, "updated_at": now})
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim order sync: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ReleaseOrderSyncClaim drops an unfinished claim so a redelivery can retry.
func (s *Store) ReleaseOrderSyncClaim(ctx context.Context, attemptID string) error {
	err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("attempt_id = ? AND order_synced_at IS NULL", attemptID).
		Update("order_sync_claimed_at", gorm.Expr("NULL")).Error
	if err != nil {
		return fmt.Errorf("failed to release order sync claim: %w", err)
	}
	return nil
}

// MarkOrderSynced records that the order service accepted the terminal status.
// Only the first caller gets true.
func (s *Store) MarkOrderSynced(ctx context.Context, attemptID string) (bool, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("attempt_id = ? AND order_synced_at IS NULL", attemptID).
		Updates(map[string]any{"order_synced_at": now, "order_sync_claimed_at": gorm.Expr("NULL"), "updated_at": now})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark order synced: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

type ScanRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanResponse struct {
	Items []*models.Payment `json:"items"`
	Total int64             `json:"total"`
}

// FilterableColumns are the payment columns admin filters may reference.
var FilterableColumns = map[string]struct{}{
	"order_id":       {},
	"attempt_id":     {},
	"user_id":        {},
	"restaurant_id":  {},
	"payment_status": {},
	"currency":       {},
	"total_amount":   {},
	"created_at":     {},
	"updated_at":     {},
}

var sortableColumns = map[string]struct{}{
	"created_at":     {},
	"updated_at":     {},
	"total_amount":   {},
	"payment_status": {},
	"order_id":       {},
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// Scan lists payments for admin pages.
func (s *Store) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 || req.Size > 500 {
		req.Size = 20
	}
	if req.From < 0 {
		req.From = 0
	}
	for _, f := range req.Filters {
		if err := f.Validate(FilterableColumns); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
	}

	tx := s.db.WithContext(ctx).Model(&models.Payment{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	sortBy := req.SortBy
	if _, ok := sortableColumns[sortBy]; !ok {
		sortBy = "created_at"
	}

	var rows []*models.Payment
	q := tx.Limit(req.Size).Offset(req.From).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: sortBy}, Desc: req.SortOrder != "asc"}}})
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return &ScanResponse{Items: rows, Total: total}, nil
}
