// Package statistics aggregates payment records for the admin dashboard.
package statistics

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/checkout/internal/app/service/payment_record"
	"github.com/fatflowers/checkout/internal/models"
	"github.com/fatflowers/checkout/pkg/logctx"
	"github.com/fatflowers/checkout/pkg/types"
)

var ErrInvalidRequest = errors.New("invalid statistics request")

type StatisticType string

const (
	// per day and payment status
	StatisticTypeDailyPaymentCount StatisticType = "daily_payment_count"
	// per day and currency, completed payments only
	StatisticTypeDailyRevenue StatisticType = "daily_revenue"
	StatisticTypeTotalRevenue StatisticType = "total_revenue"
	// terminal payments the order service has not acknowledged yet
	StatisticTypeUnsyncedTerminalCount StatisticType = "unsynced_terminal_count"
)

var knownTypes = []StatisticType{
	StatisticTypeDailyPaymentCount,
	StatisticTypeDailyRevenue,
	StatisticTypeTotalRevenue,
	StatisticTypeUnsyncedTerminalCount,
}

type DataItem struct {
	ID StatisticType `json:"id"`
}

type Request struct {
	Filters   []*types.CommonFilter `json:"filters"`
	DataItems []*DataItem           `json:"data_items"`
}

func (r *Request) validate() error {
	if r == nil || len(r.DataItems) == 0 {
		return fmt.Errorf("%w: no data items", ErrInvalidRequest)
	}
	for _, di := range r.DataItems {
		if di == nil || !lo.Contains(knownTypes, di.ID) {
			return fmt.Errorf("%w: unknown data item", ErrInvalidRequest)
		}
	}
	for _, f := range r.Filters {
		if err := f.Validate(payment_record.FilterableColumns); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	return nil
}

// Build writes the AND of all filters, or a tautology when there are none.
func (r *Request) Build(builder clause.Builder) {
	if len(r.Filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := lo.Map(r.Filters, func(f *types.CommonFilter, _ int) clause.Expression { return f })
	clause.And(exprs...).Build(builder)
}

type DataPoint struct {
	Date   string           `json:"date,omitempty"`
	Label  string           `json:"label,omitempty"`
	Count  int64            `json:"count"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

type Response struct {
	DataItems map[StatisticType][]DataPoint `json:"data_items"`
}

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// dayExpr formats created_at as YYYY-MM-DD for the connected dialect.
func (s *Service) dayExpr() string {
	if s.db.Dialector.Name() == "sqlite" {
		return "strftime('%Y-%m-%d', created_at)"
	}
	return "TO_CHAR(created_at, 'YYYY-MM-DD')"
}

func (s *Service) base(ctx context.Context, req *Request) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Payment{}).
		Where(clause.Where{Exprs: []clause.Expression{req}})
}

func (s *Service) dailyPaymentCount(ctx context.Context, req *Request) ([]DataPoint, error) {
	var out []DataPoint
	day := s.dayExpr()
	err := s.base(ctx, req).
		Select(day + " AS date, payment_status AS label, COUNT(*) AS count").
		Group(day).Group("payment_status").
		Order("date DESC").Order("label").
		Scan(&out).Error
	return out, err
}

func (s *Service) dailyRevenue(ctx context.Context, req *Request) ([]DataPoint, error) {
	var out []DataPoint
	day := s.dayExpr()
	err := s.base(ctx, req).
		Select(day+" AS date, currency AS label, COUNT(*) AS count, SUM(total_amount) AS amount").
		Where("payment_status = ?", types.PaymentStatusCompleted).
		Group(day).Group("currency").
		Order("date DESC").Order("label").
		Scan(&out).Error
	return out, err
}

func (s *Service) totalRevenue(ctx context.Context, req *Request) ([]DataPoint, error) {
	var out []DataPoint
	err := s.base(ctx, req).
		Select("currency AS label, COUNT(*) AS count, SUM(total_amount) AS amount").
		Where("payment_status = ?", types.PaymentStatusCompleted).
		Group("currency").
		Order("label").
		Scan(&out).Error
	return out, err
}

func (s *Service) unsyncedTerminalCount(ctx context.Context, req *Request) ([]DataPoint, error) {
	var out []DataPoint
	err := s.base(ctx, req).
		Select("payment_status AS label, COUNT(*) AS count").
		Where("payment_status IN ?", []types.PaymentStatus{
			types.PaymentStatusCompleted, types.PaymentStatusFailed, types.PaymentStatusRefunded,
		}).
		Where("order_synced_at IS NULL").
		Group("payment_status").
		Order("label").
		Scan(&out).Error
	return out, err
}

func (s *Service) get(ctx context.Context, req *Request, id StatisticType) ([]DataPoint, error) {
	switch id {
	case StatisticTypeDailyPaymentCount:
		return s.dailyPaymentCount(ctx, req)
	case StatisticTypeDailyRevenue:
		return s.dailyRevenue(ctx, req)
	case StatisticTypeTotalRevenue:
		return s.totalRevenue(ctx, req)
	case StatisticTypeUnsyncedTerminalCount:
		return s.unsyncedTerminalCount(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, id)
	}
}

// Get computes every requested data item concurrently. The first query error
// fails the whole request.
func (s *Service) Get(ctx context.Context, req *Request) (*Response, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	type entry = lo.Entry[StatisticType, []DataPoint]

	var wg sync.WaitGroup
	errCh := make(chan error, len(req.DataItems))
	resCh := make(chan entry, len(req.DataItems))
	for _, item := range req.DataItems {
		wg.Add(1)
		go func(id StatisticType) {
			defer wg.Done()
			points, err := s.get(ctx, req, id)
			if err != nil {
				errCh <- fmt.Errorf("%s: %w", id, err)
				return
			}
			resCh <- entry{Key: id, Value: lo.Ternary(points == nil, []DataPoint{}, points)}
		}(item.ID)
	}
	wg.Wait()
	close(errCh)
	close(resCh)

	if err, ok := <-errCh; ok {
		logctx.FromCtx(ctx, s.log).Errorw("payment_statistics_failed", "err", err)
		return nil, err
	}
	out := make(map[StatisticType][]DataPoint, len(req.DataItems))
	for e := range resCh {
		out[e.Key] = e.Value
	}
	return &Response{DataItems: out}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
