package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"outlay/internal/amqp"
	"outlay/internal/cache"
	"outlay/internal/core"
	"outlay/internal/log"
	"outlay/internal/storage"
)

// EventPublisher is the slice of the AMQP client the expense service needs.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, userID, expenseID int64, action string) error
}

// ExpenseService orchestrates expense operations: it validates input, scopes
// every storage call to the calling user, keeps summary caches coherent and
// announces mutations on the event bus. Publishing is best effort; a write
// that reached SQLite never fails because the broker is down.
type ExpenseService struct {
	repo      *storage.Repository
	events    EventPublisher
	totals    *cache.LRUCache[int64]
	distincts *cache.LRUCache[[]string]
	logger    *log.Logger
}

func NewExpenseService(repo *storage.Repository, events EventPublisher, totals *cache.LRUCache[int64], distincts *cache.LRUCache[[]string]) *ExpenseService {
	return &ExpenseService{
		repo:      repo,
		events:    events,
		totals:    totals,
		distincts: distincts,
		logger:    log.New(log.ComponentExpense, slog.LevelInfo),
	}
}

func (s *ExpenseService) Create(ctx context.Context, userID int64, draft core.ExpenseDraft) (*core.Expense, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	expense, err := s.repo.CreateExpense(ctx, userID, draft)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	s.invalidateSummaries(userID)
	s.publishEvent(ctx, userID, expense.ID, amqp.ActionCreated)
	return expense, nil
}

func (s *ExpenseService) Get(ctx context.Context, userID, id int64) (*core.Expense, error) {
	return s.repo.GetExpenseByID(ctx, userID, id)
}

func (s *ExpenseService) Update(ctx context.Context, userID, id int64, draft core.ExpenseDraft) (*core.Expense, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	expense, err := s.repo.UpdateExpense(ctx, userID, id, draft)
	if err != nil {
		return nil, err
	}

	s.invalidateSummaries(userID)
	s.publishEvent(ctx, userID, id, amqp.ActionUpdated)
	return expense, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}

	s.invalidateSummaries(userID)
	s.publishEvent(ctx, userID, id, amqp.ActionDeleted)
	return nil
}

func (s *ExpenseService) List(ctx context.Context, userID int64) ([]core.Expense, error) {
	return s.repo.ListExpenses(ctx, userID)
}

func (s *ExpenseService) ListByCategory(ctx context.Context, userID int64, category string) ([]core.Expense, error) {
	return s.repo.ListExpensesByCategory(ctx, userID, category)
}

func (s *ExpenseService) ListByDateRange(ctx context.Context, userID int64, dateRange core.DateRange) ([]core.Expense, error) {
	if err := dateRange.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ListExpensesByDateRange(ctx, userID, dateRange)
}

func (s *ExpenseService) ListByCostRange(ctx context.Context, userID int64, costRange core.CostRange) ([]core.Expense, error) {
	if err := costRange.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ListExpensesByCostRange(ctx, userID, costRange)
}

func (s *ExpenseService) ListByPaymentMethod(ctx context.Context, userID int64, paymentMethod string) ([]core.Expense, error) {
	return s.repo.ListExpensesByPaymentMethod(ctx, userID, paymentMethod)
}

func (s *ExpenseService) SearchByItem(ctx context.Context, userID int64, substring string) ([]core.Expense, error) {
	return s.repo.SearchExpensesByItem(ctx, userID, substring)
}

// Total returns the sum of every expense the user owns, as Money. An empty
// account sums to exactly zero.
func (s *ExpenseService) Total(ctx context.Context, userID int64) (core.Money, error) {
	key := userKey(userID, "total")
	if cents, ok := s.totals.Get(key); ok {
		return core.Money{Cents: cents}, nil
	}

	cents, err := s.repo.TotalCents(ctx, userID)
	if err != nil {
		return core.Money{}, err
	}

	s.totals.Set(key, cents)
	return core.Money{Cents: cents}, nil
}

func (s *ExpenseService) TotalByDateRange(ctx context.Context, userID int64, dateRange core.DateRange) (core.Money, error) {
	if err := dateRange.Validate(); err != nil {
		return core.Money{}, err
	}

	key := userKey(userID, "total", dateRange.Start.String(), dateRange.End.String())
	if cents, ok := s.totals.Get(key); ok {
		return core.Money{Cents: cents}, nil
	}

	cents, err := s.repo.TotalCentsByDateRange(ctx, userID, dateRange)
	if err != nil {
		return core.Money{}, err
	}

	s.totals.Set(key, cents)
	return core.Money{Cents: cents}, nil
}

func (s *ExpenseService) TotalByCategory(ctx context.Context, userID int64, category string) (core.Money, error) {
	key := userKey(userID, "total", "category", category)
	if cents, ok := s.totals.Get(key); ok {
		return core.Money{Cents: cents}, nil
	}

	cents, err := s.repo.TotalCentsByCategory(ctx, userID, category)
	if err != nil {
		return core.Money{}, err
	}

	s.totals.Set(key, cents)
	return core.Money{Cents: cents}, nil
}

// MonthlyTotal sums one calendar month, first day through last day inclusive.
func (s *ExpenseService) MonthlyTotal(ctx context.Context, userID int64, year, month int) (core.Money, error) {
	monthRange, err := core.MonthRange(year, month)
	if err != nil {
		return core.Money{}, err
	}
	return s.TotalByDateRange(ctx, userID, monthRange)
}

func (s *ExpenseService) YearlyTotal(ctx context.Context, userID int64, year int) (core.Money, error) {
	return s.TotalByDateRange(ctx, userID, core.YearRange(year))
}

func (s *ExpenseService) Categories(ctx context.Context, userID int64) ([]string, error) {
	key := userKey(userID, "categories")
	if values, ok := s.distincts.Get(key); ok {
		return values, nil
	}

	values, err := s.repo.DistinctCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.distincts.Set(key, values)
	return values, nil
}

func (s *ExpenseService) PaymentMethods(ctx context.Context, userID int64) ([]string, error) {
	key := userKey(userID, "payment_methods")
	if values, ok := s.distincts.Get(key); ok {
		return values, nil
	}

	values, err := s.repo.DistinctPaymentMethods(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.distincts.Set(key, values)
	return values, nil
}

// invalidateSummaries drops every cached summary belonging to one user. Other
// users' entries stay warm.
func (s *ExpenseService) invalidateSummaries(userID int64) {
	prefix := userKey(userID) + ":"
	s.totals.DeletePrefix(prefix)
	s.distincts.DeletePrefix(prefix)
}

func (s *ExpenseService) publishEvent(ctx context.Context, userID, expenseID int64, action string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpenseEvent(ctx, userID, expenseID, action); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish expense event",
			"error", err,
			log.FieldUserID, userID,
			log.FieldExpenseID, expenseID,
			log.FieldEventAction, action)
	}
}

func userKey(userID int64, parts ...string) string {
	return cache.Key(append([]string{"user", strconv.FormatInt(userID, 10)}, parts...)...)
}
