package test

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	mu       sync.Mutex
	ByPhone  map[string]*model.User
	ByID     map[int64]*model.User
	Next     int64
	Err      error
	CreateFn func(context.Context, string) (*model.User, error)
	Creates  int
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		ByPhone: make(map[string]*model.User),
		ByID:    make(map[int64]*model.User),
		Next:    1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, phone string) (*model.User, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, phone)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.ByPhone[phone]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	s.Creates++
	user := &model.User{ID: s.Next, Phone: phone, CreatedAt: time.Now()}
	s.Next++
	s.ByPhone[phone] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByPhone fetches user by phone or returns not found.
func (s *UserRepositoryStub) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByPhone[phone]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// OrderRepositoryStub keeps orders in memory.
type OrderRepositoryStub struct {
	mu       sync.Mutex
	Orders   []model.Order
	Next     int64
	CreateFn func(context.Context, *model.Order) (*model.Order, error)
	FindErr  error
}

// Create stores order assigning identifiers.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Next++
	stored := *order
	stored.ID = s.Next
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	stored.UpdatedAt = stored.CreatedAt
	for i := range stored.Items {
		stored.Items[i].OrderID = stored.ID
		stored.Items[i].ID = int64(i + 1)
	}
	s.Orders = append(s.Orders, stored)
	out := stored
	return &out, nil
}

// GetByCode returns matched order or not found.
func (s *OrderRepositoryStub) GetByCode(ctx context.Context, code string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	for _, o := range s.Orders {
		if o.Code == code {
			order := o
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// ListByUser returns orders of user newest first.
func (s *OrderRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for i := len(s.Orders) - 1; i >= 0; i-- {
		o := s.Orders[i]
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

// FindRecentByPhoneAndType returns the latest matching order created at or after since.
func (s *OrderRepositoryStub) FindRecentByPhoneAndType(ctx context.Context, phone string, orderType model.OrderType, since time.Time) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	for i := len(s.Orders) - 1; i >= 0; i-- {
		o := s.Orders[i]
		if o.Customer.Phone == phone && o.Type == orderType && !o.CreatedAt.Before(since) {
			order := o
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// SetPaymentStatus updates a stored order.
func (s *OrderRepositoryStub) SetPaymentStatus(orderID int64, status model.PaymentStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Orders {
		if s.Orders[i].ID == orderID {
			s.Orders[i].PaymentStatus = status
		}
	}
}

// Count returns the number of stored orders.
func (s *OrderRepositoryStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Orders)
}

// CatalogRepositoryStub serves a fixed catalog.
type CatalogRepositoryStub struct {
	Vehicles    []model.Vehicle
	Accessories []model.Accessory
	Promotions  []model.Promotion
	Err         error
}

// FindVehicle resolves by internal or external id.
func (s *CatalogRepositoryStub) FindVehicle(ctx context.Context, ref model.CatalogRef) (*model.Vehicle, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, byID := range []bool{true, false} {
		for _, v := range s.Vehicles {
			if matchesRef(ref, byID, v.ID, v.ExternalID) {
				vehicle := v
				return &vehicle, nil
			}
		}
	}
	return nil, domainErrors.ErrNotFound
}

// FindAccessory resolves by internal or external id.
func (s *CatalogRepositoryStub) FindAccessory(ctx context.Context, ref model.CatalogRef) (*model.Accessory, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, byID := range []bool{true, false} {
		for _, a := range s.Accessories {
			if matchesRef(ref, byID, a.ID, a.ExternalID) {
				accessory := a
				return &accessory, nil
			}
		}
	}
	return nil, domainErrors.ErrNotFound
}

// FindActivePromotions returns every promotion linked to the vehicle,
// leaving activity filtering to the caller.
func (s *CatalogRepositoryStub) FindActivePromotions(ctx context.Context, vehicleID int64, now time.Time) ([]model.Promotion, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Promotion
	for _, p := range s.Promotions {
		if p.VehicleID == vehicleID {
			out = append(out, p)
		}
	}
	return out, nil
}

// matchesRef checks one pass of a lookup: row ids first, then external ids,
// so a numeric ref prefers the row it names.
func matchesRef(ref model.CatalogRef, byID bool, id int64, externalID string) bool {
	if byID {
		return ref.Kind == model.RefInternal && ref.InternalID == id
	}
	return ref.ExternalID != "" && ref.ExternalID == externalID
}

// InventoryRepositoryStub records outbox interactions.
type InventoryRepositoryStub struct {
	mu         sync.Mutex
	Enqueued   []model.InventoryAdjustment
	EnqueueErr error
	Pending    [][]model.InventoryAdjustment
	ClaimFn    func(context.Context, int) ([]model.InventoryAdjustment, error)
	ApplyFn    func(context.Context, model.InventoryAdjustment) error
	Applied    []model.InventoryAdjustment
	Failed     []FailedAdjustment
	claims     int
}

// FailedAdjustment records a MarkFailed call.
type FailedAdjustment struct {
	ID    int64
	Final bool
	Cause string
}

// Enqueue stores adjustments or returns EnqueueErr.
func (s *InventoryRepositoryStub) Enqueue(ctx context.Context, adjustments []model.InventoryAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.EnqueueErr != nil {
		return s.EnqueueErr
	}
	s.Enqueued = append(s.Enqueued, adjustments...)
	return nil
}

// ClaimPending returns the next configured batch.
func (s *InventoryRepositoryStub) ClaimPending(ctx context.Context, limit int) ([]model.InventoryAdjustment, error) {
	if s.ClaimFn != nil {
		return s.ClaimFn(ctx, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claims >= len(s.Pending) {
		return nil, nil
	}
	batch := s.Pending[s.claims]
	s.claims++
	return batch, nil
}

// Apply records the adjustment unless ApplyFn fails.
func (s *InventoryRepositoryStub) Apply(ctx context.Context, adjustment model.InventoryAdjustment) error {
	if s.ApplyFn != nil {
		if err := s.ApplyFn(ctx, adjustment); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Applied = append(s.Applied, adjustment)
	return nil
}

// MarkFailed records failures.
func (s *InventoryRepositoryStub) MarkFailed(ctx context.Context, id int64, final bool, cause string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failed = append(s.Failed, FailedAdjustment{ID: id, Final: final, Cause: cause})
	return nil
}

// Snapshot returns copies of applied and failed records.
func (s *InventoryRepositoryStub) Snapshot() ([]model.InventoryAdjustment, []FailedAdjustment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.InventoryAdjustment(nil), s.Applied...), append([]FailedAdjustment(nil), s.Failed...)
}

// PaymentRepositoryStub keeps payments and transactions in memory. When Orders
// is set, ApplyResult also updates the stored order.
type PaymentRepositoryStub struct {
	mu           sync.Mutex
	Orders       *OrderRepositoryStub
	Payments     []model.Payment
	Transactions []model.PaymentTransaction
	Statuses     map[int64]model.PaymentStatus
	CreateErr    error
	ApplyErr     error
}

// CreatePayment stores payment assigning an id.
func (s *PaymentRepositoryStub) CreatePayment(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	stored := *payment
	stored.ID = int64(len(s.Payments) + 1)
	stored.CreatedAt = time.Now()
	s.Payments = append(s.Payments, stored)
	return &stored, nil
}

// UpdatePayURL sets the redirect URL of a stored payment.
func (s *PaymentRepositoryStub) UpdatePayURL(ctx context.Context, paymentID int64, payURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Payments {
		if s.Payments[i].ID == paymentID {
			s.Payments[i].PayURL = payURL
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// LatestPending returns the newest pending payment of order through gateway.
func (s *PaymentRepositoryStub) LatestPending(ctx context.Context, orderID int64, gateway model.Gateway) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.Payments) - 1; i >= 0; i-- {
		p := s.Payments[i]
		if p.OrderID == orderID && p.Gateway == gateway && p.Status == model.TransactionPending {
			return &p, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// ApplyResult mirrors the row-locked transition of the real repository.
func (s *PaymentRepositoryStub) ApplyResult(ctx context.Context, orderID int64, status model.PaymentStatus, tx model.PaymentTransaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ApplyErr != nil {
		return false, s.ApplyErr
	}
	if s.Statuses == nil {
		s.Statuses = make(map[int64]model.PaymentStatus)
	}
	if s.Statuses[orderID].Terminal() {
		return false, nil
	}
	for _, existing := range s.Transactions {
		if existing.Gateway == tx.Gateway && existing.TransactionID == tx.TransactionID {
			return false, nil
		}
	}
	tx.ID = int64(len(s.Transactions) + 1)
	tx.OrderID = orderID
	tx.CreatedAt = time.Now()
	s.Transactions = append(s.Transactions, tx)
	s.Statuses[orderID] = status
	if tx.PaymentID != nil {
		for i := range s.Payments {
			if s.Payments[i].ID == *tx.PaymentID {
				s.Payments[i].Status = tx.Status
			}
		}
	}
	if s.Orders != nil {
		s.Orders.SetPaymentStatus(orderID, status)
	}
	return true, nil
}

// ListTransactions returns transactions of order.
func (s *PaymentRepositoryStub) ListTransactions(ctx context.Context, orderID int64) ([]model.PaymentTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.PaymentTransaction
	for _, tx := range s.Transactions {
		if tx.OrderID == orderID {
			out = append(out, tx)
		}
	}
	return out, nil
}
