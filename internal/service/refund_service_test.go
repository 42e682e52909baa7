package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Wollie333/vilo-sub013/internal/dto"
	"github.com/Wollie333/vilo-sub013/internal/entity"
	"github.com/Wollie333/vilo-sub013/internal/pkg/apperrors"
	"github.com/Wollie333/vilo-sub013/internal/repository/contract"
	"github.com/Wollie333/vilo-sub013/internal/repository/specification"
	"github.com/Wollie333/vilo-sub013/internal/repository/unitofwork"
	"github.com/Wollie333/vilo-sub013/pkg/gateway"
	"github.com/Wollie333/vilo-sub013/pkg/policy"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- in-memory fakes over the repository contracts ---

type fakeStore struct {
	mu       sync.Mutex
	refunds  map[uuid.UUID]*entity.Refund
	history  []*entity.RefundStatusHistory
	bookings map[uuid.UUID]*entity.Booking
	configs  map[uuid.UUID]*entity.TenantConfig

	// casDeny forces UpdateTransition to report a lost race.
	casDeny bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		refunds:  make(map[uuid.UUID]*entity.Refund),
		bookings: make(map[uuid.UUID]*entity.Booking),
		configs:  make(map[uuid.UUID]*entity.TenantConfig),
	}
}

func matchRefund(r *entity.Refund, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if r.ID != sp.ID {
				return false
			}
		case specification.TenantOwnedBy:
			if r.TenantID != sp.TenantID {
				return false
			}
		case specification.ByBooking:
			if r.BookingID != sp.BookingID {
				return false
			}
		case specification.StatusIs:
			if r.Status != sp.Status {
				return false
			}
		case specification.StatusIn:
			found := false
			for _, st := range sp.Statuses {
				if r.Status == st {
					found = true
				}
			}
			if !found {
				return false
			}
		case specification.RequestedBefore:
			if !r.RequestedAt.Before(sp.Cutoff) {
				return false
			}
		case specification.RequestedBetween:
			if r.RequestedAt.Before(sp.From) || r.RequestedAt.After(sp.To) {
				return false
			}
		}
	}
	return true
}

type fakeRefundRepo struct{ s *fakeStore }

func (f fakeRefundRepo) Create(_ context.Context, refund *entity.Refund) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.refunds {
		if existing.TenantID == refund.TenantID && existing.BookingID == refund.BookingID {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *refund
	f.s.refunds[refund.ID] = &cp
	return nil
}

func (f fakeRefundRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Refund, error) {
	all, err := f.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (f fakeRefundRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Refund, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*entity.Refund
	for _, r := range f.s.refunds {
		if matchRefund(r, specs) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f fakeRefundRepo) UpdateTransition(_ context.Context, refund *entity.Refund, expectedFrom []entity.RefundStatus) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.casDeny {
		return false, nil
	}
	current, ok := f.s.refunds[refund.ID]
	if !ok || current.TenantID != refund.TenantID {
		return false, nil
	}
	allowed := false
	for _, st := range expectedFrom {
		if current.Status == st {
			allowed = true
		}
	}
	if !allowed {
		return false, nil
	}
	cp := *refund
	f.s.refunds[refund.ID] = &cp
	return true, nil
}

type fakeHistoryRepo struct{ s *fakeStore }

func (f fakeHistoryRepo) Append(_ context.Context, entry *entity.RefundStatusHistory) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cp := *entry
	cp.CreatedAt = time.Now()
	f.s.history = append(f.s.history, &cp)
	return nil
}

func (f fakeHistoryRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.RefundStatusHistory, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*entity.RefundStatusHistory
	for _, h := range f.s.history {
		keep := true
		for _, s := range specs {
			switch sp := s.(type) {
			case specification.ForRefund:
				if h.RefundID != sp.RefundID {
					keep = false
				}
			case specification.TenantOwnedBy:
				if h.TenantID != sp.TenantID {
					keep = false
				}
			}
		}
		if keep {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeBookingRepo struct{ s *fakeStore }

func (f fakeBookingRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Booking, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, b := range f.s.bookings {
		keep := true
		for _, s := range specs {
			switch sp := s.(type) {
			case specification.ByID:
				if b.ID != sp.ID {
					keep = false
				}
			case specification.TenantOwnedBy:
				if b.TenantID != sp.TenantID {
					keep = false
				}
			}
		}
		if keep {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (f fakeBookingRepo) UpdateRefundStatus(_ context.Context, booking *entity.Booking, status entity.RefundStatus) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if b, ok := f.s.bookings[booking.ID]; ok {
		st := status
		b.RefundStatus = &st
	}
	return nil
}

func (f fakeBookingRepo) UpdatePaymentStatus(_ context.Context, booking *entity.Booking, status entity.BookingPaymentStatus) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if b, ok := f.s.bookings[booking.ID]; ok {
		b.PaymentStatus = status
	}
	return nil
}

type fakeConfigRepo struct{ s *fakeStore }

func (f fakeConfigRepo) FindByTenant(_ context.Context, tenantId uuid.UUID) (*entity.TenantConfig, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if cfg, ok := f.s.configs[tenantId]; ok {
		cp := *cfg
		return &cp, nil
	}
	return nil, nil
}

type fakeUow struct{ s *fakeStore }

func (f fakeUow) Begin(context.Context) error { return nil }
func (f fakeUow) Commit() error               { return nil }
func (f fakeUow) Rollback() error             { return nil }

func (f fakeUow) RefundRepository() contract.RefundRepository {
	return fakeRefundRepo{f.s}
}
func (f fakeUow) RefundHistoryRepository() contract.RefundHistoryRepository {
	return fakeHistoryRepo{f.s}
}
func (f fakeUow) BookingRepository() contract.BookingRepository {
	return fakeBookingRepo{f.s}
}
func (f fakeUow) TenantConfigRepository() contract.TenantConfigRepository {
	return fakeConfigRepo{f.s}
}

type fakeFactory struct{ s *fakeStore }

func (f fakeFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return fakeUow{f.s}
}

type fakeGatewayClient struct {
	mu       sync.Mutex
	resp     *gateway.RefundResponse
	err      error
	requests []*gateway.RefundRequest
	keys     []string
}

func (g *fakeGatewayClient) Refund(_ context.Context, secretKey string, req *gateway.RefundRequest) (*gateway.RefundResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	g.keys = append(g.keys, secretKey)
	if g.err != nil {
		return nil, g.err
	}
	return g.resp, nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	requested int
	changes   []string
}

func (p *recordingPublisher) PublishRefundRequested(context.Context, *entity.Refund) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requested++
}

func (p *recordingPublisher) PublishRefundStatusChanged(_ context.Context, _ *entity.Refund, previous entity.RefundStatus, _ string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, string(previous))
}

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

// --- fixtures ---

var (
	testTenantId = uuid.New()
	testActor    = dto.Actor{Id: uuid.New(), Name: "Dana Staff"}
)

func standardTiers() []policy.CancellationPolicyTier {
	return []policy.CancellationPolicyTier{
		{DaysBefore: 7, RefundPercentage: 100, Label: "Full refund"},
		{DaysBefore: 3, RefundPercentage: 50, Label: "Half refund"},
		{DaysBefore: 0, RefundPercentage: 0, Label: "No refund"},
	}
}

func seedConfig(store *fakeStore) {
	store.configs[testTenantId] = &entity.TenantConfig{
		TenantID:             testTenantId,
		CancellationPolicy:   standardTiers(),
		GatewayTestSecretKey: "sk_test_fixture",
		GatewayLiveSecretKey: "sk_live_fixture",
		GatewayLiveMode:      false,
	}
}

// seedBooking adds a cancelled card booking falling into the 50% tier
// (cancelled 4 days before check-in, total 1000).
func seedBooking(store *fakeStore) *entity.Booking {
	now := time.Now()
	customerId := uuid.New()
	booking := &entity.Booking{
		ID:               uuid.New(),
		TenantID:         testTenantId,
		CustomerID:       &customerId,
		TotalAmount:      1000,
		Currency:         "EUR",
		CheckIn:          now.Add(96 * time.Hour),
		CheckOut:         now.Add(120 * time.Hour),
		PaymentMethod:    entity.PaymentMethodCard,
		PaymentReference: "txn_original_123",
		PaymentStatus:    entity.BookingPaymentStatusPaid,
		CancelledAt:      &now,
	}
	store.bookings[booking.ID] = booking
	return booking
}

func newTestService(store *fakeStore, gw gateway.Client) (IRefundService, *recordingPublisher) {
	pub := &recordingPublisher{}
	svc := NewRefundService(fakeFactory{store}, fakeConfigRepo{store}, gw, pub, noopLogger{})
	return svc, pub
}

// --- creation ---

func TestCreateFromCancellation(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	booking := seedBooking(store)
	svc, pub := newTestService(store, &fakeGatewayClient{})

	refund, err := svc.CreateFromCancellation(context.Background(), testTenantId, booking.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.RefundStatusRequested, refund.Status)
	assert.Equal(t, 1000.0, refund.OriginalAmount)
	assert.Equal(t, 500.0, refund.EligibleAmount)
	assert.Equal(t, 50.0, refund.RefundPercentage)
	assert.Equal(t, 4, refund.DaysBeforeCheckin)
	assert.Equal(t, "Half refund", refund.PolicyApplied.Label)
	assert.Equal(t, "txn_original_123", refund.OriginalPaymentReference)
	assert.Equal(t, 1, pub.requested)

	history, err := svc.GetStatusHistory(context.Background(), testTenantId, refund.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].PreviousStatus)
	assert.Equal(t, entity.RefundStatusRequested, history[0].NewStatus)

	mirrored := store.bookings[booking.ID]
	require.NotNil(t, mirrored.RefundStatus)
	assert.Equal(t, entity.RefundStatusRequested, *mirrored.RefundStatus)
}

func TestCreateFromCancellationDuplicate(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	booking := seedBooking(store)
	svc, _ := newTestService(store, &fakeGatewayClient{})

	_, err := svc.CreateFromCancellation(context.Background(), testTenantId, booking.ID)
	require.NoError(t, err)

	_, err = svc.CreateFromCancellation(context.Background(), testTenantId, booking.ID)
	assert.True(t, apperrors.IsAlreadyExists(err))
}

func TestCreateFromCancellationBookingNotFound(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	svc, _ := newTestService(store, &fakeGatewayClient{})

	_, err := svc.CreateFromCancellation(context.Background(), testTenantId, uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateFromCancellationNotCancelled(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	booking := seedBooking(store)
	store.bookings[booking.ID].CancelledAt = nil
	svc, _ := newTestService(store, &fakeGatewayClient{})

	_, err := svc.CreateFromCancellation(context.Background(), testTenantId, booking.ID)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateFromCancellationNoPolicyConfigured(t *testing.T) {
	store := newFakeStore()
	booking := seedBooking(store)
	svc, _ := newTestService(store, &fakeGatewayClient{})

	refund, err := svc.CreateFromCancellation(context.Background(), testTenantId, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, refund.EligibleAmount)
	assert.Equal(t, "No refund available", refund.PolicyApplied.Label)
}

func TestCreateFromCancellationTenantIsolation(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	booking := seedBooking(store)
	svc, _ := newTestService(store, &fakeGatewayClient{})

	_, err := svc.CreateFromCancellation(context.Background(), uuid.New(), booking.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

// --- review / approve / reject ---

func createRefund(t *testing.T, svc IRefundService, store *fakeStore) *entity.Refund {
	t.Helper()
	booking := seedBooking(store)
	refund, err := svc.CreateFromCancellation(context.Background(), testTenantId, booking.ID)
	require.NoError(t, err)
	return refund
}

func TestApproveEligibleAmountNoOverrideNeeded(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	svc, _ := newTestService(store, &fakeGatewayClient{})
	refund := createRefund(t, svc, store)

	approved, err := svc.Approve(context.Background(), testTenantId, refund.ID, testActor, &dto.ApproveRefundRequest{
		Amount: refund.EligibleAmount,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAmount)
	assert.Equal(t, 500.0, *approved.ApprovedAmount)
	assert.Empty(t, approved.OverrideReason)
}

func TestApproveDifferentAmountRequiresOverrideReason(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	svc, _ := newTestService(store, &fakeGatewayClient{})
	refund := createRefund(t, svc, store)

	_, err := svc.Approve(context.Background(), testTenantId, refund.ID, testActor, &dto.ApproveRefundRequest{
		Amount: 750,
	})
	assert.True(t, apperrors.IsValidation(err))

	approved, err := svc.Approve(context.Background(), testTenantId, refund.ID, testActor, &dto.ApproveRefundRequest{
		Amount:         750,
		OverrideReason: "goodwill gesture after complaint",
	})
	require.NoError(t, err)
	assert.Equal(t, "goodwill gesture after complaint", approved.OverrideReason)
	assert.Equal(t, 750.0, *approved.ApprovedAmount)
}

func TestApproveAmountOutOfBounds(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	svc, _ := newTestService(store, &fakeGatewayClient{})
	refund := createRefund(t, svc, store)

	_, err := svc.Approve(context.Background(), testTenantId, refund.ID, testActor, &dto.ApproveRefundRequest{
		Amount:         1200,
		OverrideReason: "too generous",
	})
	assert.True(t, apperrors.IsValidation(err))

	// no state change and no history appended on a vetoed transition
	current, err := svc.GetRefundById(context.Background(), testTenantId, refund.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusRequested, current.Status)
	history, err := svc.GetStatusHistory(context.Background(), testTenantId, refund.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRejectRequiresReason(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	svc, _ := newTestService(store, &fakeGatewayClient{})
	refund := createRefund(t, svc, store)

	_, err := svc.Reject(context.Background(), testTenantId, refund.ID, testActor, &dto.RejectRefundRequest{Reason: ""})
	assert.True(t, apperrors.IsValidation(err))

	current, err := svc.GetRefundById(context.Background(), testTenantId, refund.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusRequested, current.Status)

	rejected, err := svc.Reject(context.Background(), testTenantId, refund.ID, testActor, &dto.RejectRefundRequest{
		Reason: "outside policy window",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusRejected, rejected.Status)
	assert.Equal(t, "outside policy window", rejected.RejectionReason)
	require.NotNil(t, rejected.RejectedBy)
	assert.Equal(t, testActor.Id, *rejected.RejectedBy)
}

func TestApproveAfterReviewAndIllegalTransitions(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	svc, _ := newTestService(store, &fakeGatewayClient{})
	refund := createRefund(t, svc, store)

	_, err := svc.MarkUnderReview(context.Background(), testTenantId, refund.ID, testActor, &dto.ReviewRefundRequest{StaffNotes: "checking invoices"})
	require.NoError(t, err)

	// review is not repeatable
	_, err = svc.MarkUnderReview(context.Background(), testTenantId, refund.ID, testActor, &dto.ReviewRefundRequest{})
	assert.True(t, apperrors.IsInvalidTransition(err))

	// cannot complete before approval
	_, err = svc.Complete(context.Background(), testTenantId, refund.ID, testActor, &dto.CompleteRefundRequest{Amount: 500})
	assert.True(t, apperrors.IsInvalidTransition(err))

	approved, err := svc.Approve(context.Background(), testTenantId, refund.ID, testActor, &dto.ApproveRefundRequest{Amount: refund.EligibleAmount})
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusApproved, approved.Status)

	// terminal statuses refuse further transitions
	_, err = svc.MarkProcessing(context.Background(), testTenantId, refund.ID, testActor)
	require.NoError(t, err)
	_, err = svc.MarkProcessing(context.Background(), testTenantId, refund.ID, testActor)
	assert.True(t, apperrors.IsInvalidTransition(err))
}

func TestTransitionLostRace(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	svc, _ := newTestService(store, &fakeGatewayClient{})
	refund := createRefund(t, svc, store)

	store.casDeny = true
	_, err := svc.Reject(context.Background(), testTenantId, refund.ID, testActor, &dto.RejectRefundRequest{Reason: "duplicate claim"})
	assert.True(t, apperrors.IsInvalidTransition(err))
}

// --- gateway settlement ---

func TestProcessGatewayRefundHappyPath(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	gw := &fakeGatewayClient{resp: &gateway.RefundResponse{
		Status: true,
		Data:   &gateway.RefundData{ID: "rfnd_987"},
	}}
	svc, pub := newTestService(store, gw)
	refund := createRefund(t, svc, store)

	_, err := svc.MarkUnderReview(context.Background(), testTenantId, refund.ID, testActor, &dto.ReviewRefundRequest{})
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), testTenantId, refund.ID, testActor, &dto.ApproveRefundRequest{Amount: refund.EligibleAmount})
	require.NoError(t, err)

	settled, err := svc.ProcessGatewayRefund(context.Background(), testTenantId, refund.ID, testActor)
	require.NoError(t, err)

	assert.Equal(t, entity.RefundStatusCompleted, settled.Status)
	assert.Equal(t, "rfnd_987", settled.RefundReference)
	require.NotNil(t, settled.ProcessedAmount)
	assert.Equal(t, 500.0, *settled.ProcessedAmount)

	// test-mode key, amount in minor units, original transaction reference
	require.Len(t, gw.requests, 1)
	assert.Equal(t, "sk_test_fixture", gw.keys[0])
	assert.Equal(t, int64(50000), gw.requests[0].Amount)
	assert.Equal(t, "txn_original_123", gw.requests[0].Transaction)
	assert.Equal(t, "EUR", gw.requests[0].Currency)

	// full contiguous audit trail
	history, err := svc.GetStatusHistory(context.Background(), testTenantId, refund.ID)
	require.NoError(t, err)
	require.Len(t, history, 5)
	statuses := []entity.RefundStatus{}
	for i, h := range history {
		statuses = append(statuses, h.NewStatus)
		if i > 0 {
			require.NotNil(t, h.PreviousStatus)
			assert.Equal(t, history[i-1].NewStatus, *h.PreviousStatus)
		}
	}
	assert.Equal(t, []entity.RefundStatus{
		entity.RefundStatusRequested,
		entity.RefundStatusUnderReview,
		entity.RefundStatusApproved,
		entity.RefundStatusProcessing,
		entity.RefundStatusCompleted,
	}, statuses)

	// booking mirror and payment status
	booking := store.bookings[refund.BookingID]
	require.NotNil(t, booking.RefundStatus)
	assert.Equal(t, entity.RefundStatusCompleted, *booking.RefundStatus)
	assert.Equal(t, entity.BookingPaymentStatusRefunded, booking.PaymentStatus)

	assert.Equal(t, 1, pub.requested)
	assert.Len(t, pub.changes, 4)
}

func TestProcessGatewayRefundUsesLiveKeyInLiveMode(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	store.configs[testTenantId].GatewayLiveMode = true
	gw := &fakeGatewayClient{resp: &gateway.RefundResponse{Status: true}}
	svc, _ := newTestService(store, gw)
	refund := createRefund(t, svc, store)

	_, err := svc.Approve(context.Background(), testTenantId, refund.ID, testActor, &dto.ApproveRefundRequest{Amount: refund.EligibleAmount})
	require.NoError(t, err)
	_, err = svc.ProcessGatewayRefund(context.Background(), testTenantId, refund.ID, testActor)
	require.NoError(t, err)

	require.Len(t, gw.keys, 1)
	assert.Equal(t, "sk_live_fixture", gw.keys[0])
}

func TestProcessGatewayRefundDeclined(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	gw := &fakeGatewayClient{resp: &gateway.RefundResponse{
		Status:  false,
		Message: "insufficient gateway balance",
	}}
	svc, _ := newTestService(store, gw)
	refund := createRefund(t, svc, store)

	_, err := svc.Approve(context.Background(), testTenantId, refund.ID, testActor, &dto.ApproveRefundRequest{Amount: refund.EligibleAmount})
	require.NoError(t, err)

	settled, err := svc.ProcessGatewayRefund(context.Background(), testTenantId, refund.ID, testActor)
	assert.True(t, apperrors.IsGateway(err))
	require.NotNil(t, settled)
	assert.Equal(t, entity.RefundStatusFailed, settled.Status)
	assert.Contains(t, settled.FailureReason, "insufficient gateway balance")

	// a single attempt, no retries
	assert.Len(t, gw.requests, 1)
}

func TestProcessGatewayRefundTransportError(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	gw := &fakeGatewayClient{err: errors.New("connection refused")}
	svc, _ := newTestService(store, gw)
	refund := createRefund(t, svc, store)

	_, err := svc.Approve(context.Background(), testTenantId, refund.ID, testActor, &dto.ApproveRefundRequest{Amount: refund.EligibleAmount})
	require.NoError(t, err)

	settled, err := svc.ProcessGatewayRefund(context.Background(), testTenantId, refund.ID, testActor)
	assert.True(t, apperrors.IsGateway(err))
	require.NotNil(t, settled)
	assert.Equal(t, entity.RefundStatusFailed, settled.Status)
	assert.Contains(t, settled.FailureReason, "connection refused")
	assert.Len(t, gw.requests, 1)
}

func TestProcessGatewayRefundRequiresApprovedStatus(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	svc, _ := newTestService(store, &fakeGatewayClient{})
	refund := createRefund(t, svc, store)

	_, err := svc.ProcessGatewayRefund(context.Background(), testTenantId, refund.ID, testActor)
	assert.True(t, apperrors.IsInvalidTransition(err))
}

func TestProcessGatewayRefundNonCardPayment(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	booking := seedBooking(store)
	store.bookings[booking.ID].PaymentMethod = entity.PaymentMethodBankTransfer
	svc, _ := newTestService(store, &fakeGatewayClient{})

	refund, err := svc.CreateFromCancellation(context.Background(), testTenantId, booking.ID)
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), testTenantId, refund.ID, testActor, &dto.ApproveRefundRequest{Amount: refund.EligibleAmount})
	require.NoError(t, err)

	_, err = svc.ProcessGatewayRefund(context.Background(), testTenantId, refund.ID, testActor)
	assert.True(t, apperrors.IsValidation(err))
}

func TestProcessGatewayRefundMissingCredentials(t *testing.T) {
	store := newFakeStore()
	seedConfig(store)
	store.configs[testTenantId].GatewayTestSecretKey = ""
	svc, _ := newTestService(store, &fakeGatewayClient{})
	refund := createRefund(t, svc, store)

	_, err := svc.Approve(context.Background(), testTenantId, refund.ID, testActor, &dto.ApproveRefundRequest{Amount: refund.EligibleAmount})
	require.NoError(t, err)

	_, err = svc.ProcessGatewayRefund(context.Background(), testTenantId, refund.ID, testActor)
	assert.True(t, apperrors.IsValidation(err))
}

// --- reporting ---

func seedRefundRow(store *fakeStore, status entity.RefundStatus, eligible float64, approved, processed *float64, requestedAt time.Time, completedAt *time.Time) {
	r := &entity.Refund{
		ID:              uuid.New(),
		TenantID:        testTenantId,
		BookingID:       uuid.New(),
		OriginalAmount:  eligible * 2,
		EligibleAmount:  eligible,
		Currency:        "EUR",
		Status:          status,
		ApprovedAmount:  approved,
		ProcessedAmount: processed,
		RequestedAt:     requestedAt,
		CompletedAt:     completedAt,
	}
	store.refunds[r.ID] = r
}

func amount(v float64) *float64 { return &v }

func TestGetStatsFallbackSums(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, &fakeGatewayClient{})
	now := time.Now()

	// rejected: excluded from requested total
	seedRefundRow(store, entity.RefundStatusRejected, 100, nil, nil, now, nil)
	// requested: counts toward requested only
	seedRefundRow(store, entity.RefundStatusRequested, 200, nil, nil, now, nil)
	// approved with explicit amount
	seedRefundRow(store, entity.RefundStatusApproved, 300, amount(250), nil, now, nil)
	// processing without explicit approved amount: falls back to eligible
	seedRefundRow(store, entity.RefundStatusProcessing, 400, nil, nil, now, nil)
	// completed this month
	seedRefundRow(store, entity.RefundStatusCompleted, 500, amount(500), amount(480), now, &now)
	// completed a previous month
	old := now.AddDate(0, -2, 0)
	seedRefundRow(store, entity.RefundStatusCompleted, 600, nil, amount(600), old, &old)

	stats, err := svc.GetStats(context.Background(), testTenantId)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.CountsByStatus["rejected"])
	assert.Equal(t, 1, stats.CountsByStatus["requested"])
	assert.Equal(t, 2, stats.CountsByStatus["completed"])
	assert.Equal(t, 0, stats.CountsByStatus["failed"])

	// 200 + 300 + 400 + 500 + 600 (rejected 100 excluded)
	assert.Equal(t, 2000.0, stats.TotalRequestedAmount)
	// 250 + 400 (fallback) + 500 + 600 (fallback)
	assert.Equal(t, 1750.0, stats.TotalApprovedAmount)
	// 480 + 600
	assert.Equal(t, 1080.0, stats.TotalProcessedAmount)
	// only the current-month completion
	assert.Equal(t, 480.0, stats.CompletedThisMonth)
}

func TestGetPendingEscalation(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, &fakeGatewayClient{})
	now := time.Now()

	seedRefundRow(store, entity.RefundStatusRequested, 100, nil, nil, now.Add(-48*time.Hour), nil)
	seedRefundRow(store, entity.RefundStatusApproved, 100, nil, nil, now.Add(-30*time.Hour), nil)
	seedRefundRow(store, entity.RefundStatusRequested, 100, nil, nil, now.Add(-2*time.Hour), nil)
	seedRefundRow(store, entity.RefundStatusCompleted, 100, nil, nil, now.Add(-72*time.Hour), nil)
	seedRefundRow(store, entity.RefundStatusProcessing, 100, nil, nil, now.Add(-72*time.Hour), nil)

	stale, err := svc.GetPendingEscalation(context.Background(), testTenantId, 24)
	require.NoError(t, err)
	require.Len(t, stale, 2)
	for _, r := range stale {
		assert.Contains(t, []entity.RefundStatus{
			entity.RefundStatusRequested,
			entity.RefundStatusApproved,
		}, r.Status)
		assert.True(t, r.RequestedAt.Before(now.Add(-24*time.Hour)))
	}
}

func TestGetRefundsStatusFilter(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, &fakeGatewayClient{})
	now := time.Now()

	seedRefundRow(store, entity.RefundStatusRequested, 100, nil, nil, now, nil)
	seedRefundRow(store, entity.RefundStatusRejected, 100, nil, nil, now, nil)

	refunds, err := svc.GetRefunds(context.Background(), testTenantId, &dto.RefundListFilter{Status: "rejected"})
	require.NoError(t, err)
	require.Len(t, refunds, 1)
	assert.Equal(t, entity.RefundStatusRejected, refunds[0].Status)

	_, err = svc.GetRefunds(context.Background(), testTenantId, &dto.RefundListFilter{Status: "bogus"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestGetStatusHistoryUnknownRefund(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, &fakeGatewayClient{})

	_, err := svc.GetStatusHistory(context.Background(), testTenantId, uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}
