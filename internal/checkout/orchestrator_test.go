package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	validator "github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mvrcosta/backend-loja/internal/cart"
	"github.com/mvrcosta/backend-loja/internal/catalog"
	"github.com/mvrcosta/backend-loja/internal/common"
	"github.com/mvrcosta/backend-loja/internal/payment"
)

func testShipping() payment.Shipping {
	return payment.Shipping{
		Name:         "Maria Silva",
		Email:        "maria@example.com",
		Phone:        "11999990000",
		PostalCode:   "01310-100",
		Street:       "Avenida Paulista",
		Number:       "1000",
		Neighborhood: "Bela Vista",
		City:         "São Paulo",
		State:        "SP",
	}
}

func testCardInput() *payment.CardInput {
	return &payment.CardInput{
		Number:       "4539148803436467",
		HolderName:   "MARIA SILVA",
		Expiry:       "12/29",
		CVV:          "123",
		Installments: 1,
	}
}

func testOrchestrator(t *testing.T, gw payment.Gateway) *Orchestrator {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	products := []catalog.Product{{ID: "kit-4s", Name: "Kit Essencial 4 Semanas", UnitPrice: 119700}}
	cartSvc := &cart.Service{
		Store:   cart.RedisStore{Client: client, TTL: time.Hour},
		Catalog: catalog.StaticSource{Products: products},
		Logger:  zerolog.Nop(),
	}
	return &Orchestrator{
		Sessions:       NewRegistry(),
		Cart:           cartSvc,
		Gateway:        gw,
		Validate:       validator.New(),
		Logger:         zerolog.Nop(),
		PixDiscountBPS: 500,
	}
}

func seedCart(t *testing.T, o *Orchestrator, sessionID string) {
	t.Helper()
	_, err := o.Cart.AddItem(context.Background(), sessionID, "kit-4s", 1)
	require.NoError(t, err)
}

func advanceToPayment(t *testing.T, o *Orchestrator, sessionID string) {
	t.Helper()
	view, err := o.SubmitShipping(context.Background(), sessionID, testShipping())
	require.NoError(t, err)
	require.Equal(t, StateSelectingPayment, view.State)
}

func TestPixFlowEndToEnd(t *testing.T) {
	gw := payment.MercadoPago{AccessToken: "tok"}
	o := testOrchestrator(t, gw)
	ctx := context.Background()
	seedCart(t, o, "s1")
	advanceToPayment(t, o, "s1")

	view, err := o.SelectPayment(ctx, "s1", payment.MethodPix)
	require.NoError(t, err)
	require.Equal(t, int64(119700), int64(view.Total))
	require.Equal(t, int64(5985), int64(view.PixDiscount))
	require.Equal(t, int64(113715), int64(view.TotalWithPixDiscount))

	result, err := o.Confirm(ctx, "s1", "", nil)
	require.NoError(t, err)
	require.Equal(t, payment.MethodPix, result.Method)
	require.NotNil(t, result.Pix)
	require.Equal(t, payment.StatusPending, result.Pix.Status)
	require.Equal(t, int64(113715), int64(result.Pix.Amount))

	after, err := o.State(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, StateCompleted, after.State)
	// Settlement is asynchronous; the cart survives until payment lands.
	require.Equal(t, int64(119700), int64(after.Total))
}

func TestCardApprovedClearsCart(t *testing.T) {
	gw := payment.MercadoPago{AccessToken: "tok", Approver: payment.StaticApprover(true)}
	o := testOrchestrator(t, gw)
	ctx := context.Background()
	seedCart(t, o, "s1")
	advanceToPayment(t, o, "s1")

	result, err := o.Confirm(ctx, "s1", payment.MethodCard, testCardInput())
	require.NoError(t, err)
	require.NotNil(t, result.Card)
	require.True(t, result.Card.Approved())
	require.Equal(t, int64(119700), int64(result.Card.Amount))

	after, err := o.State(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, StateCompleted, after.State)
	require.Zero(t, after.Total)
}

func TestCardRejectedKeepsCartAndAllowsRetry(t *testing.T) {
	approver := &togglingApprover{}
	gw := payment.MercadoPago{AccessToken: "tok", Approver: approver}
	o := testOrchestrator(t, gw)
	ctx := context.Background()
	seedCart(t, o, "s1")
	advanceToPayment(t, o, "s1")

	result, err := o.Confirm(ctx, "s1", payment.MethodCard, testCardInput())
	require.NoError(t, err)
	require.Equal(t, payment.StatusRejected, result.Card.Status)

	mid, err := o.State(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, StateSelectingPayment, mid.State)
	require.Equal(t, int64(119700), int64(mid.Total))

	approver.approve = true
	retry, err := o.Confirm(ctx, "s1", payment.MethodCard, testCardInput())
	require.NoError(t, err)
	require.True(t, retry.Card.Approved())

	after, err := o.State(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, StateCompleted, after.State)
}

type togglingApprover struct {
	approve bool
}

func (a *togglingApprover) Approve(payment.CardInput, payment.Order) bool { return a.approve }

func TestRedirectFlowCompletes(t *testing.T) {
	gw := payment.MercadoPago{AccessToken: "tok"}
	o := testOrchestrator(t, gw)
	ctx := context.Background()
	seedCart(t, o, "s1")
	advanceToPayment(t, o, "s1")

	result, err := o.Confirm(ctx, "s1", payment.MethodRedirect, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Preference)
	require.NotEmpty(t, result.Preference.ExternalReference)

	after, err := o.State(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, StateCompleted, after.State)
}

func TestSubmitShippingValidation(t *testing.T) {
	o := testOrchestrator(t, payment.MercadoPago{AccessToken: "tok"})
	ctx := context.Background()
	seedCart(t, o, "s1")

	bad := testShipping()
	bad.Email = ""
	_, err := o.SubmitShipping(ctx, "s1", bad)
	require.Equal(t, common.CodeValidation, common.CodeOf(err))

	view, err := o.State(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, StateCollectingShipping, view.State)
	require.Nil(t, view.Shipping)
}

func TestConfirmRequiresNonEmptyCart(t *testing.T) {
	o := testOrchestrator(t, payment.MercadoPago{AccessToken: "tok"})
	ctx := context.Background()
	advanceToPayment(t, o, "s1")

	_, err := o.Confirm(ctx, "s1", payment.MethodPix, nil)
	require.Equal(t, common.CodeValidation, common.CodeOf(err))

	view, err := o.State(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, StateSelectingPayment, view.State)
}

func TestConfirmRequiresCardInputForCardMethod(t *testing.T) {
	o := testOrchestrator(t, payment.MercadoPago{AccessToken: "tok"})
	ctx := context.Background()
	seedCart(t, o, "s1")
	advanceToPayment(t, o, "s1")

	_, err := o.Confirm(ctx, "s1", payment.MethodCard, nil)
	require.Equal(t, common.CodeValidation, common.CodeOf(err))
}

func TestGatewayFailureReturnsToSelectingPayment(t *testing.T) {
	// No access token: the gateway reports itself unavailable.
	o := testOrchestrator(t, payment.MercadoPago{})
	ctx := context.Background()
	seedCart(t, o, "s1")
	advanceToPayment(t, o, "s1")

	_, err := o.Confirm(ctx, "s1", payment.MethodPix, nil)
	require.Equal(t, common.CodeGatewayUnavailable, common.CodeOf(err))

	view, err := o.State(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, StateSelectingPayment, view.State)
}

// blockingGateway parks pix calls until released so tests can observe the
// awaiting state from another goroutine.
type blockingGateway struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingGateway() *blockingGateway {
	return &blockingGateway{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *blockingGateway) CreatePreference(context.Context, payment.Order) (payment.Preference, error) {
	return payment.Preference{}, nil
}

func (g *blockingGateway) CreatePixCharge(_ context.Context, order payment.Order) (payment.PixCharge, error) {
	close(g.started)
	<-g.release
	return payment.PixCharge{ID: "pix_late", Status: payment.StatusPending, Amount: order.Total}, nil
}

func (g *blockingGateway) ProcessCardCharge(context.Context, payment.CardInput, payment.Order) (payment.CardCharge, error) {
	return payment.CardCharge{}, nil
}

func TestSecondConfirmWhileInFlightIsRejected(t *testing.T) {
	gw := newBlockingGateway()
	o := testOrchestrator(t, gw)
	ctx := context.Background()
	seedCart(t, o, "s1")
	advanceToPayment(t, o, "s1")

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = o.Confirm(ctx, "s1", payment.MethodPix, nil)
	}()
	<-gw.started

	_, err := o.Confirm(ctx, "s1", payment.MethodPix, nil)
	require.Equal(t, common.CodeConflict, common.CodeOf(err))

	close(gw.release)
	wg.Wait()
	require.NoError(t, firstErr)
}

func TestCancelledAttemptDiscardsLateGatewayResponse(t *testing.T) {
	gw := newBlockingGateway()
	o := testOrchestrator(t, gw)
	ctx := context.Background()
	seedCart(t, o, "s1")
	advanceToPayment(t, o, "s1")

	var wg sync.WaitGroup
	wg.Add(1)
	var confirmErr error
	go func() {
		defer wg.Done()
		_, confirmErr = o.Confirm(ctx, "s1", payment.MethodPix, nil)
	}()
	<-gw.started

	view, err := o.Back(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, StateSelectingPayment, view.State)

	close(gw.release)
	wg.Wait()
	require.Equal(t, common.CodeStaleResponse, common.CodeOf(confirmErr))

	after, err := o.State(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, StateSelectingPayment, after.State)
	require.Nil(t, after.Result)
}

func TestBackFromSelectingPayment(t *testing.T) {
	o := testOrchestrator(t, payment.MercadoPago{AccessToken: "tok"})
	ctx := context.Background()
	seedCart(t, o, "s1")
	advanceToPayment(t, o, "s1")

	view, err := o.Back(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, StateCollectingShipping, view.State)
	// Shipping is kept for resubmission.
	require.NotNil(t, view.Shipping)
}

func TestCancelResetsSession(t *testing.T) {
	o := testOrchestrator(t, payment.MercadoPago{AccessToken: "tok"})
	ctx := context.Background()
	seedCart(t, o, "s1")
	advanceToPayment(t, o, "s1")

	_, err := o.SelectPayment(ctx, "s1", payment.MethodPix)
	require.NoError(t, err)

	view, err := o.Cancel(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, StateCollectingShipping, view.State)
	require.Nil(t, view.Shipping)
	require.Empty(t, view.Method)
	// Abandoning checkout never empties the cart.
	require.Equal(t, int64(119700), int64(view.Total))
}

func TestConfirmAfterCompletionIsRejected(t *testing.T) {
	gw := payment.MercadoPago{AccessToken: "tok", Approver: payment.StaticApprover(true)}
	o := testOrchestrator(t, gw)
	ctx := context.Background()
	seedCart(t, o, "s1")
	advanceToPayment(t, o, "s1")

	_, err := o.Confirm(ctx, "s1", payment.MethodCard, testCardInput())
	require.NoError(t, err)

	_, err = o.Confirm(ctx, "s1", payment.MethodCard, testCardInput())
	require.Equal(t, common.CodeConflict, common.CodeOf(err))
}
