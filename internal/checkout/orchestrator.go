package checkout

import (
	"context"
	"errors"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mvrcosta/backend-loja/internal/cart"
	"github.com/mvrcosta/backend-loja/internal/common"
	"github.com/mvrcosta/backend-loja/internal/events"
	"github.com/mvrcosta/backend-loja/internal/obs"
	"github.com/mvrcosta/backend-loja/internal/payment"
	"github.com/mvrcosta/backend-loja/internal/pricing"
)

// Orchestrator advances checkout sessions through the state machine. It owns
// no transport concerns; handlers translate HTTP to these operations.
type Orchestrator struct {
	Sessions *Registry
	Cart     *cart.Service
	Gateway  payment.Gateway
	Events   *events.Bus
	Validate *validator.Validate
	Logger   zerolog.Logger

	PixDiscountBPS  int
	MaxInstallments int
	Currency        string
}

func (o *Orchestrator) currency() string {
	if o.Currency == "" {
		return "BRL"
	}
	return o.Currency
}

func (o *Orchestrator) maxInstallments() int {
	if o.MaxInstallments <= 0 {
		return 12
	}
	return o.MaxInstallments
}

// View is a read snapshot of a session plus the cart-derived pricing the
// payment step displays.
type View struct {
	State                State                 `json:"state"`
	Shipping             *payment.Shipping     `json:"shipping,omitempty"`
	Method               payment.Method        `json:"method,omitempty"`
	Total                pricing.Money         `json:"total"`
	PixDiscount          pricing.Money         `json:"pixDiscount"`
	TotalWithPixDiscount pricing.Money         `json:"totalWithPixDiscount"`
	Installments         []pricing.Installment `json:"installments,omitempty"`
	Result               *payment.Result       `json:"result,omitempty"`
}

// State returns the current view for the session, creating it in the initial
// state on first touch.
func (o *Orchestrator) State(ctx context.Context, sessionID string) (View, error) {
	c, err := o.Cart.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	sess := o.Sessions.Get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return o.view(sess, c), nil
}

func (o *Orchestrator) view(sess *Session, c cart.Cart) View {
	total := c.Total()
	v := View{
		State:                sess.State,
		Method:               sess.Method,
		Total:                total,
		PixDiscount:          pricing.PixDiscount(total, o.PixDiscountBPS),
		TotalWithPixDiscount: pricing.TotalWithPixDiscount(total, o.PixDiscountBPS),
		Result:               sess.Result,
	}
	if sess.HasShipping {
		shipping := sess.Shipping
		v.Shipping = &shipping
	}
	if sess.State == StateSelectingPayment {
		v.Installments = pricing.InstallmentPlan(total, o.maxInstallments())
	}
	return v
}

// SubmitShipping validates and stores the delivery details, advancing to
// payment selection. Validation failure leaves the state unchanged.
func (o *Orchestrator) SubmitShipping(ctx context.Context, sessionID string, shipping payment.Shipping) (View, error) {
	if err := o.validateShipping(shipping); err != nil {
		return View{}, err
	}
	c, err := o.Cart.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}

	sess := o.Sessions.Get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.State != StateCollectingShipping {
		return View{}, common.ConflictError("shipping can only be submitted while collecting shipping")
	}
	sess.Shipping = shipping
	sess.HasShipping = true
	sess.transition(StateSelectingPayment)
	return o.view(sess, c), nil
}

// SelectPayment records the chosen method without leaving payment selection.
func (o *Orchestrator) SelectPayment(ctx context.Context, sessionID string, method payment.Method) (View, error) {
	if !method.Valid() {
		return View{}, common.ValidationError("unknown payment method", map[string]any{"method": method})
	}
	c, err := o.Cart.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}

	sess := o.Sessions.Get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.State != StateSelectingPayment {
		return View{}, common.ConflictError("payment method can only be chosen while selecting payment")
	}
	sess.Method = method
	return o.view(sess, c), nil
}

// Confirm freezes the cart into an order and dispatches the gateway operation
// for the chosen method. The session lock is released for the duration of the
// gateway call; a response for an order that is no longer the active attempt
// is discarded.
func (o *Orchestrator) Confirm(ctx context.Context, sessionID string, method payment.Method, cardInput *payment.CardInput) (*payment.Result, error) {
	c, err := o.Cart.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess := o.Sessions.Get(sessionID)
	sess.mu.Lock()
	if sess.State == StateCompleted {
		sess.mu.Unlock()
		return nil, common.ConflictError("checkout already completed")
	}
	if sess.inFlight {
		sess.mu.Unlock()
		return nil, common.ConflictError("a payment attempt is already in flight")
	}
	if sess.State != StateSelectingPayment {
		sess.mu.Unlock()
		return nil, common.ConflictError("payment can only be confirmed while selecting payment")
	}
	if method == "" {
		method = sess.Method
	}
	if !method.Valid() {
		sess.mu.Unlock()
		return nil, common.ValidationError("payment method is required", nil)
	}
	if method == payment.MethodCard && cardInput == nil {
		sess.mu.Unlock()
		return nil, common.ValidationError("card data is required for card payments", nil)
	}
	if c.IsEmpty() {
		sess.mu.Unlock()
		return nil, common.ValidationError("cart is empty", nil)
	}

	order := o.buildOrder(c, method, sess.Shipping)
	sess.Method = method
	sess.activeOrderID = order.ID
	sess.inFlight = true
	sess.transition(StateAwaitingGateway)
	sess.mu.Unlock()

	result, gatewayErr := o.dispatch(ctx, method, cardInput, order)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.activeOrderID != order.ID {
		o.Logger.Warn().
			Str("session_id", sessionID).
			Str("order_id", order.ID).
			Msg("discarding stale gateway response")
		if obs.StaleGatewayResponseTotal != nil {
			obs.StaleGatewayResponseTotal.Inc()
		}
		return nil, common.StaleResponseError(order.ID)
	}
	sess.inFlight = false

	if gatewayErr != nil {
		sess.transition(StateSelectingPayment)
		return nil, gatewayErr
	}

	sess.Result = result
	if method == payment.MethodCard && !result.Card.Approved() {
		// Rejection is final for the attempt but not for the checkout; the
		// shopper retries with corrected input or another method.
		sess.transition(StateSelectingPayment)
		return result, nil
	}

	sess.activeOrderID = ""
	sess.transition(StateCompleted)
	if method == payment.MethodCard {
		if err := o.Cart.Clear(ctx, sessionID); err != nil {
			o.Logger.Error().Err(err).Str("session_id", sessionID).Msg("clear cart after approval")
		}
	}
	o.emitCompleted(ctx, sessionID, order, result)
	return result, nil
}

// Back steps the session one state backwards. Stepping out of the awaiting
// state abandons the active attempt; its eventual response becomes stale.
func (o *Orchestrator) Back(ctx context.Context, sessionID string) (View, error) {
	c, err := o.Cart.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}

	sess := o.Sessions.Get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	switch sess.State {
	case StateSelectingPayment:
		sess.transition(StateCollectingShipping)
	case StateAwaitingGateway:
		sess.activeOrderID = ""
		sess.inFlight = false
		sess.transition(StateSelectingPayment)
	default:
		return View{}, common.ConflictError("nothing to go back to")
	}
	return o.view(sess, c), nil
}

// Cancel abandons the checkout and resets the session to the initial state.
// The cart is left untouched.
func (o *Orchestrator) Cancel(ctx context.Context, sessionID string) (View, error) {
	c, err := o.Cart.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}

	sess := o.Sessions.Get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.State == StateCompleted {
		return View{}, common.ConflictError("checkout already completed")
	}
	sess.Shipping = payment.Shipping{}
	sess.HasShipping = false
	sess.Method = ""
	sess.Result = nil
	sess.activeOrderID = ""
	sess.inFlight = false
	sess.transition(StateCollectingShipping)
	return o.view(sess, c), nil
}

func (o *Orchestrator) buildOrder(c cart.Cart, method payment.Method, shipping payment.Shipping) payment.Order {
	items := make([]payment.OrderItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, payment.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Qty:       l.Qty,
		})
	}
	total := c.Total()
	if method == payment.MethodPix {
		total = pricing.TotalWithPixDiscount(total, o.PixDiscountBPS)
	}
	return payment.Order{
		ID:       uuid.NewString(),
		Items:    items,
		Total:    total,
		Currency: o.currency(),
		Payer: payment.Payer{
			Name:  shipping.Name,
			Email: shipping.Email,
			Phone: shipping.Phone,
		},
		Shipping: shipping,
	}
}

func (o *Orchestrator) dispatch(ctx context.Context, method payment.Method, cardInput *payment.CardInput, order payment.Order) (*payment.Result, error) {
	switch method {
	case payment.MethodPix:
		charge, err := o.Gateway.CreatePixCharge(ctx, order)
		if err != nil {
			return nil, err
		}
		return &payment.Result{Method: method, Pix: &charge}, nil
	case payment.MethodCard:
		charge, err := o.Gateway.ProcessCardCharge(ctx, *cardInput, order)
		if err != nil {
			return nil, err
		}
		return &payment.Result{Method: method, Card: &charge}, nil
	case payment.MethodRedirect:
		pref, err := o.Gateway.CreatePreference(ctx, order)
		if err != nil {
			return nil, err
		}
		return &payment.Result{Method: method, Preference: &pref}, nil
	}
	return nil, common.ValidationError("unknown payment method", map[string]any{"method": method})
}

func (o *Orchestrator) validateShipping(shipping payment.Shipping) error {
	if o.Validate == nil {
		return errors.New("checkout: validator not configured")
	}
	err := o.Validate.Struct(shipping)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[strings.ToLower(fe.Field()[:1])+fe.Field()[1:]] = fe.Tag()
		}
		return common.ValidationError("missing or malformed shipping fields", details)
	}
	return common.ValidationError("invalid shipping payload", nil)
}

func (o *Orchestrator) emitCompleted(ctx context.Context, sessionID string, order payment.Order, result *payment.Result) {
	if o.Events == nil {
		return
	}
	payload := map[string]any{
		"sessionId": sessionID,
		"orderId":   order.ID,
		"method":    result.Method,
		"total":     order.Total,
	}
	if _, err := o.Events.Emit(ctx, events.TopicCheckoutCompleted, order.ID, payload); err != nil {
		o.Logger.Error().Err(err).Str("order_id", order.ID).Msg("emit checkout completed")
	}
}
