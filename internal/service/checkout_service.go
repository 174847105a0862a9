package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"threadkart/internal/cart"
	"threadkart/internal/coupon"
	"threadkart/internal/model"
	"threadkart/internal/payment"
	"threadkart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// metadataProduct is the finalized line tuple embedded in the payment
// session at initiation. It is the only purchase data the reconciliation
// engine ever reads; nothing is re-read from a live cart or client body.
type metadataProduct struct {
	ID       uuid.UUID `json:"id"`
	Quantity int       `json:"quantity"`
	Price    float64   `json:"price"`
}

// checkoutService implements CheckoutService.
type checkoutService struct {
	provider      payment.Client
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	couponRepo    repository.CouponRepository
	validator     coupon.Validator
	cartStore     cart.Store
	webhookSecret string
	successURL    string
	cancelURL     string
	logger        zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	provider payment.Client,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	validator coupon.Validator,
	cartStore cart.Store,
	webhookSecret, successURL, cancelURL string,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		provider:      provider,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		couponRepo:    couponRepo,
		validator:     validator,
		cartStore:     cartStore,
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
		logger:        logger.With().Str("service", "checkout").Logger(),
	}
}

// CreateSession prices the cart from authoritative product data, runs the
// advisory stock check and hands off to the hosted payment page. The
// finalized tuples are embedded in the session metadata for reconciliation.
func (s *checkoutService) CreateSession(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if err := validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	// Advisory stock check: no hold is placed, so stock can still be
	// exhausted by another order before this payment completes.
	lineItems := make([]payment.LineItem, 0, len(req.Items))
	tuples := make([]metadataProduct, 0, len(req.Items))
	var totalCents int64

	for _, item := range req.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			s.logger.Warn().
				Str("product_id", item.ProductID.String()).
				Msg("checkout references unknown product")
			return nil, model.ErrProductNotFound
		}

		if p.Stock < item.Quantity {
			s.logger.Warn().
				Str("product_id", p.ID.String()).
				Int("stock", p.Stock).
				Int("requested", item.Quantity).
				Msg("insufficient stock at checkout initiation")
			return nil, model.ErrInsufficientStock
		}

		unitAmount := toCents(p.Price)
		totalCents += unitAmount * int64(item.Quantity)

		lineItems = append(lineItems, payment.LineItem{
			Name:        p.Name,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			UnitAmount:  unitAmount,
			Quantity:    item.Quantity,
		})

		tuples = append(tuples, metadataProduct{
			ID:       p.ID,
			Quantity: item.Quantity,
			Price:    p.Price,
		})
	}

	couponCode := ""
	var discountCents int64
	if req.CouponCode != nil && *req.CouponCode != "" {
		c, err := s.validator.Validate(ctx, *req.CouponCode, userID)
		if err != nil {
			s.logger.Warn().
				Str("coupon_code", *req.CouponCode).
				Err(err).
				Msg("coupon rejected at checkout initiation")
			return nil, err
		}

		couponCode = c.Code
		discountCents = int64(math.Round(float64(totalCents) * float64(c.DiscountPercentage) / 100))
		totalCents -= discountCents
	}

	tupleJSON, err := json.Marshal(tuples)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session metadata: %w", err)
	}

	session, err := s.provider.CreateSession(ctx, payment.CreateSessionParams{
		LineItems: lineItems,
		Discount:  discountCents,
		Metadata: map[string]string{
			payment.MetadataUserID:     userID,
			payment.MetadataCouponCode: couponCode,
			payment.MetadataProducts:   string(tupleJSON),
		},
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create payment session")
		return nil, fmt.Errorf("failed to create payment session: %w", err)
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Str("user_id", userID).
		Int64("total_cents", totalCents).
		Int64("discount_cents", discountCents).
		Msg("checkout session created")

	return &model.CheckoutResponse{
		SessionID:   session.ID,
		URL:         session.URL,
		TotalAmount: fromCents(totalCents),
		Discount:    fromCents(discountCents),
	}, nil
}

// Reconcile converts a completed payment session into a durable order
// exactly once. Both completion channels call it, possibly concurrently
// and repeatedly; the unique index on external_session_id is the final
// arbiter of the create race.
func (s *checkoutService) Reconcile(ctx context.Context, sessionID string) (*model.Order, error) {
	// Authoritative state comes from the provider, never from the caller.
	session, err := s.provider.FetchSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment session: %w", err)
	}

	if session.PaymentStatus != payment.StatusPaid {
		s.logger.Info().
			Str("session_id", sessionID).
			Str("payment_status", session.PaymentStatus).
			Msg("session not paid, no order created")
		return nil, model.ErrPaymentNotCompleted
	}

	// Idempotency gate: duplicate and concurrent deliveries short-circuit here.
	existing, err := s.orderRepo.GetByExternalSessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Debug().
			Str("session_id", sessionID).
			Str("order_id", existing.ID.String()).
			Msg("order already processed")
		return existing, nil
	}

	userID, tuples, couponCode, err := parseSessionMetadata(session)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("corrupt session metadata")
		return nil, err
	}

	now := time.Now()
	order := &model.Order{
		ID:                uuid.New(),
		UserID:            userID,
		TotalAmount:       fromCents(session.AmountTotal),
		ExternalSessionID: &sessionID,
		PaymentStatus:     model.PaymentStatusPaid,
		OrderStatus:       model.OrderStatusProcessing,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	items := make([]model.OrderItem, len(tuples))
	for i, t := range tuples {
		items[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: t.ID,
			Quantity:  t.Quantity,
			Price:     t.Price,
		}
	}
	order.Items = items

	if couponCode != "" {
		c, err := s.couponRepo.GetByCode(ctx, couponCode)
		if err != nil {
			return nil, err
		}
		if c != nil {
			order.CouponUsed = &model.CouponUsage{
				Code:               c.Code,
				DiscountPercentage: c.DiscountPercentage,
			}
		}
	}

	created, err := s.persistOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	if !created {
		// Lost the create race to the other channel; the winner's order
		// is the order.
		winner, err := s.orderRepo.GetByExternalSessionID(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if winner == nil {
			return nil, fmt.Errorf("order for session %s vanished after create conflict", sessionID)
		}
		s.logger.Debug().
			Str("session_id", sessionID).
			Str("order_id", winner.ID.String()).
			Msg("create race lost, returning existing order")
		return winner, nil
	}

	// Post-creation effects run once, guarded by the create above. Each is
	// best-effort: the payment has already settled, so nothing here may
	// fail the order.
	if order.CouponUsed != nil {
		redeemed, err := s.couponRepo.Redeem(ctx, order.CouponUsed.Code, userID)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("coupon_code", order.CouponUsed.Code).
				Str("order_id", order.ID.String()).
				Msg("coupon redemption failed")
		} else if !redeemed {
			// Lost the usage race: the discount was already priced into
			// the amount charged, so the order stands and the ledger
			// simply records no extra use.
			s.logger.Warn().
				Str("coupon_code", order.CouponUsed.Code).
				Str("user_id", userID).
				Str("order_id", order.ID.String()).
				Msg("coupon no longer redeemable, order completed with priced-in discount")
		}
	}

	for _, item := range items {
		if err := s.productRepo.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
			s.logger.Error().
				Err(err).
				Str("product_id", item.ProductID.String()).
				Str("order_id", order.ID.String()).
				Msg("failed to decrement stock")
		}
	}

	if err := s.cartStore.Clear(ctx, userID); err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to clear cart after order creation")
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("session_id", sessionID).
		Str("user_id", userID).
		Float64("total_amount", order.TotalAmount).
		Msg("order created from completed payment")

	return order, nil
}

// persistOrder writes the order and its items in one transaction. Reports
// created=false when another reconciliation won the unique-index race.
func (s *checkoutService) persistOrder(ctx context.Context, order *model.Order) (created bool, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to persist order: %w", err)
	}

	defer func() {
		if err != nil || !created {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback order transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		if repository.IsUniqueViolation(err) {
			// Already processed by the other channel: success, not failure.
			return false, nil
		}
		return false, err
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		return false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit order: %w", err)
	}

	return true, nil
}

// HandleWebhook verifies the raw payload's signature before anything else
// and dispatches the event. Errors propagate so the HTTP layer responds
// non-2xx and the provider's retry policy redelivers.
func (s *checkoutService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := payment.ConstructEvent(payload, sigHeader, s.webhookSecret)
	if err != nil {
		s.logger.Warn().Err(err).Msg("webhook rejected")
		return err
	}

	s.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Msg("webhook received")

	switch event.Type {
	case payment.EventCheckoutCompleted, payment.EventAsyncPaymentSucceeded:
		_, err := s.Reconcile(ctx, event.SessionRef)
		return err

	case payment.EventAsyncPaymentFailed, payment.EventPaymentFailed:
		// Failed payments never create orders.
		s.logger.Info().
			Str("session_ref", event.SessionRef).
			Msg("payment failed, no action taken")
		return nil

	case payment.EventChargeRefunded:
		return s.Refund(ctx, event.SessionRef)

	default:
		s.logger.Debug().Str("event_type", event.Type).Msg("unhandled webhook event type")
		return nil
	}
}

// Refund flips a paid order to refunded and restores the stock decremented
// at creation. The conditional status transition makes duplicate refund
// events no-ops: stock is reversed at most once.
func (s *checkoutService) Refund(ctx context.Context, sessionRef string) error {
	order, err := s.orderRepo.GetByExternalSessionID(ctx, sessionRef)
	if err != nil {
		return err
	}
	if order == nil {
		s.logger.Warn().Str("session_ref", sessionRef).Msg("refund event for unknown order")
		return nil
	}

	transitioned, err := s.orderRepo.TransitionPaymentStatus(ctx, order.ID, model.PaymentStatusPaid, model.PaymentStatusRefunded)
	if err != nil {
		return err
	}
	if !transitioned {
		s.logger.Info().
			Str("order_id", order.ID.String()).
			Str("payment_status", order.PaymentStatus).
			Msg("refund already applied or order not refundable")
		return nil
	}

	for _, item := range order.Items {
		if err := s.productRepo.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error().
				Err(err).
				Str("product_id", item.ProductID.String()).
				Str("order_id", order.ID.String()).
				Msg("failed to restore stock on refund")
		}
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("session_ref", sessionRef).
		Msg("order refunded")

	return nil
}

func parseSessionMetadata(session *payment.Session) (string, []metadataProduct, string, error) {
	userID := session.Metadata[payment.MetadataUserID]
	if userID == "" {
		return "", nil, "", fmt.Errorf("session %s metadata missing user", session.ID)
	}

	var tuples []metadataProduct
	if err := json.Unmarshal([]byte(session.Metadata[payment.MetadataProducts]), &tuples); err != nil {
		return "", nil, "", fmt.Errorf("session %s metadata products invalid: %w", session.ID, err)
	}
	if len(tuples) == 0 {
		return "", nil, "", fmt.Errorf("session %s metadata has no products", session.ID)
	}

	return userID, tuples, session.Metadata[payment.MetadataCouponCode], nil
}

func validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil || len(req.Items) == 0 {
		return fmt.Errorf("checkout must contain at least one item")
	}

	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return fmt.Errorf("item %d: product ID is required", i)
		}
		if item.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
	}

	return nil
}

func toCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}
