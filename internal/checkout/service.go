package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopdesk-be/internal/apperr"
	"shopdesk-be/internal/contact"
	"shopdesk-be/internal/db"
	"shopdesk-be/internal/inventory"
	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/metrics"
	"shopdesk-be/internal/notification"
	"shopdesk-be/internal/order"
	"shopdesk-be/internal/payment"
	"shopdesk-be/internal/pricing"
	"shopdesk-be/internal/product"
	"shopdesk-be/internal/utils"

	"go.uber.org/zap"
)

const (
	checkoutActor   = "checkout"
	notifyTimeout   = 5 * time.Second
	maxLineQuantity = 100_000
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
)

type PaymentDispatcher interface {
	Supports(method string) bool
	Dispatch(ctx context.Context, charge payment.Charge, method string) payment.Result
}

type Service interface {
	Checkout(ctx context.Context, tenantID int64, req Request) (*Result, error)
}

type Deps struct {
	Products   product.Repository
	Ledger     inventory.Ledger
	Calculator *pricing.Calculator
	Contacts   contact.Resolver
	Orders     order.Repository
	Tx         db.TxManager
	Payments   PaymentDispatcher
	Notifier   notification.Sender
	Metrics    *metrics.Metrics
	Currency   string
}

type service struct {
	Deps
	now       func() time.Time
	newNumber func(time.Time) string
}

func NewService(d Deps) Service {
	return &service{
		Deps:      d,
		now:       func() time.Time { return time.Now().UTC() },
		newNumber: utils.GenerateOrderNumber,
	}
}

// Checkout turns a cart into a persisted order. Stock is reserved item by
// item, payment is dispatched with no lock or transaction open, and the
// order is written only after payment succeeded. Every failure after the
// first reservation releases what was reserved.
func (s *service) Checkout(ctx context.Context, tenantID int64, req Request) (*Result, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
		zap.Int("items", len(req.Items)),
		zap.String("payment_method", req.PaymentMethod),
	)

	info, err := validate(req)
	if err == nil && !s.Payments.Supports(req.PaymentMethod) {
		err = apperr.Invalid("payment_method", "unsupported payment method %q", req.PaymentMethod)
	}
	if err != nil {
		s.finish(outcomeRejected)
		return nil, err
	}

	catalogue, err := s.loadCatalogue(ctx, tenantID, req.Items)
	if err != nil {
		s.finish(outcomeFor(err))
		return nil, err
	}

	o := s.buildOrder(tenantID, req, catalogue)
	log = log.With(zap.String("order_id", o.ID.String()))

	reserved, err := s.reserve(ctx, tenantID, req.Items)
	if err != nil {
		log.Info("stock reservation failed", zap.Error(err))
		s.release(ctx, tenantID, reserved)
		s.finish(outcomeFor(err))
		return nil, err
	}

	res := s.Payments.Dispatch(ctx, payment.Charge{
		Reference:   o.ID.String(),
		OrderNumber: o.OrderNumber,
		Amount:      o.Total,
		Currency:    o.Currency,
		Customer: payment.Customer{
			Name:  info.Name,
			Phone: info.Phone,
			Email: info.Email,
		},
	}, req.PaymentMethod)

	if payErr := res.Err(req.PaymentMethod); payErr != nil {
		log.Warn("payment dispatch failed", zap.Bool("retryable", res.Retryable), zap.Error(payErr))
		s.release(ctx, tenantID, reserved)
		s.finish(outcomeFor(payErr))
		return nil, payErr
	}

	o.PaymentStatus = order.PaymentStatus(res.PaymentStatus)
	o.PaymentURL = res.PaymentURL

	// Payment went through: the order must be written even if the client
	// has gone away.
	persistCtx := context.WithoutCancel(ctx)

	var c *contact.Contact
	err = s.Tx.RunInTx(persistCtx, func(txCtx context.Context) error {
		var err error
		c, err = s.Contacts.FindOrCreate(txCtx, tenantID, info)
		if err != nil {
			return fmt.Errorf("resolve contact: %w", err)
		}
		o.ContactID = c.ID

		if err := s.Orders.Create(txCtx, o, order.InitialStatusChange(o, checkoutActor)); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to persist order after payment", zap.Error(err))
		s.release(ctx, tenantID, reserved)
		s.finish("persist_failed")
		return nil, fmt.Errorf("persist order: %w", err)
	}

	s.finish(outcomeSuccess)
	log.Info("checkout completed",
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.Total.StringFixed(2)),
	)

	s.notify(persistCtx, o, c)

	return &Result{Order: o, Contact: c, Payment: res}, nil
}

func validate(req Request) (contact.Info, error) {
	if len(req.Items) == 0 {
		return contact.Info{}, apperr.Invalid("items", "cart is empty")
	}

	for i, it := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		if it.ProductID <= 0 {
			return contact.Info{}, apperr.Invalid(field+".id", "must be a positive product id")
		}
		if it.Quantity < 1 || it.Quantity > maxLineQuantity {
			return contact.Info{}, apperr.Invalid(field+".quantity", "must be between 1 and %d", maxLineQuantity)
		}
		if it.Price.IsNegative() {
			return contact.Info{}, apperr.Invalid(field+".price", "must not be negative")
		}
		// Unit prices are stored in cents; anything finer would make the
		// stored line total disagree with unit price times quantity.
		if !it.Price.Equal(pricing.RoundMoney(it.Price)) {
			return contact.Info{}, apperr.Invalid(field+".price", "must have at most 2 decimal places")
		}
	}

	info, err := contact.Normalize(req.CustomerInfo)
	if err != nil {
		return contact.Info{}, err
	}

	if strings.TrimSpace(req.PaymentMethod) == "" {
		return contact.Info{}, apperr.Invalid("payment_method", "is required")
	}

	return info, nil
}

func (s *service) loadCatalogue(ctx context.Context, tenantID int64, items []Item) (map[int64]*product.Product, error) {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}

	catalogue, err := s.Products.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	for i, it := range items {
		p, ok := catalogue[it.ProductID]
		if !ok {
			return nil, apperr.NotFound("product", it.ProductID)
		}
		if !p.Sellable() {
			return nil, apperr.Invalid(fmt.Sprintf("items[%d].id", i), "product %d is not available", it.ProductID)
		}
	}

	return catalogue, nil
}

func (s *service) buildOrder(tenantID int64, req Request, catalogue map[int64]*product.Product) *order.Order {
	lines := make([]pricing.Line, 0, len(req.Items))
	inputs := make([]order.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		p := catalogue[it.ProductID]
		lines = append(lines, pricing.Line{UnitPrice: it.Price, Quantity: it.Quantity})
		inputs = append(inputs, order.ItemInput{
			ProductID:   p.ID,
			ProductName: p.Name,
			SKU:         p.SKU,
			UnitPrice:   it.Price,
			Quantity:    it.Quantity,
		})
	}

	return order.NewOrder(order.Draft{
		TenantID:      tenantID,
		Items:         inputs,
		Totals:        s.Calculator.Calculate(lines, req.PromoCode),
		Currency:      s.Currency,
		PaymentMethod: req.PaymentMethod,
		Source:        req.Source,
		Notes:         utils.TrimPtr(req.Notes),
	}, s.newNumber, s.now())
}

// reserve decrements stock per cart line. On failure it returns what was
// already reserved so the caller can release it.
func (s *service) reserve(ctx context.Context, tenantID int64, items []Item) ([]reservation, error) {
	reserved := make([]reservation, 0, len(items))
	for _, it := range items {
		if _, err := s.Ledger.DecreaseStock(ctx, tenantID, it.ProductID, it.Quantity); err != nil {
			return reserved, err
		}
		reserved = append(reserved, reservation{productID: it.ProductID, quantity: it.Quantity})
	}
	return reserved, nil
}

// release gives reserved stock back, newest first. It ignores cancellation
// of ctx.
func (s *service) release(ctx context.Context, tenantID int64, reserved []reservation) {
	if len(reserved) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	log := logger.FromCtx(ctx).With(zap.String("layer", "service"), zap.String("method", "release"))

	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		if _, err := s.Ledger.IncreaseStock(ctx, tenantID, r.productID, r.quantity); err != nil {
			log.Error("failed to release reserved stock",
				zap.Int64("product_id", r.productID),
				zap.Int("quantity", r.quantity),
				zap.Error(err),
			)
			s.Metrics.Compensated("failed")
			continue
		}
		s.Metrics.Compensated("ok")
	}
}

func (s *service) notify(ctx context.Context, o *order.Order, c *contact.Contact) {
	if s.Notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	if err := s.Notifier.Send(ctx, notification.NewMessage(o, c)); err != nil {
		logger.FromCtx(ctx).Warn("order confirmation not sent",
			zap.String("layer", "service"),
			zap.String("order_number", o.OrderNumber),
			zap.Error(err),
		)
		s.Metrics.NotificationSent("failed")
		return
	}
	s.Metrics.NotificationSent("sent")
}

func (s *service) finish(outcome string) {
	s.Metrics.CheckoutFinished(outcome)
}

func outcomeFor(err error) string {
	var (
		insufficient *inventory.InsufficientStockError
		declined     *payment.DeclinedError
		unavailable  *payment.UnavailableError
	)
	switch {
	case errors.As(err, &insufficient):
		return "insufficient_stock"
	case errors.As(err, &declined):
		return "payment_declined"
	case errors.As(err, &unavailable):
		return "payment_unavailable"
	case apperr.IsNotFound(err), apperr.IsValidation(err):
		return outcomeRejected
	default:
		return "error"
	}
}
