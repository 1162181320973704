// Package store owns the mock shop: the product catalog, per-user carts,
// the scripted pentest order workflow, and AI-generated digital assets.
// Nothing in it performs real security testing; every assessment artifact
// is fabricated.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"ckryptbit/internal/domain"
	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/repository"
)

// Document keys in the KV store.
const (
	keyProducts = "products"
	keyOrders   = "pentest_orders"
	keyAssets   = "digital_assets"
)

// pentestSteps is the scripted progression an order walks through after
// target info is in, ending in report generation.
var pentestSteps = []models.PentestStatus{
	models.StatusScanningPerimeter,
	models.StatusAnalyzingVulnerabilities,
	models.StatusSimulatingExploits,
	models.StatusCompilingResults,
}

// TextGenerator produces digital-asset content. The hosted Gemini adapter
// provides it.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Service holds the catalog, carts, orders, and assets. Carts live only in
// memory; everything else persists through the KV store.
type Service struct {
	logger    *slog.Logger
	store     repository.KVStore
	textGen   TextGenerator
	stepDelay time.Duration

	mu       sync.Mutex
	products []models.Product
	orders   []models.PentestOrder
	assets   []models.AcquiredDigitalAsset
	carts    map[string][]models.CartItem
}

// NewService loads persisted state and seeds the catalog on first run.
func NewService(ctx context.Context, logger *slog.Logger, kv repository.KVStore, textGen TextGenerator, stepDelay time.Duration) (*Service, error) {
	s := &Service{
		logger:    logger,
		store:     kv,
		textGen:   textGen,
		stepDelay: stepDelay,
		carts:     make(map[string][]models.CartItem),
	}

	if err := loadDocument(ctx, kv, keyProducts, &s.products); err != nil {
		return nil, err
	}
	if err := loadDocument(ctx, kv, keyOrders, &s.orders); err != nil {
		return nil, err
	}
	if err := loadDocument(ctx, kv, keyAssets, &s.assets); err != nil {
		return nil, err
	}

	if s.products == nil {
		s.products = seedProducts()
		if err := kv.Put(ctx, keyProducts, s.products); err != nil {
			return nil, fmt.Errorf("seed product catalog: %w", err)
		}
		logger.Info("product catalog seeded", "count", len(s.products))
	}
	return s, nil
}

func loadDocument[T any](ctx context.Context, kv repository.KVStore, key string, out *[]T) error {
	doc, err := kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if doc == nil {
		return nil
	}
	if err := json.Unmarshal(doc, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Login is the identity stub: any non-empty username is accepted, no
// credentials exist, and "admin" or "root" get the admin flag. The ID is
// derived from the username so repeat logins map to the same records.
func (s *Service) Login(username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if err := validation.Validate(username, validation.Required, validation.Length(1, 64)); err != nil {
		return nil, &domain.ValidationError{Message: "username: " + err.Error()}
	}
	lower := strings.ToLower(username)
	return &models.User{
		ID:       "user_" + lower,
		Username: username,
		IsAdmin:  lower == "admin" || lower == "root",
	}, nil
}

// Products returns the catalog.
func (s *Service) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Product returns one catalog entry.
func (s *Service) Product(id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i]
			return &p, nil
		}
	}
	return nil, &domain.NotFoundError{Message: "product not found: " + id}
}

func validateProduct(p *models.Product) error {
	err := validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Price, validation.Min(0.0)),
		validation.Field(&p.ProductType, validation.Required, validation.In(models.ProductService, models.ProductDigital)),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	if p.ProductType == models.ProductDigital {
		if p.DigitalAssetConfig == nil || p.DigitalAssetConfig.GenerationPrompt == "" {
			return &domain.ValidationError{Message: "digital products need a generation prompt"}
		}
	}
	return nil
}

// CreateProduct adds a catalog entry (admin operation).
func (s *Service) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	if err := validateProduct(&p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = "prod_" + uuid.NewString()
	}

	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.mu.Unlock()
			return nil, &domain.ConflictError{Message: "product already exists: " + p.ID}
		}
	}
	s.products = append(s.products, p)
	s.mu.Unlock()

	s.persistProducts(ctx)
	return &p, nil
}

// UpdateProduct replaces an existing catalog entry (admin operation).
func (s *Service) UpdateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	if err := validateProduct(&p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	found := false
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return nil, &domain.NotFoundError{Message: "product not found: " + p.ID}
	}

	s.persistProducts(ctx)
	return &p, nil
}

// DeleteProduct removes a catalog entry (admin operation).
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	found := false
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return &domain.NotFoundError{Message: "product not found: " + id}
	}

	s.persistProducts(ctx)
	return nil
}

// Cart returns the user's cart.
func (s *Service) Cart(userID string) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartItem, len(s.carts[userID]))
	copy(out, s.carts[userID])
	return out
}

// AddToCart adds quantity of a product, merging with an existing line.
func (s *Service) AddToCart(userID, productID string, quantity int) error {
	if quantity <= 0 {
		return &domain.ValidationError{Message: "quantity must be positive"}
	}
	product, err := s.Product(productID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.carts[userID]
	for i := range cart {
		if cart[i].ProductID == productID {
			cart[i].Quantity += quantity
			return nil
		}
	}
	s.carts[userID] = append(cart, models.CartItem{
		ProductID:   product.ID,
		Name:        product.Name,
		Price:       product.Price,
		Quantity:    quantity,
		ProductType: product.ProductType,
	})
	return nil
}

// RemoveFromCart drops a product line entirely.
func (s *Service) RemoveFromCart(userID, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.carts[userID]
	for i := range cart {
		if cart[i].ProductID == productID {
			s.carts[userID] = append(cart[:i], cart[i+1:]...)
			return
		}
	}
}

// CartTotal sums the cart's line prices.
func (s *Service) CartTotal(userID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, item := range s.carts[userID] {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// CheckoutResult is what an acquisition produced.
type CheckoutResult struct {
	Orders []models.PentestOrder         `json:"orders"`
	Assets []models.AcquiredDigitalAsset `json:"assets"`
}

// Checkout converts the cart into pentest orders (service products) and
// acquired digital assets (digital products). Orders not needing target
// info start processing immediately; each asset gets its own independent
// generation task whose failure touches only that asset.
func (s *Service) Checkout(ctx context.Context, user models.User) (*CheckoutResult, error) {
	s.mu.Lock()
	cart := s.carts[user.ID]
	if len(cart) == 0 {
		s.mu.Unlock()
		return nil, &domain.ValidationError{Message: "cart is empty"}
	}

	now := time.Now().UTC()
	result := &CheckoutResult{}
	var startProcessing []string

	for _, item := range cart {
		product := s.productLocked(item.ProductID)
		if product == nil {
			s.logger.Warn("cart item vanished from catalog", "product_id", item.ProductID)
			continue
		}

		for i := 0; i < item.Quantity; i++ {
			switch {
			case product.ProductType == models.ProductService:
				order := models.PentestOrder{
					ID:          "p_ord_" + uuid.NewString(),
					UserID:      user.ID,
					Username:    user.Username,
					ProductID:   product.ID,
					ProductName: product.Name,
					OrderDate:   now,
					Status:      models.StatusAwaitingTargetInfo,
				}
				if product.ServiceConfig == nil || !product.ServiceConfig.RequiresTargetInfo {
					order.Status = models.StatusProcessingRequest
					order.TargetInfo = &models.PentestTargetInfo{}
					startProcessing = append(startProcessing, order.ID)
				}
				s.orders = append(s.orders, order)
				result.Orders = append(result.Orders, order)

			case product.DigitalAssetConfig != nil:
				asset := models.AcquiredDigitalAsset{
					ID:               "da_" + uuid.NewString(),
					UserID:           user.ID,
					Username:         user.Username,
					ProductID:        product.ID,
					ProductName:      product.Name,
					PurchaseDate:     now,
					ContentFormat:    product.DigitalAssetConfig.OutputFormat,
					OriginalPrompt:   product.DigitalAssetConfig.GenerationPrompt,
					GenerationStatus: models.AssetPending,
				}
				s.assets = append(s.assets, asset)
				result.Assets = append(result.Assets, asset)
			}
		}
	}
	delete(s.carts, user.ID)
	s.mu.Unlock()

	s.persistOrders(ctx)
	s.persistAssets(ctx)

	for _, orderID := range startProcessing {
		go s.runPentest(orderID)
	}
	for _, asset := range result.Assets {
		go s.generateAsset(asset.ID, asset.OriginalPrompt)
	}
	return result, nil
}

func (s *Service) productLocked(id string) *models.Product {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i]
		}
	}
	return nil
}

// SubmitTargetInfo attaches the assessment scope and starts the scripted
// progression.
func (s *Service) SubmitTargetInfo(ctx context.Context, orderID, userID string, info models.PentestTargetInfo) error {
	if info.TargetURL == "" && info.TargetIP == "" {
		return &domain.ValidationError{Message: "a target URL or IP is required"}
	}

	err := s.updateOrder(ctx, orderID, func(o *models.PentestOrder) error {
		if o.UserID != userID {
			return &domain.ForbiddenError{Message: "order belongs to another user"}
		}
		if o.Status != models.StatusAwaitingTargetInfo {
			return &domain.ConflictError{Message: "order is not awaiting target info"}
		}
		o.TargetInfo = &info
		o.Status = models.StatusProcessingRequest
		return nil
	})
	if err != nil {
		return err
	}

	go s.runPentest(orderID)
	return nil
}

// runPentest walks an order through the scripted statuses and attaches
// the fabricated report.
func (s *Service) runPentest(orderID string) {
	ctx := context.Background()
	for _, status := range pentestSteps {
		time.Sleep(s.stepDelay)
		st := status
		if err := s.updateOrder(ctx, orderID, func(o *models.PentestOrder) error {
			o.Status = st
			return nil
		}); err != nil {
			s.logger.Error("pentest progression aborted", "order_id", orderID, "error", err)
			return
		}
	}

	time.Sleep(s.stepDelay)
	err := s.updateOrder(ctx, orderID, func(o *models.PentestOrder) error {
		if o.TargetInfo == nil {
			o.Status = models.StatusCompleted
			return nil
		}
		o.Report = GenerateReport(*o.TargetInfo, o.ProductName, time.Now().UTC())
		o.Status = models.StatusReportReady
		return nil
	})
	if err != nil {
		s.logger.Error("report generation failed", "order_id", orderID, "error", err)
	}
}

// generateAsset produces one digital asset's content. Failures mark only
// this asset.
func (s *Service) generateAsset(assetID, prompt string) {
	ctx := context.Background()
	content, err := s.textGen.GenerateText(ctx, prompt)

	s.mu.Lock()
	for i := range s.assets {
		if s.assets[i].ID != assetID {
			continue
		}
		if err != nil {
			s.assets[i].GenerationStatus = models.AssetFailed
			s.assets[i].GenerationError = err.Error()
		} else {
			s.assets[i].GenerationStatus = models.AssetCompleted
			s.assets[i].GeneratedContent = content
		}
		break
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("digital asset generation failed", "asset_id", assetID, "error", err)
	} else {
		s.logger.Info("digital asset generated", "asset_id", assetID, "bytes", len(content))
	}
	s.persistAssets(ctx)
}

// OrdersFor returns the user's orders, newest last.
func (s *Service) OrdersFor(userID string) []models.PentestOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PentestOrder
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out
}

// AllOrders returns every order (admin operation).
func (s *Service) AllOrders() []models.PentestOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PentestOrder, len(s.orders))
	copy(out, s.orders)
	return out
}

// AssetsFor returns the user's acquired digital assets.
func (s *Service) AssetsFor(userID string) []models.AcquiredDigitalAsset {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AcquiredDigitalAsset
	for _, a := range s.assets {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}

// Order returns one order by id.
func (s *Service) Order(orderID string) (*models.PentestOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			o := s.orders[i]
			return &o, nil
		}
	}
	return nil, &domain.NotFoundError{Message: "order not found: " + orderID}
}

// AdminUpdateStatus overrides an order's status, stamping the update time
// and resetting the customer-notified flag.
func (s *Service) AdminUpdateStatus(ctx context.Context, orderID string, status models.PentestStatus, adminNotes string) error {
	if !validStatus(status) {
		return &domain.ValidationError{Message: "unknown status: " + string(status)}
	}
	return s.updateOrder(ctx, orderID, func(o *models.PentestOrder) error {
		o.Status = status
		o.LastAdminUpdateAt = time.Now().UTC().Format(time.RFC3339)
		o.CustomerNotified = false
		if adminNotes != "" {
			o.AdminNotes = adminNotes
		}
		return nil
	})
}

// NotifyCustomer marks the last admin update as communicated.
func (s *Service) NotifyCustomer(ctx context.Context, orderID string) error {
	return s.updateOrder(ctx, orderID, func(o *models.PentestOrder) error {
		o.CustomerNotified = true
		o.LastNotifiedAt = time.Now().UTC().Format(time.RFC3339)
		return nil
	})
}

// AcknowledgeUpdate lets the customer clear the pending-update marker.
func (s *Service) AcknowledgeUpdate(ctx context.Context, orderID, userID string) error {
	return s.updateOrder(ctx, orderID, func(o *models.PentestOrder) error {
		if o.UserID != userID {
			return &domain.ForbiddenError{Message: "order belongs to another user"}
		}
		if o.LastAdminUpdateAt == "" {
			return nil
		}
		o.CustomerNotified = true
		o.LastNotifiedAt = o.LastAdminUpdateAt
		return nil
	})
}

// SubmitFeedback records a rating on a delivered report.
func (s *Service) SubmitFeedback(ctx context.Context, orderID, userID string, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return &domain.ValidationError{Message: "rating must be between 1 and 5"}
	}
	return s.updateOrder(ctx, orderID, func(o *models.PentestOrder) error {
		if o.UserID != userID {
			return &domain.ForbiddenError{Message: "order belongs to another user"}
		}
		if o.Report == nil {
			return &domain.ConflictError{Message: "order has no report to review"}
		}
		o.Feedback = &models.CustomerFeedback{
			Rating:    rating,
			Comment:   comment,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		return nil
	})
}

// ReportText renders the plain-text report deliverable.
func (s *Service) ReportText(orderID, userID string) (filename, content string, err error) {
	order, err := s.Order(orderID)
	if err != nil {
		return "", "", err
	}
	if order.UserID != userID {
		return "", "", &domain.ForbiddenError{Message: "order belongs to another user"}
	}
	if order.Report == nil {
		return "", "", &domain.NotFoundError{Message: "report not ready for order: " + orderID}
	}
	return ReportFileName(order), RenderReportText(order.Report, order), nil
}

// updateOrder applies fn to the order under the lock, then persists. A
// non-nil error from fn leaves the order untouched.
func (s *Service) updateOrder(ctx context.Context, orderID string, fn func(*models.PentestOrder) error) error {
	s.mu.Lock()
	idx := -1
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return &domain.NotFoundError{Message: "order not found: " + orderID}
	}
	working := s.orders[idx]
	if err := fn(&working); err != nil {
		s.mu.Unlock()
		return err
	}
	s.orders[idx] = working
	s.mu.Unlock()

	s.persistOrders(ctx)
	return nil
}

func validStatus(status models.PentestStatus) bool {
	switch status {
	case models.StatusAwaitingTargetInfo, models.StatusProcessingRequest,
		models.StatusScanningPerimeter, models.StatusAnalyzingVulnerabilities,
		models.StatusSimulatingExploits, models.StatusCompilingResults,
		models.StatusReportReady, models.StatusCompleted:
		return true
	}
	return false
}

func (s *Service) persistProducts(ctx context.Context) {
	s.mu.Lock()
	snapshot := make([]models.Product, len(s.products))
	copy(snapshot, s.products)
	s.mu.Unlock()
	if err := s.store.Put(ctx, keyProducts, snapshot); err != nil {
		s.logger.Error("failed to persist products", "error", err)
	}
}

func (s *Service) persistOrders(ctx context.Context) {
	s.mu.Lock()
	snapshot := make([]models.PentestOrder, len(s.orders))
	copy(snapshot, s.orders)
	s.mu.Unlock()
	if err := s.store.Put(ctx, keyOrders, snapshot); err != nil {
		s.logger.Error("failed to persist orders", "error", err)
	}
}

func (s *Service) persistAssets(ctx context.Context) {
	s.mu.Lock()
	snapshot := make([]models.AcquiredDigitalAsset, len(s.assets))
	copy(snapshot, s.assets)
	s.mu.Unlock()
	if err := s.store.Put(ctx, keyAssets, snapshot); err != nil {
		s.logger.Error("failed to persist assets", "error", err)
	}
}
