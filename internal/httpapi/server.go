// Package httpapi exposes the rental engine to vendors over JSON/HTTP.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/nikolayk812/rentals/internal/lifecycle"
	"github.com/nikolayk812/rentals/internal/returns"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type Ledger interface {
	Reserve(ctx context.Context, vc domain.VendorCapability, productID uuid.UUID, quantity int) (domain.Product, error)
	Release(ctx context.Context, vc domain.VendorCapability, productID uuid.UUID, quantity int) (domain.Product, error)
	Get(ctx context.Context, vc domain.VendorCapability, productID uuid.UUID) (domain.Product, error)
	Register(ctx context.Context, vc domain.VendorCapability, name string, totalQuantity int) (domain.Product, error)
}

type Lifecycle interface {
	Create(ctx context.Context, vc domain.VendorCapability, req lifecycle.CreateOrder) (domain.Order, error)
	MarkWithCustomer(ctx context.Context, vc domain.VendorCapability, orderID uuid.UUID) (domain.Order, domain.PickupDocument, error)
	Cancel(ctx context.Context, vc domain.VendorCapability, orderID uuid.UUID) (domain.Order, error)
	Get(ctx context.Context, vc domain.VendorCapability, orderID uuid.UUID) (domain.Order, error)
	Search(ctx context.Context, vc domain.VendorCapability, filter domain.OrderFilter) ([]domain.Order, error)
	Events(ctx context.Context, vc domain.VendorCapability, orderID uuid.UUID) ([]domain.OrderEvent, error)
	PickupDocument(ctx context.Context, vc domain.VendorCapability, orderID uuid.UUID) (domain.PickupDocument, error)
}

type Returns interface {
	Process(ctx context.Context, vc domain.VendorCapability, req returns.ReturnRequest) (domain.Order, error)
	LateFee(ctx context.Context, vc domain.VendorCapability, orderID uuid.UUID) (returns.FeeQuote, error)
}

type Server struct {
	ledger    Ledger
	lifecycle Lifecycle
	returns   Returns
	auth      Authenticator
	logger    *zap.Logger
}

func NewServer(ledger Ledger, lifecycle Lifecycle, returns Returns, auth Authenticator, logger *zap.Logger) *Server {
	return &Server{
		ledger:    ledger,
		lifecycle: lifecycle,
		returns:   returns,
		auth:      auth,
		logger:    logger.Named("http"),
	}
}

// Handler returns the routed API with request logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.healthz)

	mux.HandleFunc("POST /inventory/reserve", s.vendorOnly(s.reserve))
	mux.HandleFunc("POST /inventory/release", s.vendorOnly(s.release))

	mux.HandleFunc("POST /products", s.vendorOnly(s.registerProduct))
	mux.HandleFunc("GET /products/{productId}", s.vendorOnly(s.getProduct))

	mux.HandleFunc("POST /orders", s.vendorOnly(s.createOrder))
	mux.HandleFunc("GET /orders", s.vendorOnly(s.searchOrders))
	mux.HandleFunc("GET /orders/{orderId}", s.vendorOnly(s.getOrder))
	mux.HandleFunc("POST /orders/{orderId}/cancel", s.vendorOnly(s.cancelOrder))
	mux.HandleFunc("GET /orders/{orderId}/events", s.vendorOnly(s.orderEvents))

	mux.HandleFunc("POST /pickups/generate-document", s.vendorOnly(s.generateDocument))
	mux.HandleFunc("PATCH /pickups/{orderId}/with-customer", s.vendorOnly(s.markWithCustomer))
	mux.HandleFunc("GET /pickups/{orderId}/document", s.vendorOnly(s.getDocument))

	mux.HandleFunc("POST /returns/process", s.vendorOnly(s.processReturn))
	mux.HandleFunc("GET /returns/{orderId}/late-fee", s.vendorOnly(s.lateFee))

	return s.recoverer(s.accessLog(mux))
}

type vendorHandler func(w http.ResponseWriter, r *http.Request, vc domain.VendorCapability)

// vendorOnly authenticates the caller and admits vendors only.
func (s *Server) vendorOnly(next vendorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := s.auth.Authenticate(r)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("auth.Authenticate: %w", err))
			return
		}

		vc, err := domain.NewVendorCapability(principal)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("domain.NewVendorCapability: %w", err))
			return
		}

		next(w, r, vc)
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) reserve(w http.ResponseWriter, r *http.Request, vc domain.VendorCapability) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	product, err := s.ledger.Reserve(r.Context(), vc, req.ProductID, req.Quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (s *Server) release(w http.ResponseWriter, r *http.Request, vc domain.VendorCapability) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	product, err := s.ledger.Release(r.Context(), vc, req.ProductID, req.Quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (s *Server) registerProduct(w http.ResponseWriter, r *http.Request, vc domain.VendorCapability) {
	var req registerProductRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	product, err := s.ledger.Register(r.Context(), vc, req.Name, req.TotalQuantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request, vc domain.VendorCapability) {
	productID, err := pathUUID(r, "productId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	product, err := s.ledger.Get(r.Context(), vc, productID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request, vc domain.VendorCapability) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	order, err := s.lifecycle.Create(r.Context(), vc, lifecycle.CreateOrder{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		RenterID:  req.RenterID,
		DueAt:     req.DueAt,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request, vc domain.VendorCapability) {
	orderID, err := pathUUID(r, "orderId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	order, err := s.lifecycle.Get(r.Context(), vc, orderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (s *Server) searchOrders(w http.ResponseWriter, r *http.Request, vc domain.VendorCapability) {
	filter, err := parseOrderFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	orders, err := s.lifecycle.Search(r.Context(), vc, filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(orders, func(o domain.Order, _ int) orderResponse {
		return toOrderResponse(o)
	}))
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request, vc domain.VendorCapability) {
	orderID, err := pathUUID(r, "orderId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	order, err := s.lifecycle.Cancel(r.Context(), vc, orderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (s *Server) orderEvents(w http.ResponseWriter, r *http.Request, vc domain.VendorCapability) {
	orderID, err := pathUUID(r, "orderId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	events, err := s.lifecycle.Events(r.Context(), vc, orderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(events, func(e domain.OrderEvent, _ int) eventResponse {
		return toEventResponse(e)
	}))
}

// generateDocument hands the goods over and answers with the document itself.
func (s *Server) generateDocument(w http.ResponseWriter, r *http.Request, vc domain.VendorCapability) {
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	_, doc, err := s.lifecycle.MarkWithCustomer(r.Context(), vc, req.OrderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeDocument(w, doc)
}

func (s *Server) markWithCustomer(w http.ResponseWriter, r *http.Request, vc domain.VendorCapability) {
	orderID, err := pathUUID(r, "orderId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	order, doc, err := s.lifecycle.MarkWithCustomer(r.Context(), vc, orderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, withCustomerResponse{
		Order:    toOrderResponse(order),
		Document: toDocumentResponse(doc),
	})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request, vc domain.VendorCapability) {
	orderID, err := pathUUID(r, "orderId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.lifecycle.PickupDocument(r.Context(), vc, orderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeDocument(w, doc)
}

func (s *Server) processReturn(w http.ResponseWriter, r *http.Request, vc domain.VendorCapability) {
	var req returnRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	order, err := s.returns.Process(r.Context(), vc, returns.ReturnRequest{
		OrderID:    req.OrderID,
		Condition:  req.Condition,
		ReturnedAt: req.ReturnedAt,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (s *Server) lateFee(w http.ResponseWriter, r *http.Request, vc domain.VendorCapability) {
	orderID, err := pathUUID(r, "orderId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	quote, err := s.returns.LateFee(r.Context(), vc, orderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toFeeQuoteResponse(quote))
}

func writeDocument(w http.ResponseWriter, doc domain.PickupDocument) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Content)))
	w.Header().Set("X-Document-Id", doc.ID.String())
	w.Header().Set("X-Document-Checksum", doc.Checksum)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="pickup-%s.txt"`, doc.OrderID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Content)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w: %w", name, domain.ErrInvalidArgument, err)
	}
	return id, nil
}

// parseOrderFilter reads repeated query parameters: productId, renterId,
// status, and RFC 3339 bounds dueAfter, dueBefore, createdAfter, createdBefore.
func parseOrderFilter(r *http.Request) (domain.OrderFilter, error) {
	q := r.URL.Query()

	var filter domain.OrderFilter

	for _, raw := range q["productId"] {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, fmt.Errorf("productId: %w: %w", domain.ErrInvalidArgument, err)
		}
		filter.ProductIDs = append(filter.ProductIDs, id)
	}

	for _, raw := range q["status"] {
		status, err := domain.ToOrderStatus(raw)
		if err != nil {
			return filter, fmt.Errorf("status: %w: %w", domain.ErrInvalidArgument, err)
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	filter.RenterIDs = q["renterId"]

	var err error

	if filter.DueAt, err = parseTimeRange(q.Get("dueAfter"), q.Get("dueBefore")); err != nil {
		return filter, fmt.Errorf("due: %w", err)
	}
	if filter.CreatedAt, err = parseTimeRange(q.Get("createdAfter"), q.Get("createdBefore")); err != nil {
		return filter, fmt.Errorf("created: %w", err)
	}

	return filter, nil
}

func parseTimeRange(after, before string) (*domain.TimeRange, error) {
	if after == "" && before == "" {
		return nil, nil
	}

	var tr domain.TimeRange

	for _, b := range []struct {
		raw string
		dst **time.Time
	}{{after, &tr.After}, {before, &tr.Before}} {
		if b.raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, b.raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
		}
		*b.dst = &t
	}

	return &tr, nil
}
