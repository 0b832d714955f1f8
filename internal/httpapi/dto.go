package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/nikolayk812/rentals/internal/returns"
	"github.com/samber/lo"
)

const maxBodyBytes = 1 << 20

type quantityRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

type registerProductRequest struct {
	Name          string `json:"name"`
	TotalQuantity int    `json:"totalQuantity"`
}

type createOrderRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	RenterID  string    `json:"renterId"`
	DueAt     time.Time `json:"dueAt"`
}

type orderRequest struct {
	OrderID uuid.UUID `json:"orderId"`
}

type returnRequest struct {
	OrderID    uuid.UUID  `json:"orderId"`
	Condition  string     `json:"condition"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
}

type productResponse struct {
	ID               uuid.UUID `json:"id"`
	VendorID         string    `json:"vendorId"`
	Name             string    `json:"name"`
	TotalQuantity    int       `json:"totalQuantity"`
	ReservedQuantity int       `json:"reservedQuantity"`
	Available        int       `json:"available"`
	Version          int64     `json:"version"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:               p.ID,
		VendorID:         p.VendorID,
		Name:             p.Name,
		TotalQuantity:    p.TotalQuantity,
		ReservedQuantity: p.ReservedQuantity,
		Available:        p.Available(),
		Version:          p.Version,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type moneyResponse struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func toMoneyResponse(m domain.Money) moneyResponse {
	return moneyResponse{Amount: m.Amount.StringFixed(2), Currency: m.Currency.String()}
}

type orderResponse struct {
	ID              uuid.UUID      `json:"id"`
	ProductID       uuid.UUID      `json:"productId"`
	VendorID        string         `json:"vendorId"`
	RenterID        string         `json:"renterId"`
	Quantity        int            `json:"quantity"`
	Status          string         `json:"status"`
	DueAt           time.Time      `json:"dueAt"`
	ReturnCondition *string        `json:"returnCondition,omitempty"`
	LateFee         *moneyResponse `json:"lateFee,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	ReservedAt      *time.Time     `json:"reservedAt,omitempty"`
	WithCustomerAt  *time.Time     `json:"withCustomerAt,omitempty"`
	ReturnedAt      *time.Time     `json:"returnedAt,omitempty"`
	ClosedAt        *time.Time     `json:"closedAt,omitempty"`
	CancelledAt     *time.Time     `json:"cancelledAt,omitempty"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func toOrderResponse(o domain.Order) orderResponse {
	resp := orderResponse{
		ID:             o.ID,
		ProductID:      o.ProductID,
		VendorID:       o.VendorID,
		RenterID:       o.RenterID,
		Quantity:       o.Quantity,
		Status:         string(o.Status),
		DueAt:          o.DueAt,
		CreatedAt:      o.CreatedAt,
		ReservedAt:     o.ReservedAt,
		WithCustomerAt: o.WithCustomerAt,
		ReturnedAt:     o.ReturnedAt,
		ClosedAt:       o.ClosedAt,
		CancelledAt:    o.CancelledAt,
		UpdatedAt:      o.UpdatedAt,
	}

	if o.ReturnCondition != nil {
		resp.ReturnCondition = lo.ToPtr(string(*o.ReturnCondition))
	}
	if o.LateFee != nil {
		resp.LateFee = lo.ToPtr(toMoneyResponse(*o.LateFee))
	}

	return resp
}

type documentResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"orderId"`
	ContentType string    `json:"contentType"`
	Checksum    string    `json:"checksum"`
	Size        int       `json:"size"`
	GeneratedAt time.Time `json:"generatedAt"`
}

func toDocumentResponse(d domain.PickupDocument) documentResponse {
	return documentResponse{
		ID:          d.ID,
		OrderID:     d.OrderID,
		ContentType: d.ContentType,
		Checksum:    d.Checksum,
		Size:        len(d.Content),
		GeneratedAt: d.GeneratedAt,
	}
}

type withCustomerResponse struct {
	Order    orderResponse    `json:"order"`
	Document documentResponse `json:"document"`
}

type eventResponse struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toEventResponse(e domain.OrderEvent) eventResponse {
	return eventResponse{
		ID:        e.ID,
		Type:      string(e.Type),
		Payload:   e.Payload,
		CreatedAt: e.CreatedAt,
	}
}

type feeQuoteResponse struct {
	OrderID     uuid.UUID     `json:"orderId"`
	Status      string        `json:"status"`
	Fee         moneyResponse `json:"fee"`
	OverdueDays int           `json:"overdueDays"`
	AsOf        time.Time     `json:"asOf"`
	Final       bool          `json:"final"`
}

func toFeeQuoteResponse(q returns.FeeQuote) feeQuoteResponse {
	return feeQuoteResponse{
		OrderID:     q.OrderID,
		Status:      string(q.Status),
		Fee:         toMoneyResponse(q.Fee),
		OverdueDays: q.OverdueDays,
		AsOf:        q.AsOf,
		Final:       q.Final,
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w: %w", domain.ErrInvalidArgument, err)
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
