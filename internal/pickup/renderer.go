package pickup

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/rentals/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const ContentType = "text/plain; charset=utf-8"

// Renderer turns an order into the text of its pickup document.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("pickup.tmpl").
		Funcs(template.FuncMap{"stamp": stamp}).
		ParseFS(templateFS, "templates/pickup.tmpl")
	if err != nil {
		return nil, fmt.Errorf("template.ParseFS: %w", err)
	}

	return &Renderer{tmpl: tmpl}, nil
}

type documentData struct {
	DocumentRef string
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	Quantity    int
	VendorID    string
	RenterID    string
	ReservedAt  *time.Time
	PickedUpAt  *time.Time
	DueAt       time.Time
	GeneratedAt time.Time
}

func (r *Renderer) Render(order domain.Order, generatedAt time.Time) ([]byte, error) {
	data := documentData{
		DocumentRef: "PU-" + order.ID.String(),
		OrderID:     order.ID,
		ProductID:   order.ProductID,
		Quantity:    order.Quantity,
		VendorID:    order.VendorID,
		RenterID:    order.RenterID,
		ReservedAt:  order.ReservedAt,
		PickedUpAt:  order.WithCustomerAt,
		DueAt:       order.DueAt,
		GeneratedAt: generatedAt,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("tmpl.Execute: %w", err)
	}

	return buf.Bytes(), nil
}

func stamp(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return "-"
		}
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
