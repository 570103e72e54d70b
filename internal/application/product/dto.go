package product

import (
	"time"

	"github.com/atelier/backend/internal/domain/product"
	"github.com/shopspring/decimal"
)

// UsageRequest is one bill-of-materials line in a request
type UsageRequest struct {
	MaterialID string          `json:"material_id" binding:"required,uuid"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	Unit       string          `json:"unit"`
}

// AdditionalCostsRequest mirrors the flat additional cost entries
type AdditionalCostsRequest struct {
	Packaging decimal.Decimal `json:"packaging"`
	Tag       decimal.Decimal `json:"tag"`
	Sticker   decimal.Decimal `json:"sticker"`
	Gift      decimal.Decimal `json:"gift"`
	Other     decimal.Decimal `json:"other"`
}

// ToDomain converts the request to the domain value
func (r AdditionalCostsRequest) ToDomain() product.AdditionalCosts {
	return product.AdditionalCosts{
		Packaging: r.Packaging,
		Tag:       r.Tag,
		Sticker:   r.Sticker,
		Gift:      r.Gift,
		Other:     r.Other,
	}
}

// CreateProductRequest is the payload for creating a product
type CreateProductRequest struct {
	Name          string                 `json:"name" binding:"required"`
	Description   string                 `json:"description"`
	Category      string                 `json:"category"`
	LaborHours    decimal.Decimal        `json:"labor_hours"`
	LaborRate     decimal.Decimal        `json:"labor_rate"`
	MarginPercent decimal.Decimal        `json:"margin_percent"`
	Usages        []UsageRequest         `json:"usages" binding:"dive"`
	Additional    AdditionalCostsRequest `json:"additional_costs"`
	ImageRef      string                 `json:"image_ref"`
}

// UpdateProductRequest is the payload for editing a product
type UpdateProductRequest struct {
	Name          string                 `json:"name" binding:"required"`
	Description   string                 `json:"description"`
	Category      string                 `json:"category"`
	LaborHours    decimal.Decimal        `json:"labor_hours"`
	LaborRate     decimal.Decimal        `json:"labor_rate"`
	MarginPercent decimal.Decimal        `json:"margin_percent"`
	Usages        []UsageRequest         `json:"usages" binding:"dive"`
	Additional    AdditionalCostsRequest `json:"additional_costs"`
	ImageRef      string                 `json:"image_ref"`
	Active        *bool                  `json:"active"`
}

// SimulateMarginsRequest carries the candidate margins to price
type SimulateMarginsRequest struct {
	TotalCost decimal.Decimal   `json:"total_cost"`
	ProductID string            `json:"product_id" binding:"omitempty,uuid"`
	Margins   []decimal.Decimal `json:"margins" binding:"required,min=1"`
}

// ListFilter constrains the product listing
type ListFilter struct {
	Search   string
	Category string
	Page     int
	PageSize int
}

// UsageResponse is one bill-of-materials line in a response
type UsageResponse struct {
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
}

// ProductResponse is the API representation of a product
type ProductResponse struct {
	ID                string                 `json:"id"`
	Name              string                 `json:"name"`
	Description       string                 `json:"description,omitempty"`
	Category          string                 `json:"category,omitempty"`
	LaborHours        decimal.Decimal        `json:"labor_hours"`
	LaborRate         decimal.Decimal        `json:"labor_rate"`
	MarginPercent     decimal.Decimal        `json:"margin_percent"`
	Usages            []UsageResponse        `json:"usages"`
	Additional        AdditionalCostsRequest `json:"additional_costs"`
	MaterialCost      decimal.Decimal        `json:"material_cost"`
	LaborCost         decimal.Decimal        `json:"labor_cost"`
	TotalCost         decimal.Decimal        `json:"total_cost"`
	SalePrice         decimal.Decimal        `json:"sale_price"`
	ProfitPerUnit     decimal.Decimal        `json:"profit_per_unit"`
	RealMarginPercent decimal.Decimal        `json:"real_margin_percent"`
	CostedAt          *time.Time             `json:"costed_at,omitempty"`
	Active            bool                   `json:"active"`
	ImageRef          string                 `json:"image_ref,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// ToProductResponse maps a domain product to its API representation
func ToProductResponse(p *product.Product) *ProductResponse {
	usages := make([]UsageResponse, 0, len(p.Usages))
	for _, u := range p.Usages {
		usages = append(usages, UsageResponse{
			MaterialID: u.MaterialID.String(),
			Quantity:   u.Quantity,
			Unit:       u.Unit,
		})
	}
	return &ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		LaborHours:    p.LaborHours,
		LaborRate:     p.LaborRate,
		MarginPercent: p.MarginPercent,
		Usages:        usages,
		Additional: AdditionalCostsRequest{
			Packaging: p.Additional.Packaging,
			Tag:       p.Additional.Tag,
			Sticker:   p.Additional.Sticker,
			Gift:      p.Additional.Gift,
			Other:     p.Additional.Other,
		},
		MaterialCost:      p.MaterialCost,
		LaborCost:         p.LaborCost,
		TotalCost:         p.TotalCost,
		SalePrice:         p.SalePrice,
		ProfitPerUnit:     p.ProfitPerUnit(),
		RealMarginPercent: p.RealMarginPercent(),
		CostedAt:          p.CostedAt,
		Active:            p.Active,
		ImageRef:          p.ImageRef,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
