package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NEXESMISSION/mizeni/internal/domain"
)

// Named reporting periods. Weeks start on Sunday.
const (
	PeriodToday     = "today"
	PeriodYesterday = "yesterday"
	PeriodThisWeek  = "this-week"
	PeriodLastWeek  = "last-week"
	PeriodThisMonth = "this-month"
	PeriodLastMonth = "last-month"
)

// DeletedProductLabel is rendered for sale items whose product no longer
// exists in the catalog.
const DeletedProductLabel = "Deleted product"

// PeriodRange resolves a named period against the given wall-clock time
// into a half-open [start, end) interval in the time's location.
func PeriodRange(period string, now time.Time) (time.Time, time.Time, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case PeriodToday:
		return midnight, midnight.AddDate(0, 0, 1), nil
	case PeriodYesterday:
		return midnight.AddDate(0, 0, -1), midnight, nil
	case PeriodThisWeek:
		weekStart := midnight.AddDate(0, 0, -int(midnight.Weekday()))
		return weekStart, weekStart.AddDate(0, 0, 7), nil
	case PeriodLastWeek:
		weekStart := midnight.AddDate(0, 0, -int(midnight.Weekday()))
		return weekStart.AddDate(0, 0, -7), weekStart, nil
	case PeriodThisMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return monthStart, monthStart.AddDate(0, 1, 0), nil
	case PeriodLastMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return monthStart.AddDate(0, -1, 0), monthStart, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown reporting period: %s", period)
	}
}

type Summary struct {
	Revenue   float64 `json:"revenue"`
	Cost      float64 `json:"cost"`
	Profit    float64 `json:"profit"`
	Margin    float64 `json:"margin"`
	SaleCount int     `json:"sale_count"`
}

type TopProduct struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
	Profit    float64 `json:"profit"`
}

type Report struct {
	Period      string       `json:"period"`
	PeriodStart time.Time    `json:"period_start"`
	PeriodEnd   time.Time    `json:"period_end"`
	Summary     Summary      `json:"summary"`
	TopProducts []TopProduct `json:"top_products"`
}

type ReportUseCase interface {
	SalesReport(ctx context.Context, ownerID, period string, now time.Time) (*Report, error)
	ListSales(ctx context.Context, ownerID string) ([]domain.Sale, error)
	ClearHistory(ctx context.Context, ownerID string) error
}

type reportUseCase struct {
	saleStore    domain.SaleStore
	productStore domain.ProductStore
	log          *logrus.Logger
}

func NewReportUseCase(saleStore domain.SaleStore, productStore domain.ProductStore, logger *logrus.Logger) ReportUseCase {
	return &reportUseCase{
		saleStore:    saleStore,
		productStore: productStore,
		log:          logger,
	}
}

func (uc *reportUseCase) ListSales(ctx context.Context, ownerID string) ([]domain.Sale, error) {
	if ownerID == "" {
		uc.log.Warn("Use Case: Sales history requested without an owner identity, returning empty list")
		return []domain.Sale{}, nil
	}
	sales, err := uc.saleStore.ListSalesByOwner(ctx, ownerID)
	if err != nil {
		uc.log.Errorf("Use Case: Store failed to list sales for owner %s: %v", ownerID, err)
		return nil, fmt.Errorf("could not retrieve sales history: %w", err)
	}
	return sales, nil
}

func (uc *reportUseCase) ClearHistory(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("authenticated user required")
	}
	uc.log.Infof("Use Case: Clearing sales history for owner %s", ownerID)
	if err := uc.saleStore.DeleteSalesByOwner(ctx, ownerID); err != nil {
		uc.log.Errorf("Use Case: Store failed to clear sales history for owner %s: %v", ownerID, err)
		return fmt.Errorf("could not clear sales history: %w", err)
	}
	return nil
}

func (uc *reportUseCase) SalesReport(ctx context.Context, ownerID, period string, now time.Time) (*Report, error) {
	start, end, err := PeriodRange(period, now)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Period:      period,
		PeriodStart: start,
		PeriodEnd:   end,
		TopProducts: []TopProduct{},
	}

	if ownerID == "" {
		uc.log.Warn("Use Case: Report requested without an owner identity, returning empty report")
		return report, nil
	}

	sales, err := uc.saleStore.ListSalesByOwner(ctx, ownerID)
	if err != nil {
		uc.log.Errorf("Use Case: Store failed to list sales for owner %s: %v", ownerID, err)
		return nil, fmt.Errorf("could not retrieve sales for report: %w", err)
	}

	products, err := uc.productStore.ListProductsByOwner(ctx, ownerID)
	if err != nil {
		// Product names are cosmetic for the report; degrade to
		// placeholder labels rather than failing the whole view.
		uc.log.Warnf("Use Case: Could not load catalog for report name lookups, using placeholders: %v", err)
		products = nil
	}
	catalog := domain.NewCatalog(products)

	filtered := FilterSalesByPeriod(sales, start, end)
	report.Summary = Summarize(filtered)
	report.TopProducts = TopSellingProducts(filtered, catalog, 5)

	uc.log.Infof("Use Case: Report for owner %s period '%s': %d sales, revenue %.2f", ownerID, period, report.Summary.SaleCount, report.Summary.Revenue)
	return report, nil
}

// FilterSalesByPeriod keeps sales whose creation timestamp falls inside
// the half-open interval [start, end).
func FilterSalesByPeriod(sales []domain.Sale, start, end time.Time) []domain.Sale {
	filtered := []domain.Sale{}
	for _, sale := range sales {
		if !sale.CreatedAt.Before(start) && sale.CreatedAt.Before(end) {
			filtered = append(filtered, sale)
		}
	}
	return filtered
}

// Summarize computes the financial totals over the given sales. Margin is
// zero, not NaN, when there is no revenue.
func Summarize(sales []domain.Sale) Summary {
	summary := Summary{SaleCount: len(sales)}
	for _, sale := range sales {
		summary.Revenue += sale.TotalAmount
		summary.Cost += sale.TotalCost
	}
	summary.Profit = summary.Revenue - summary.Cost
	if summary.Revenue > 0 {
		summary.Margin = summary.Profit / summary.Revenue
	}
	return summary
}

// TopSellingProducts aggregates sale items by product, ranks by quantity
// sold descending, and truncates to limit. Products missing from the
// catalog get the deleted-product placeholder label.
func TopSellingProducts(sales []domain.Sale, catalog *domain.Catalog, limit int) []TopProduct {
	byProduct := make(map[int]*TopProduct)
	order := []int{}

	for _, sale := range sales {
		for _, item := range sale.Items {
			agg, ok := byProduct[item.ProductID]
			if !ok {
				agg = &TopProduct{ProductID: item.ProductID}
				byProduct[item.ProductID] = agg
				order = append(order, item.ProductID)
			}
			revenue := float64(item.Quantity) * item.PriceAtSale
			agg.Quantity += item.Quantity
			agg.Revenue += revenue
			agg.Profit += revenue - float64(item.Quantity)*item.CostAtSale
		}
	}

	ranked := make([]TopProduct, 0, len(order))
	for _, productID := range order {
		agg := byProduct[productID]
		if product := catalog.Get(productID); product != nil {
			agg.Name = product.Name
		} else {
			agg.Name = DeletedProductLabel
		}
		ranked = append(ranked, *agg)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].Revenue > ranked[j].Revenue
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
