package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NEXESMISSION/mizeni/internal/domain"
)

// Wednesday, March 13th 2024.
var reportNow = time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC)

func TestPeriodRange(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		period string
		start  time.Time
		end    time.Time
	}{
		{PeriodToday, day(13), day(14)},
		{PeriodYesterday, day(12), day(13)},
		{PeriodThisWeek, day(10), day(17)},  // week starts Sunday
		{PeriodLastWeek, day(3), day(10)},
		{PeriodThisMonth, day(1), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodLastMonth, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), day(1)},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			start, end, err := PeriodRange(tt.period, reportNow)
			require.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestPeriodRangeOnSunday(t *testing.T) {
	sunday := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	start, end, err := PeriodRange(PeriodThisWeek, sunday)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), end)
}

func TestPeriodRangeUnknown(t *testing.T) {
	_, _, err := PeriodRange("fortnight", reportNow)
	require.Error(t, err)
}

func TestFilterSalesByPeriodHalfOpen(t *testing.T) {
	start := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	sales := []domain.Sale{
		{ID: 1, CreatedAt: start},                       // inclusive start
		{ID: 2, CreatedAt: start.Add(12 * time.Hour)},
		{ID: 3, CreatedAt: end},                         // exclusive end
		{ID: 4, CreatedAt: start.Add(-time.Second)},
	}

	filtered := FilterSalesByPeriod(sales, start, end)
	require.Len(t, filtered, 2)
	assert.Equal(t, 1, filtered[0].ID)
	assert.Equal(t, 2, filtered[1].ID)
}

func TestSummarizeMarginZeroWithoutRevenue(t *testing.T) {
	summary := Summarize(nil)
	assert.Equal(t, 0.0, summary.Margin, "no NaN on empty period")
	assert.Equal(t, 0, summary.SaleCount)
}

func TestSummarize(t *testing.T) {
	summary := Summarize([]domain.Sale{
		{TotalAmount: 100, TotalCost: 60},
		{TotalAmount: 50, TotalCost: 30},
	})

	assert.Equal(t, 150.0, summary.Revenue)
	assert.Equal(t, 90.0, summary.Cost)
	assert.Equal(t, 60.0, summary.Profit)
	assert.InDelta(t, 0.4, summary.Margin, 1e-9)
	assert.Equal(t, 2, summary.SaleCount)
}

func TestTopSellingProductsRanksByQuantity(t *testing.T) {
	catalog := domain.NewCatalog([]domain.Product{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
	})
	sales := []domain.Sale{
		{Items: []domain.SaleItem{{ProductID: 1, Quantity: 3, PriceAtSale: 10, CostAtSale: 6}}},
		{Items: []domain.SaleItem{{ProductID: 2, Quantity: 5, PriceAtSale: 2, CostAtSale: 1}}},
	}

	top := TopSellingProducts(sales, catalog, 5)
	require.Len(t, top, 2)
	assert.Equal(t, "B", top[0].Name, "B sold more units than A despite lower revenue")
	assert.Equal(t, 5, top[0].Quantity)
	assert.Equal(t, 10.0, top[0].Revenue)
	assert.Equal(t, 5.0, top[0].Profit)
	assert.Equal(t, "A", top[1].Name)
	assert.Equal(t, 30.0, top[1].Revenue)
	assert.Equal(t, 12.0, top[1].Profit)
}

func TestTopSellingProductsAggregatesAcrossSales(t *testing.T) {
	catalog := domain.NewCatalog([]domain.Product{{ID: 1, Name: "A"}})
	sales := []domain.Sale{
		{Items: []domain.SaleItem{{ProductID: 1, Quantity: 2, PriceAtSale: 10, CostAtSale: 6}}},
		{Items: []domain.SaleItem{{ProductID: 1, Quantity: 3, PriceAtSale: 10, CostAtSale: 6}}},
	}

	top := TopSellingProducts(sales, catalog, 5)
	require.Len(t, top, 1)
	assert.Equal(t, 5, top[0].Quantity)
	assert.Equal(t, 50.0, top[0].Revenue)
}

func TestTopSellingProductsDeletedPlaceholder(t *testing.T) {
	sales := []domain.Sale{
		{Items: []domain.SaleItem{{ProductID: 42, Quantity: 1, PriceAtSale: 10}}},
	}

	top := TopSellingProducts(sales, domain.NewCatalog(nil), 5)
	require.Len(t, top, 1)
	assert.Equal(t, DeletedProductLabel, top[0].Name)
}

func TestTopSellingProductsTruncatesToLimit(t *testing.T) {
	catalog := domain.NewCatalog(nil)
	sales := []domain.Sale{{}}
	for i := 1; i <= 7; i++ {
		sales[0].Items = append(sales[0].Items, domain.SaleItem{ProductID: i, Quantity: i, PriceAtSale: 1})
	}

	top := TopSellingProducts(sales, catalog, 5)
	require.Len(t, top, 5)
	assert.Equal(t, 7, top[0].Quantity)
	assert.Equal(t, 3, top[4].Quantity)
}

func TestSalesReportWithoutOwnerIsEmpty(t *testing.T) {
	uc := NewReportUseCase(newFakeSaleStore(), newFakeProductStore(), testLogger())

	report, err := uc.SalesReport(context.Background(), "", PeriodToday, reportNow)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Summary.SaleCount)
	assert.Empty(t, report.TopProducts)
}

func TestSalesReportEndToEnd(t *testing.T) {
	productStore := newFakeProductStore(
		domain.Product{ID: 1, Name: "Tea"},
		domain.Product{ID: 2, Name: "Coffee"},
	)
	saleStore := newFakeSaleStore()
	saleStore.sales = []domain.Sale{
		{
			ID: 1, OwnerID: testOwner, TotalAmount: 30, TotalCost: 18,
			CreatedAt: reportNow.Add(-time.Hour),
		},
		{
			ID: 2, OwnerID: testOwner, TotalAmount: 10, TotalCost: 5,
			CreatedAt: reportNow.AddDate(0, 0, -3), // outside "today"
		},
	}
	saleStore.items[1] = []domain.SaleItem{{ProductID: 1, Quantity: 3, PriceAtSale: 10, CostAtSale: 6}}
	saleStore.items[2] = []domain.SaleItem{{ProductID: 2, Quantity: 2, PriceAtSale: 5, CostAtSale: 2.5}}

	uc := NewReportUseCase(saleStore, productStore, testLogger())
	report, err := uc.SalesReport(context.Background(), testOwner, PeriodToday, reportNow)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summary.SaleCount)
	assert.Equal(t, 30.0, report.Summary.Revenue)
	assert.Equal(t, 12.0, report.Summary.Profit)
	require.Len(t, report.TopProducts, 1)
	assert.Equal(t, "Tea", report.TopProducts[0].Name)
}

func TestClearHistory(t *testing.T) {
	saleStore := newFakeSaleStore()
	saleStore.sales = []domain.Sale{{ID: 1, OwnerID: testOwner}}
	uc := NewReportUseCase(saleStore, newFakeProductStore(), testLogger())

	require.Error(t, uc.ClearHistory(context.Background(), ""))
	require.NoError(t, uc.ClearHistory(context.Background(), testOwner))
	assert.Empty(t, saleStore.sales)
}
