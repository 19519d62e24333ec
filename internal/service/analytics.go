package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/domain"
	"github.com/kasirpos/kasir/internal/repository"
	"github.com/montanaflynn/stats"
)

const (
	DefaultTopProducts    = 5
	DefaultPredictionDays = 7
	MaxPredictionDays     = 90
)

// ProductSales aggregates line items of one product
type ProductSales struct {
	ProductID     int64  `json:"product_id,string"`
	ProductName   string `json:"product_name"`
	TotalQuantity int    `json:"total_quantity"`
	TotalRevenue  int64  `json:"total_revenue"`
}

type RevenuePoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

type RevenuePrediction struct {
	History     []RevenuePoint `json:"history"`
	Predictions []RevenuePoint `json:"predictions"`
	Slope       float64        `json:"slope"`
	Intercept   float64        `json:"intercept"`
}

type SalesSummary struct {
	TransactionCount int     `json:"transaction_count"`
	ItemsSold        int     `json:"items_sold"`
	TotalRevenue     int64   `json:"total_revenue"`
	AverageValue     float64 `json:"average_value"`
	MedianValue      float64 `json:"median_value"`
}

// AnalyticsService is read-only over the ledger
type AnalyticsService struct {
	transactions repository.TransactionRepository
	loc          *time.Location
}

func (s *AnalyticsService) history(ctx context.Context, owner string) ([]*domain.Transaction, error) {
	txs, err := s.transactions.List(ctx, owner, repository.TransactionFilter{})
	if err != nil {
		return nil, storeError(err, "Failed to fetch transactions")
	}
	return txs, nil
}

// TopProducts ranks products by quantity sold. Ties keep the order in which
// products first appear in the ledger. n <= 0 means DefaultTopProducts.
func (s *AnalyticsService) TopProducts(ctx context.Context, owner string, n int) ([]ProductSales, error) {
	if n <= 0 {
		n = DefaultTopProducts
	}
	txs, err := s.history(ctx, owner)
	if err != nil {
		return nil, err
	}

	index := make(map[int64]int)
	ranked := make([]ProductSales, 0)
	for _, t := range txs {
		for _, item := range t.Items {
			i, ok := index[item.ProductID]
			if !ok {
				i = len(ranked)
				index[item.ProductID] = i
				ranked = append(ranked, ProductSales{ProductID: item.ProductID})
			}
			ranked[i].ProductName = item.ProductName
			ranked[i].TotalQuantity += item.Quantity
			ranked[i].TotalRevenue += item.TotalPrice
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].TotalQuantity > ranked[b].TotalQuantity
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// dailyRevenue returns one point per calendar day from the first to the last
// sale, days without sales included as zero.
func (s *AnalyticsService) dailyRevenue(txs []*domain.Transaction) []RevenuePoint {
	if len(txs) == 0 {
		return []RevenuePoint{}
	}
	totals := make(map[string]float64)
	var first, last time.Time
	for i, t := range txs {
		ts := t.Timestamp.In(s.loc)
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, s.loc)
		if i == 0 || day.Before(first) {
			first = day
		}
		if i == 0 || day.After(last) {
			last = day
		}
		totals[day.Format("2006-01-02")] += float64(t.TotalPrice)
	}

	points := make([]RevenuePoint, 0)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		points = append(points, RevenuePoint{Date: key, Revenue: totals[key]})
	}
	return points
}

// RevenuePrediction fits a least-squares line through daily revenue and
// extrapolates it for the given number of days.
func (s *AnalyticsService) RevenuePrediction(ctx context.Context, owner string, days int) (*RevenuePrediction, error) {
	if days <= 0 {
		days = DefaultPredictionDays
	}
	if days > MaxPredictionDays {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "days must not exceed 90")
	}
	txs, err := s.history(ctx, owner)
	if err != nil {
		return nil, err
	}

	out := &RevenuePrediction{
		History:     s.dailyRevenue(txs),
		Predictions: []RevenuePoint{},
	}
	n := len(out.History)
	if n == 0 {
		return out, nil
	}

	lastDay, _ := time.ParseInLocation("2006-01-02", out.History[n-1].Date, s.loc)
	if n == 1 {
		out.Intercept = out.History[0].Revenue
	} else {
		series := make(stats.Series, 0, n)
		for i, p := range out.History {
			series = append(series, stats.Coordinate{X: float64(i), Y: p.Revenue})
		}
		fit, err := stats.LinearRegression(series)
		if err != nil {
			return nil, apperr.Validation(apperr.CodeInvalidRequest, "Not enough data for prediction")
		}
		out.Intercept = fit[0].Y
		out.Slope = (fit[n-1].Y - fit[0].Y) / float64(n-1)
	}

	for i := 0; i < days; i++ {
		x := float64(n + i)
		y := out.Intercept + out.Slope*x
		out.Predictions = append(out.Predictions, RevenuePoint{
			Date:    lastDay.AddDate(0, 0, i+1).Format("2006-01-02"),
			Revenue: math.Max(0, math.Round(y*100)/100),
		})
	}
	return out, nil
}

func (s *AnalyticsService) Summary(ctx context.Context, owner string) (*SalesSummary, error) {
	txs, err := s.history(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := &SalesSummary{TransactionCount: len(txs)}
	if len(txs) == 0 {
		return out, nil
	}

	values := make(stats.Float64Data, 0, len(txs))
	for _, t := range txs {
		out.TotalRevenue += t.TotalPrice
		for _, item := range t.Items {
			out.ItemsSold += item.Quantity
		}
		values = append(values, float64(t.TotalPrice))
	}
	out.AverageValue, _ = stats.Mean(values)
	out.MedianValue, _ = stats.Median(values)
	return out, nil
}
