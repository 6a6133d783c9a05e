// Package portfolio prices the stored holdings against live quotes.
package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kjannette/holdings-tracker/internal/models"
)

// HoldingLister is the read side of the holding store.
type HoldingLister interface {
	ListAll(ctx context.Context) ([]models.Holding, error)
}

// PriceFetcher resolves one ticker to its current price.
type PriceFetcher interface {
	GetPrice(ctx context.Context, ticker string) (float64, error)
}

type Service struct {
	holdings     HoldingLister
	quotes       PriceFetcher
	quoteTimeout time.Duration
	log          *zap.Logger
}

func NewService(holdings HoldingLister, quotes PriceFetcher, quoteTimeout time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		holdings:     holdings,
		quotes:       quotes,
		quoteTimeout: quoteTimeout,
		log:          log.Named("portfolio"),
	}
}

// Valuate lists the current holdings and prices them.
func (s *Service) Valuate(ctx context.Context) (*models.Valuation, error) {
	holdings, err := s.holdings.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	return s.Aggregate(ctx, holdings)
}

// Aggregate fetches one quote per holding concurrently and waits for all of them.
// Entries keep the order of holdings. If any quote fails, the outstanding
// requests are cancelled and no valuation is returned.
func (s *Service) Aggregate(ctx context.Context, holdings []models.Holding) (*models.Valuation, error) {
	prices := make([]float64, len(holdings))
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i, h := range holdings {
		g.Go(func() error {
			qctx := gctx
			if s.quoteTimeout > 0 {
				var cancel context.CancelFunc
				qctx, cancel = context.WithTimeout(gctx, s.quoteTimeout)
				defer cancel()
			}

			p, err := s.quotes.GetPrice(qctx, h.Ticker)
			if err != nil {
				return err
			}
			prices[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.log.Error("portfolio valuation failed",
			zap.Int("holdings", len(holdings)),
			zap.Error(err))
		return nil, fmt.Errorf("price holdings: %w", err)
	}

	v := buildValuation(holdings, prices)
	s.log.Debug("portfolio valued",
		zap.Int("holdings", len(holdings)),
		zap.Float64("total", v.TotalPortfolioValue),
		zap.Duration("elapsed", time.Since(start)))
	return v, nil
}

func buildValuation(holdings []models.Holding, prices []float64) *models.Valuation {
	entries := make([]models.PriceEntry, len(holdings))
	total := decimal.Zero

	for i, h := range holdings {
		price := decimal.NewFromFloat(prices[i])
		value := price.Mul(decimal.NewFromFloat(h.Quantity))
		total = total.Add(value)

		entries[i] = models.PriceEntry{
			Ticker:       h.Ticker,
			CurrentPrice: prices[i],
			Quantity:     h.Quantity,
			TotalValue:   value.InexactFloat64(),
		}
	}

	return &models.Valuation{
		Prices:              entries,
		TotalPortfolioValue: total.InexactFloat64(),
	}
}
