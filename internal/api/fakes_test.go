package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kjannette/holdings-tracker/internal/models"
	"github.com/kjannette/holdings-tracker/internal/repository"
)

// memStore is an in-memory HoldingStore keeping insertion order.
type memStore struct {
	mu       sync.Mutex
	holdings []models.Holding
	err      error
}

func (m *memStore) Insert(ctx context.Context, in models.HoldingInput) (*models.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	now := time.Now().UTC()
	h := models.Holding{
		ID:            uuid.New(),
		Ticker:        *in.Ticker,
		Quantity:      *in.Quantity,
		PurchasePrice: *in.PurchasePrice,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.holdings = append(m.holdings, h)
	return &h, nil
}

func (m *memStore) ListAll(ctx context.Context) ([]models.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]models.Holding(nil), m.holdings...), nil
}

func (m *memStore) UpdateByID(ctx context.Context, id uuid.UUID, patch models.HoldingPatch) (*models.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.holdings {
		h := &m.holdings[i]
		if h.ID != id {
			continue
		}
		if patch.Ticker != nil {
			h.Ticker = *patch.Ticker
		}
		if patch.Quantity != nil {
			h.Quantity = *patch.Quantity
		}
		if patch.PurchasePrice != nil {
			h.PurchasePrice = *patch.PurchasePrice
		}
		h.UpdatedAt = time.Now().UTC()
		out := *h
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i, h := range m.holdings {
		if h.ID == id {
			m.holdings = append(m.holdings[:i], m.holdings[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// staticQuotes answers from a fixed table; unknown tickers fail.
type staticQuotes map[string]float64

func (q staticQuotes) GetPrice(ctx context.Context, ticker string) (float64, error) {
	p, ok := q[ticker]
	if !ok {
		return 0, errors.New("no quote for " + ticker)
	}
	return p, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }
