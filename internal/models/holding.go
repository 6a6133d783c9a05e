package models

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidHolding is wrapped by every validation failure below.
var ErrInvalidHolding = errors.New("invalid holding")

// Exchange symbols: letters, digits and the punctuation used by share classes
// and index/futures suffixes (BRK.B, RDS-A, ^GSPC, ES=F).
var tickerRegexp = regexp.MustCompile(`^[A-Za-z0-9.\-^=]{1,16}$`)

type Holding struct {
	ID            uuid.UUID `json:"id"`
	Ticker        string    `json:"ticker"`
	Quantity      float64   `json:"quantity"`
	PurchasePrice float64   `json:"purchasePrice"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HoldingInput is the body of an add request.
type HoldingInput struct {
	Ticker        *string  `json:"ticker"`
	Quantity      *float64 `json:"quantity"`
	PurchasePrice *float64 `json:"purchasePrice"`
}

// HoldingPatch is a partial update; nil fields are left unchanged.
type HoldingPatch struct {
	Ticker        *string  `json:"ticker"`
	Quantity      *float64 `json:"quantity"`
	PurchasePrice *float64 `json:"purchasePrice"`
}

// Validate checks that all fields are present and well-formed, normalizing the ticker.
func (in *HoldingInput) Validate() error {
	if in.Ticker == nil {
		return invalid("ticker is required")
	}
	if in.Quantity == nil {
		return invalid("quantity is required")
	}
	if in.PurchasePrice == nil {
		return invalid("purchasePrice is required")
	}
	return validateFields(in.Ticker, in.Quantity, in.PurchasePrice)
}

func (p *HoldingPatch) Validate() error {
	if p.Ticker == nil && p.Quantity == nil && p.PurchasePrice == nil {
		return invalid("at least one of ticker, quantity, purchasePrice is required")
	}
	return validateFields(p.Ticker, p.Quantity, p.PurchasePrice)
}

func validateFields(ticker *string, quantity, purchasePrice *float64) error {
	if ticker != nil {
		t := strings.TrimSpace(*ticker)
		if !tickerRegexp.MatchString(t) {
			return invalid(fmt.Sprintf("ticker %q is not a valid symbol", *ticker))
		}
		*ticker = t
	}
	if quantity != nil {
		if err := nonNegative("quantity", *quantity); err != nil {
			return err
		}
	}
	if purchasePrice != nil {
		if err := nonNegative("purchasePrice", *purchasePrice); err != nil {
			return err
		}
	}
	return nil
}

func nonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field + " must be a finite number")
	}
	if v < 0 {
		return invalid(field + " must not be negative")
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidHolding, msg)
}
