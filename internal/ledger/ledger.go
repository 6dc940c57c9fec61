// Package ledger implements the gamble aggregation and valuation core:
// merging sessions into totals, pricing totals in gold, and ranking them
// for leaderboards. Everything here is pure apart from price lookups.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gamba-tracker-bot/internal/model"
	"gamba-tracker-bot/internal/pricing"
)

// Ledger errors.
var (
	// ErrUserMismatch is returned when totals for two different users are
	// merged. That is a caller bug, not a runtime condition.
	ErrUserMismatch = errors.New("cannot merge totals of different users")

	// ErrNoHands is returned when a valuation is requested for totals with
	// zero hands played; the per-hand average is undefined.
	ErrNoHands = errors.New("no hands played")
)

// Default per-hand cost of ecto gambling: a flat gold fee plus a number of
// ectos consumed per hand.
const (
	DefaultFlatCostPerHand = 100
	DefaultEctoCostPerHand = 250
)

// Merge combines two totals field-wise. The resulting LastPlayed is the
// maximum of the inputs. Merging is associative and commutative over the
// numeric fields, so sessions can be folded in any order.
//
// Both inputs must belong to the same user; a zero UserID (empty totals or
// bot-wide totals) merges with anything.
func Merge(a, b model.GambleTotals) (model.GambleTotals, error) {
	if a.UserID != 0 && b.UserID != 0 && a.UserID != b.UserID {
		return model.GambleTotals{}, fmt.Errorf("%w: %d and %d", ErrUserMismatch, a.UserID, b.UserID)
	}

	out := model.GambleTotals{
		UserID:     a.UserID,
		Username:   a.Username,
		Hands:      a.Hands + b.Hands,
		Gold:       a.Gold + b.Gold,
		Ectos:      a.Ectos + b.Ectos,
		Runes:      a.Runes + b.Runes,
		LastPlayed: max(a.LastPlayed, b.LastPlayed),
	}
	if out.UserID == 0 {
		out.UserID = b.UserID
		out.Username = b.Username
	}
	return out, nil
}

// Valuation is the monetary outcome of a group of sessions, in gold.
// Values carry full float precision; rounding happens only at the display
// boundary via Round2.
type Valuation struct {
	Net float64
	Avg float64
}

// Valuator prices gamble totals using current item prices.
type Valuator struct {
	pricer Pricer

	// FlatCostPerHand is the fixed gold fee per hand.
	FlatCostPerHand int64
	// EctoCostPerHand is the number of ectos consumed per hand.
	EctoCostPerHand int64
}

// Pricer supplies current item prices in gold. *pricing.Cache satisfies it.
type Pricer interface {
	Price(ctx context.Context, item pricing.Item) (float64, error)
}

// NewValuator creates a Valuator with the default per-hand costs.
func NewValuator(pricer Pricer) *Valuator {
	return &Valuator{
		pricer:          pricer,
		FlatCostPerHand: DefaultFlatCostPerHand,
		EctoCostPerHand: DefaultEctoCostPerHand,
	}
}

// Valuate computes the net and per-hand average gold value of the totals:
//
//	spent  = hands * (flat + ectoCost * price(ecto))
//	gained = gold + ectos * price(ecto) + runes * price(rune)
//	net    = gained - spent
//	avg    = net / hands
//
// Totals with zero hands fail with ErrNoHands. Price lookup failures
// propagate unchanged, so callers see pricing.ErrPriceUnavailable.
func (v *Valuator) Valuate(ctx context.Context, totals model.GambleTotals) (Valuation, error) {
	if totals.Hands == 0 {
		return Valuation{}, ErrNoHands
	}

	ectoPrice, err := v.pricer.Price(ctx, pricing.ItemEctoplasm)
	if err != nil {
		return Valuation{}, err
	}
	runePrice, err := v.pricer.Price(ctx, pricing.ItemRuneOfHolding)
	if err != nil {
		return Valuation{}, err
	}

	spent := float64(totals.Hands) * (float64(v.FlatCostPerHand) + float64(v.EctoCostPerHand)*ectoPrice)
	gained := float64(totals.Gold) + float64(totals.Ectos)*ectoPrice + float64(totals.Runes)*runePrice
	net := gained - spent

	return Valuation{
		Net: net,
		Avg: net / float64(totals.Hands),
	}, nil
}

// Round2 rounds a gold value to two decimals for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
