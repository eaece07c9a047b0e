package strategy

import (
	"math"

	"github.com/ridopark/options-engine/internal/models"
)

// StrategyName identifies one of the offered options-strategy templates.
type StrategyName string

const (
	StrategyStraddle      StrategyName = "straddle"
	StrategyStrangle      StrategyName = "strangle"
	StrategyBullCallSpread StrategyName = "bull_call_spread"
	StrategyBearPutSpread StrategyName = "bear_put_spread"
	StrategyIronCondor    StrategyName = "iron_condor"
	StrategyCallButterfly StrategyName = "call_butterfly"
)

// Leg identifies a direction and strike within a strategy template.
type Leg struct {
	Strike float64
	Side   string // "CE" or "PE"
	Action string // "BUY" or "SELL"
}

// StrategyPlan is a parametrized strategy's chosen legs plus its economics.
type StrategyPlan struct {
	Name        StrategyName
	Legs        []Leg
	NetPremium  float64
	MaxProfit   float64
	MaxLoss     float64
	RiskReward  float64
}

// Straddle picks the strike with the minimum CE_IV+PE_IV and buys both legs.
func Straddle(snapshot *models.OptionChainSnapshot) StrategyPlan {
	best := snapshot.Strikes[0]
	bestIV := best.CE.IV + best.PE.IV
	for _, row := range snapshot.Strikes[1:] {
		iv := row.CE.IV + row.PE.IV
		if iv < bestIV {
			bestIV = iv
			best = row
		}
	}
	premium := best.CE.LTP + best.PE.LTP
	return StrategyPlan{
		Name:       StrategyStraddle,
		Legs:       []Leg{{best.Strike, "CE", "BUY"}, {best.Strike, "PE", "BUY"}},
		NetPremium: premium,
		MaxLoss:    premium,
	}
}

// Strangle buys OTM legs roughly 5% either side of the underlying.
func Strangle(snapshot *models.OptionChainSnapshot, underlying float64) StrategyPlan {
	callStrike := nearestStrike(snapshot, underlying*1.05)
	putStrike := nearestStrike(snapshot, underlying*0.95)

	callPremium := legAt(snapshot, callStrike, "CE")
	putPremium := legAt(snapshot, putStrike, "PE")
	premium := callPremium + putPremium

	return StrategyPlan{
		Name:       StrategyStrangle,
		Legs:       []Leg{{callStrike, "CE", "BUY"}, {putStrike, "PE", "BUY"}},
		NetPremium: premium,
		MaxLoss:    premium,
	}
}

func nearestStrike(snapshot *models.OptionChainSnapshot, target float64) float64 {
	best := snapshot.Strikes[0].Strike
	bestDiff := math.Abs(best - target)
	for _, row := range snapshot.Strikes[1:] {
		diff := math.Abs(row.Strike - target)
		if diff < bestDiff {
			bestDiff = diff
			best = row.Strike
		}
	}
	return best
}

func legAt(snapshot *models.OptionChainSnapshot, strike float64, side string) float64 {
	for _, row := range snapshot.Strikes {
		if row.Strike != strike {
			continue
		}
		if side == "PE" {
			return row.PE.LTP
		}
		return row.CE.LTP
	}
	return 0
}

// BullCallSpread scans adjacent OTM call strike pairs above the underlying
// and selects the pair maximizing max-profit/max-loss.
func BullCallSpread(snapshot *models.OptionChainSnapshot, underlying float64) StrategyPlan {
	return bestVerticalSpread(snapshot, underlying, "CE", true)
}

// BearPutSpread scans adjacent OTM put strike pairs below the underlying
// and selects the pair maximizing max-profit/max-loss.
func BearPutSpread(snapshot *models.OptionChainSnapshot, underlying float64) StrategyPlan {
	return bestVerticalSpread(snapshot, underlying, "PE", false)
}

func bestVerticalSpread(snapshot *models.OptionChainSnapshot, underlying float64, side string, above bool) StrategyPlan {
	var otm []models.StrikeRow
	for _, row := range snapshot.Strikes {
		if above && row.Strike > underlying {
			otm = append(otm, row)
		}
		if !above && row.Strike < underlying {
			otm = append(otm, row)
		}
	}
	if !above {
		for i, j := 0, len(otm)-1; i < j; i, j = i+1, j-1 {
			otm[i], otm[j] = otm[j], otm[i]
		}
	}

	name := StrategyBullCallSpread
	if side == "PE" {
		name = StrategyBearPutSpread
	}

	var best StrategyPlan
	bestRatio := -1.0

	for i := 0; i+1 < len(otm); i++ {
		near, far := otm[i], otm[i+1]
		nearLTP, farLTP := legValue(near, side), legValue(far, side)
		width := math.Abs(far.Strike - near.Strike)

		netPremium := nearLTP - farLTP
		if netPremium <= 0 {
			continue
		}
		maxProfit := width - netPremium
		maxLoss := netPremium
		if maxLoss <= 0 || maxProfit <= 0 {
			continue
		}
		ratio := maxProfit / maxLoss
		if ratio > bestRatio {
			bestRatio = ratio
			best = StrategyPlan{
				Name:       name,
				Legs:       []Leg{{near.Strike, side, "BUY"}, {far.Strike, side, "SELL"}},
				NetPremium: netPremium,
				MaxProfit:  maxProfit,
				MaxLoss:    maxLoss,
				RiskReward: ratio,
			}
		}
	}
	return best
}

func legValue(row models.StrikeRow, side string) float64 {
	if side == "PE" {
		return row.PE.LTP
	}
	return row.CE.LTP
}

// IronCondor sells adjacent OTM legs on each side of the underlying and
// computes net premium and per-wing risk.
func IronCondor(snapshot *models.OptionChainSnapshot, underlying float64) StrategyPlan {
	callSpread := bestVerticalSpread(snapshot, underlying, "CE", true)
	putSpread := bestVerticalSpread(snapshot, underlying, "PE", false)

	if len(callSpread.Legs) < 2 || len(putSpread.Legs) < 2 {
		return StrategyPlan{Name: StrategyIronCondor}
	}

	// Selling the condor inverts the vertical-spread legs: sell the near
	// strike, buy the protective far strike.
	legs := []Leg{
		{callSpread.Legs[0].Strike, "CE", "SELL"},
		{callSpread.Legs[1].Strike, "CE", "BUY"},
		{putSpread.Legs[0].Strike, "PE", "SELL"},
		{putSpread.Legs[1].Strike, "PE", "BUY"},
	}

	netPremium := callSpread.MaxLoss + putSpread.MaxLoss
	maxWingRisk := math.Max(callSpread.MaxProfit, putSpread.MaxProfit)
	maxRisk := maxWingRisk - netPremium

	plan := StrategyPlan{
		Name:       StrategyIronCondor,
		Legs:       legs,
		NetPremium: netPremium,
		MaxProfit:  netPremium,
		MaxLoss:    maxRisk,
	}
	if netPremium > 0 {
		plan.RiskReward = maxRisk / netPremium
	}
	return plan
}

// CallButterfly builds a 1/-2/1 body around ATM with a wing width of two
// strike steps.
func CallButterfly(snapshot *models.OptionChainSnapshot, atmStrike float64) StrategyPlan {
	step := snapshot.StrikeStep()
	wing := step * 2

	lower := nearestStrike(snapshot, atmStrike-wing)
	upper := nearestStrike(snapshot, atmStrike+wing)

	lowerPremium := legAt(snapshot, lower, "CE")
	bodyPremium := legAt(snapshot, atmStrike, "CE")
	upperPremium := legAt(snapshot, upper, "CE")

	netPremium := lowerPremium - 2*bodyPremium + upperPremium
	maxProfit := (atmStrike - lower) - netPremium
	maxLoss := netPremium

	plan := StrategyPlan{
		Name: StrategyCallButterfly,
		Legs: []Leg{
			{lower, "CE", "BUY"},
			{atmStrike, "CE", "SELL"},
			{atmStrike, "CE", "SELL"},
			{upper, "CE", "BUY"},
		},
		NetPremium: netPremium,
		MaxProfit:  maxProfit,
		MaxLoss:    maxLoss,
	}
	if maxLoss > 0 {
		plan.RiskReward = maxProfit / maxLoss
	}
	return plan
}
