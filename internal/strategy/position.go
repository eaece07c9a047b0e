package strategy

import "github.com/ridopark/options-engine/internal/models"

// Position is a sized, strike-selected trade candidate prior to fusion's
// risk gate.
type Position struct {
	Strike   float64
	Premium  float64
	StopLoss float64
	Target   float64
	Lots     int
}

// SizePosition selects a strike one step toward the money for calls (away
// for puts), reads the corresponding LTP as premium, and sets a 1% stop /
// 2% target in the trade's direction. Lots default to 1, rising with
// confidence.
func SizePosition(snapshot *models.OptionChainSnapshot, kind models.SignalKind, atmStrike float64, confidence float64) Position {
	step := snapshot.StrikeStep()
	strike := atmStrike

	switch kind {
	case models.BuyCall:
		strike = atmStrike - step // one step toward the money
	case models.BuyPut:
		strike = atmStrike + step // one step away from the money
	}

	premium := premiumAt(snapshot, strike, kind)

	direction := float64(kind.Direction())
	stopLoss := premium - direction*premium*0.01
	target := premium + direction*premium*0.02

	lots := 1
	if confidence > 0.8 {
		lots = 3
	} else if confidence > 0.7 {
		lots = 2
	}

	return Position{Strike: strike, Premium: premium, StopLoss: stopLoss, Target: target, Lots: lots}
}

func premiumAt(snapshot *models.OptionChainSnapshot, strike float64, kind models.SignalKind) float64 {
	for _, row := range snapshot.Strikes {
		if row.Strike != strike {
			continue
		}
		if kind == models.BuyPut {
			return row.PE.LTP
		}
		return row.CE.LTP
	}
	return 0
}
