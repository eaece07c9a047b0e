// Package optionchain parses raw NSE option-chain snapshots and derives the
// chain analytics consumed by the psychology and strategy stages.
package optionchain

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/ridopark/options-engine/internal/models"
)

type rawLeg struct {
	StrikePrice     float64 `json:"strikePrice"`
	ExpiryDate      string  `json:"expiryDate"`
	OpenInterest    float64 `json:"openInterest"`
	ChangeinOI      float64 `json:"changeinOpenInterest"`
	TotalTradedVol  float64 `json:"totalTradedVolume"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
	LastPrice       float64 `json:"lastPrice"`
	BidPrice        float64 `json:"bidprice"`
	AskPrice        float64 `json:"askPrice"`
}

type rawRow struct {
	StrikePrice float64 `json:"strikePrice"`
	ExpiryDate  string  `json:"expiryDate"`
	CE          *rawLeg `json:"CE"`
	PE          *rawLeg `json:"PE"`
}

type rawPayload struct {
	Records struct {
		Data           []rawRow `json:"data"`
		UnderlyingValue float64 `json:"underlyingValue"`
	} `json:"records"`
	Filtered struct {
		Data []rawRow `json:"data"`
	} `json:"filtered"`
}

// Parse decodes a raw NSE option-chain payload, keeps only rows for expiry
// (or the nearest expiry present when expiry is empty), and returns a
// strike-sorted snapshot. It prefers the "filtered" rows when present since
// NSE already restricts those to the requested expiry.
func Parse(raw []byte, expiry string, fetchedAt time.Time) (*models.OptionChainSnapshot, error) {
	var payload rawPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	rows := payload.Filtered.Data
	if len(rows) == 0 {
		rows = payload.Records.Data
	}

	if expiry == "" {
		expiry = firstExpiry(rows)
	}

	byStrike := make(map[float64]*models.StrikeRow)
	for _, row := range rows {
		if row.ExpiryDate != "" && row.ExpiryDate != expiry {
			continue
		}
		entry, ok := byStrike[row.StrikePrice]
		if !ok {
			entry = &models.StrikeRow{Strike: row.StrikePrice}
			byStrike[row.StrikePrice] = entry
		}
		if row.CE != nil {
			entry.CE = legFrom(row.CE)
		}
		if row.PE != nil {
			entry.PE = legFrom(row.PE)
		}
	}

	strikes := make([]float64, 0, len(byStrike))
	for strike := range byStrike {
		strikes = append(strikes, strike)
	}
	sort.Float64s(strikes)

	snapshot := &models.OptionChainSnapshot{
		Underlying: payload.Records.UnderlyingValue,
		FetchedAt:  fetchedAt,
		Expiry:     expiry,
		Strikes:    make([]models.StrikeRow, 0, len(strikes)),
	}
	for _, strike := range strikes {
		snapshot.Strikes = append(snapshot.Strikes, *byStrike[strike])
	}

	return snapshot, nil
}

func legFrom(r *rawLeg) models.Leg {
	return models.Leg{
		OpenInterest: r.OpenInterest,
		ChangeInOI:   r.ChangeinOI,
		Volume:       r.TotalTradedVol,
		IV:           r.ImpliedVolatility,
		LTP:          r.LastPrice,
		BidPrice:     r.BidPrice,
		AskPrice:     r.AskPrice,
	}
}

func firstExpiry(rows []rawRow) string {
	for _, row := range rows {
		if row.ExpiryDate != "" {
			return row.ExpiryDate
		}
	}
	return ""
}
