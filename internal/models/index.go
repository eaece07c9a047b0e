package models

// Index is one of the five tradeable Indian index derivatives this engine
// covers.
type Index string

const (
	NIFTY      Index = "NIFTY"
	BANKNIFTY  Index = "BANKNIFTY"
	FINNIFTY   Index = "FINNIFTY"
	SENSEX     Index = "SENSEX"
	MIDCPNIFTY Index = "MIDCPNIFTY"
)

// LotSizes is the contracts-per-lot table for each covered index.
var LotSizes = map[Index]int{
	NIFTY:      50,
	BANKNIFTY:  25,
	FINNIFTY:   40,
	SENSEX:     10,
	MIDCPNIFTY: 75,
}

// LotSize returns the contracts-per-lot for an index, or 0 if unknown.
func LotSize(index Index) int {
	return LotSizes[index]
}
