// Package external defines the narrow interfaces the orchestrator consumes
// for everything that reaches outside the process: the candle source, the
// option-chain HTTP source, the classifier artifact, and the order
// dispatcher. Nothing in this package performs I/O; concrete
// implementations are injected at wiring time. The NSE HTTP chain client
// and the JSON-file candle source live in the nsehttp and filecandles
// subpackages; no broker client or model loader ships with this module.
package external

import (
	"context"
	"strconv"
	"time"

	"github.com/ridopark/options-engine/internal/models"
)

// CandleSource fetches the ordered OHLCV sequence for one index. Timestamps
// are local exchange time.
type CandleSource interface {
	FetchCandles(ctx context.Context, index models.Index) ([]*models.Candle, error)
}

// ChainSource fetches the option chain for one index and returns it decoded
// into a snapshot. The
// session-priming GET of the site root and the cookie lifetime across
// retries within one cycle are the implementation's concern, not this
// interface's; the orchestrator only asks for a decoded snapshot.
type ChainSource interface {
	FetchChain(ctx context.Context, index models.Index) (*models.OptionChainSnapshot, error)
}

// OrderSide mirrors the dispatcher's signed-quantity contract: +1 buys,
// -1 sells.
type OrderSide int

const (
	SideBuy  OrderSide = 1
	SideSell OrderSide = -1
)

// OrderType selects market or limit execution, matching the numeric codes
// the broker wire contract uses (MARKET=2, LIMIT=1).
type OrderType int

const (
	OrderTypeLimit  OrderType = 1
	OrderTypeMarket OrderType = 2
)

// Order is the payload handed to the dispatcher. Symbol must already be
// formatted as NSE:<INDEX><YYMMDD><STRIKE><CE|PE>.
type Order struct {
	Symbol        string
	Qty           int
	Side          OrderSide
	Type          OrderType
	ProductType   string
	Validity      string
	DisclosedQty  int
	LimitPrice    *float64
}

// OrderAck is the dispatcher's acknowledgement.
type OrderAck struct {
	OrderNumber string
	Status      string
	Message     string
}

// OrderDispatcher places orders with the broker. When real trading is
// disabled it must return a synthetic acknowledgement without reaching the
// broker.
type OrderDispatcher interface {
	PlaceOrder(ctx context.Context, order Order) (OrderAck, error)
}

// FormatSymbol builds the NSE:<INDEX><YYMMDD><STRIKE><CE|PE> wire symbol
// for a decision's chosen strike, expiry, and option side.
func FormatSymbol(index models.Index, expiry time.Time, strike float64, side string) string {
	return "NSE:" + string(index) + expiry.Format("060102") + trimStrike(strike) + side
}

func trimStrike(strike float64) string {
	return strconv.FormatFloat(strike, 'f', -1, 64)
}
