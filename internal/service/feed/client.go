// Package feed streams live klines from a Binance-compatible websocket.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"SMCTrader/internal/domain/models"
	drepo "SMCTrader/internal/domain/repository"
	"SMCTrader/pkg/logger"
)

// Client implements a MarketStream backed by a kline websocket.
type Client struct {
	websocketURL   string
	symbols        []string
	timeframes     []models.Timeframe
	reconnectDelay time.Duration
	pingInterval   time.Duration
	l              *logger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	nextID    int
}

// New creates a kline MarketStream for every symbol/timeframe pair.
func New(websocketURL string, symbols []string, timeframes []models.Timeframe, reconnectDelay, pingInterval time.Duration, l *logger.Logger) drepo.MarketStream {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if l == nil {
		l = logger.NewNop()
	}
	return &Client{
		websocketURL:   websocketURL,
		symbols:        symbols,
		timeframes:     timeframes,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		l:              l,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("feed connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.l.Info("feed connected", logger.String("url", c.websocketURL))
	return nil
}

// Streams returns the kline stream names, e.g. btcusdt@kline_5m.
func Streams(symbols []string, timeframes []models.Timeframe) []string {
	out := make([]string, 0, len(symbols)*len(timeframes))
	for _, s := range symbols {
		for _, tf := range timeframes {
			out = append(out, fmt.Sprintf("%s@kline_%s", strings.ToLower(s), tf))
		}
	}
	return out
}

// Subscribe subscribes to configured symbols in one request.
func (c *Client) Subscribe(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || !c.connected {
		return fmt.Errorf("feed not connected")
	}
	c.nextID++
	params := Streams(c.symbols, c.timeframes)
	msg := map[string]interface{}{"method": "SUBSCRIBE", "params": params, "id": c.nextID}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	c.l.Info("feed subscribed", logger.Strings("streams", params))
	return nil
}

// Keys that differ only by case from a decoded field must be declared too:
// encoding/json falls back to case-insensitive matching.
type klineFrame struct {
	Event     string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	K         struct {
		Start       int64  `json:"t"` // ms
		End         int64  `json:"T"`
		Symbol      string `json:"s"`
		Interval    string `json:"i"`
		FirstTrade  int64  `json:"f"`
		LastTrade   int64  `json:"L"`
		Open        string `json:"o"`
		High        string `json:"h"`
		Low         string `json:"l"`
		Close       string `json:"c"`
		Volume      string `json:"v"`
		Trades      int64  `json:"n"`
		Closed      bool   `json:"x"`
		QuoteVolume string `json:"q"`
		TakerBase   string `json:"V"`
		TakerQuote  string `json:"Q"`
		Ignore      string `json:"B"`
	} `json:"k"`
}

// combinedFrame is the /stream endpoint wrapper.
type combinedFrame struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// ParseKline decodes one kline frame, raw or wrapped by the combined stream
// endpoint. ok is false for frames that are not klines, such as subscription
// acknowledgements.
func ParseKline(b []byte) (*models.Candle, bool, error) {
	var env combinedFrame
	if err := json.Unmarshal(b, &env); err == nil && env.Stream != "" && len(env.Data) > 0 {
		b = env.Data
	}
	var f klineFrame
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, false, fmt.Errorf("decode frame: %w", err)
	}
	if f.Event != "kline" {
		return nil, false, nil
	}
	vals := make([]float64, 5)
	for i, s := range []string{f.K.Open, f.K.High, f.K.Low, f.K.Close, f.K.Volume} {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, false, fmt.Errorf("kline %s field %d: %w", f.K.Symbol, i, err)
		}
		vals[i] = d.InexactFloat64()
	}
	return &models.Candle{
		Time:      time.UnixMilli(f.K.Start).UTC(),
		Symbol:    strings.ToUpper(f.K.Symbol),
		Timeframe: models.Timeframe(f.K.Interval),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
		Forming:   !f.K.Closed,
	}, true, nil
}

func (c *Client) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// Read streams candles and errors until ctx is done. After a read error the loop
// waits for Reconnect to install a new connection.
func (c *Client) Read(ctx context.Context) (<-chan *models.Candle, <-chan error) {
	candles := make(chan *models.Candle, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
				c.mu.Unlock()
			}
		}
	}()

	// read loop
	go func() {
		defer close(candles)
		defer close(errs)
		var failed *websocket.Conn
		for {
			if ctx.Err() != nil {
				return
			}
			conn := c.current()
			if conn == nil || conn == failed {
				select {
				case <-ctx.Done():
					return
				case <-time.After(c.reconnectDelay / 5):
				}
				continue
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				failed = conn
				select {
				case errs <- fmt.Errorf("feed read: %w", err):
				default:
				}
				continue
			}
			k, ok, err := ParseKline(b)
			if err != nil {
				c.l.Debug("feed frame skipped", logger.Error(err))
				continue
			}
			if !ok {
				continue
			}
			select {
			case candles <- k:
			default:
				// drop on backpressure
			}
		}
	}()

	return candles, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.reconnectDelay):
	}
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
