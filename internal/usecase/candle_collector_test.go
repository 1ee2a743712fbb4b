package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"SMCTrader/internal/domain/models"
	mid "SMCTrader/internal/middleware"
)

type fakeStream struct {
	mu         sync.Mutex
	candles    chan *models.Candle
	errs       chan error
	reconnects int
	connected  bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{candles: make(chan *models.Candle, 8), errs: make(chan error, 1)}
}

func (s *fakeStream) Connect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}
func (s *fakeStream) Subscribe(context.Context) error { return nil }
func (s *fakeStream) Read(context.Context) (<-chan *models.Candle, <-chan error) {
	return s.candles, s.errs
}
func (s *fakeStream) Reconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	return nil
}
func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}
func (s *fakeStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

type syncPub struct {
	fakeCandlePub
	mu sync.Mutex
}

func (p *syncPub) Publish(ctx context.Context, c *models.Candle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fakeCandlePub.Publish(ctx, c)
}

func (p *syncPub) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCandleCollectorForwardsClosedBars(t *testing.T) {
	for _, withPipe := range []bool{false, true} {
		stream := newFakeStream()
		pub := &syncPub{}
		proc := NewCandleProcessor(pub, nil, nil, BackendKafka)
		var pipe *mid.RealtimePipeline
		if withPipe {
			pipe = mid.NewRealtimePipeline(proc, nopMetrics{})
		}
		col := NewCandleCollector(stream, proc, nil, pipe)

		ctx, cancel := context.WithCancel(context.Background())
		if err := col.Start(ctx); err != nil {
			t.Fatalf("start: %v", err)
		}
		if !col.IsConnected() {
			t.Fatal("expected connected stream")
		}

		k := &models.Candle{Time: t0, Symbol: "BTCUSDT", Timeframe: models.TF5m, Open: 1, High: 2, Low: 0.5, Close: 1.5}
		forming := *k
		forming.Forming = true
		stream.candles <- &forming
		stream.candles <- k
		waitFor(t, func() bool { return pub.count() == 1 })

		stream.errs <- errors.New("reset by peer")
		waitFor(t, func() bool {
			stream.mu.Lock()
			defer stream.mu.Unlock()
			return stream.reconnects == 1
		})

		cancel()
		if err := col.Shutdown(context.Background()); err != nil {
			t.Fatalf("shutdown: %v", err)
		}
		if col.IsConnected() {
			t.Fatal("stream still connected after shutdown")
		}
	}
}
