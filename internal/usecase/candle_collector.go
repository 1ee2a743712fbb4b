package usecase

import (
	"context"

	"SMCTrader/internal/domain/models"
	drepo "SMCTrader/internal/domain/repository"
	mid "SMCTrader/internal/middleware"
)

// CandleCollector reads the market stream and hands candles to the processor.
type CandleCollector struct {
	stream  drepo.MarketStream
	proc    *CandleProcessor
	metrics drepo.Metrics
	pipe    *mid.RealtimePipeline
}

// NewCandleCollector creates a new CandleCollector instance. pipe may be nil, in
// which case closed candles go straight to the processor.
func NewCandleCollector(stream drepo.MarketStream, proc *CandleProcessor, metrics drepo.Metrics, pipe *mid.RealtimePipeline) *CandleCollector {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &CandleCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the market stream is connected.
func (c *CandleCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *CandleCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	cCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, cCh, errCh)
	return nil
}

func (c *CandleCollector) consume(ctx context.Context, cCh <-chan *models.Candle, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				return
			}
			if err != nil {
				c.metrics.RecordError("stream")
				c.reconnect(ctx)
			}
		case k, ok := <-cCh:
			if !ok {
				return
			}
			c.handle(ctx, k)
		}
	}
}

// reconnect retries until the stream is back or ctx is done.
func (c *CandleCollector) reconnect(ctx context.Context) {
	for ctx.Err() == nil {
		if err := c.stream.Reconnect(ctx); err == nil {
			return
		}
		c.metrics.RecordError("stream_reconnect")
	}
}

func (c *CandleCollector) handle(ctx context.Context, k *models.Candle) {
	if k == nil {
		return
	}
	c.metrics.RecordLastPrice(k.Symbol, k.Close)
	if c.pipe != nil {
		_ = c.pipe.Process(ctx, k)
		return
	}
	if k.Forming {
		return
	}
	_ = c.proc.Process(ctx, k)
}

func (c *CandleCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying CandleProcessor for lifecycle management.
func (c *CandleCollector) Processor() *CandleProcessor { return c.proc }

// Shutdown stops pipeline and closes stream.
func (c *CandleCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
