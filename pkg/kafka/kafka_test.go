package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHook struct {
	name  string
	calls *[]string
	fail  bool
	boom  bool
}

func (h recordingHook) BeforeHandle(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	*h.calls = append(*h.calls, "before:"+h.name)
	if h.boom {
		panic("hook")
	}
	if h.fail {
		return ctx, km, data, &HookError{Code: "ERR_REJECT"}
	}
	return ctx, km, append(data, h.name...), nil
}

func (h recordingHook) AfterHandle(context.Context, string, kafka.Message, []byte, error) {
	*h.calls = append(*h.calls, "after:"+h.name)
}

func (h recordingHook) OnError(context.Context, string, kafka.Message, []byte, error) {
	*h.calls = append(*h.calls, "error:"+h.name)
}

func TestHookChainOrder(t *testing.T) {
	var calls []string
	chain := NewHookChain(recordingHook{name: "a", calls: &calls}, nil, recordingHook{name: "b", calls: &calls})

	ctx, _, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte(">"))
	require.NoError(t, err)
	assert.Equal(t, ">ab", string(data))

	chain.AfterHandle(ctx, "t", kafka.Message{}, data, nil)
	assert.Equal(t, []string{"before:a", "before:b", "after:b", "after:a"}, calls)
}

func TestHookChainStopsOnRejectAndPanic(t *testing.T) {
	var calls []string
	chain := NewHookChain(recordingHook{name: "a", calls: &calls, fail: true}, recordingHook{name: "b", calls: &calls})
	_, _, _, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	var herr *HookError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, "ERR_REJECT", herr.Code)
	assert.Equal(t, []string{"before:a"}, calls)

	calls = nil
	chain = NewHookChain(recordingHook{name: "p", calls: &calls, boom: true})
	_, _, _, err = chain.BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, "ERR_HOOK_PANIC", herr.Code)
}

func TestBackoffWithJitter(t *testing.T) {
	min, max := 100*time.Millisecond, time.Second
	tests := []struct {
		attempt int
		lo, hi  time.Duration
	}{
		{0, 50 * time.Millisecond, 100 * time.Millisecond},
		{1, 50 * time.Millisecond, 100 * time.Millisecond},
		{3, 200 * time.Millisecond, 400 * time.Millisecond},
		{10, 500 * time.Millisecond, time.Second},
		{64, 500 * time.Millisecond, time.Second},
	}
	for _, tt := range tests {
		for i := 0; i < 20; i++ {
			d := backoffWithJitter(min, max, tt.attempt)
			if d <= tt.lo-1 || d > tt.hi {
				t.Fatalf("attempt %d: backoff %v outside (%v, %v]", tt.attempt, d, tt.lo, tt.hi)
			}
		}
	}
}

func TestEncodeValue(t *testing.T) {
	b, err := encodeValue("raw")
	require.NoError(t, err)
	assert.Equal(t, "raw", string(b))

	b, err = encodeValue(map[string]int{"n": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(b))

	b, err = encodeValue(json.RawMessage(`[1]`))
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(b))

	_, err = encodeValue(make(chan int))
	require.Error(t, err)
}

func TestProducerConfig(t *testing.T) {
	_, err := NewProducer()
	require.Error(t, err)

	cfg := defaultProducerConfig()
	for _, opt := range []ProducerOption{
		WithBrokers([]string{" k1:9092 ", "", "k2:9092"}),
		WithDelivery(5, "zstd"),
		WithBatching(0, 2048, 0),
		WithHashByKey(false),
	} {
		opt(cfg)
	}
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
	assert.Equal(t, -1, cfg.RequiredAcks)
	assert.Equal(t, 100, cfg.BatchSize)

	w := cfg.writer()
	assert.Equal(t, kafka.Zstd, w.Compression)
	assert.EqualValues(t, 2048, w.BatchBytes)
	assert.IsType(t, &kafka.LeastBytes{}, w.Balancer)
	assert.Equal(t, kafka.Compression(0), parseCompression("none"))
	assert.Equal(t, kafka.Snappy, parseCompression("bogus"))
}

func TestConsumerRequiresHandlers(t *testing.T) {
	_, err := NewConsumer()
	require.Error(t, err)

	SetConsumerMetricsRegisterer(nil)
	c, err := NewConsumer(WithConsumerBrokers([]string{"k:9092"}), WithConsumerStartOffset("latest"))
	require.NoError(t, err)
	assert.Equal(t, kafka.LastOffset, c.cfg.StartOffset)
	require.Error(t, c.Start())
}
