package kafka

import (
	"testing"

	kafkago "github.com/segmentio/kafka-go"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatal("expected error without brokers")
	}
}

func TestEncodeValuePassthroughAndJSON(t *testing.T) {
	b, err := encodeValue([]byte("raw"))
	if err != nil || string(b) != "raw" {
		t.Fatalf("bytes passthrough: %q %v", b, err)
	}
	b, err = encodeValue("text")
	if err != nil || string(b) != "text" {
		t.Fatalf("string passthrough: %q %v", b, err)
	}
	b, err = encodeValue(map[string]int{"score": 72})
	if err != nil || string(b) != `{"score":72}` {
		t.Fatalf("json encode: %q %v", b, err)
	}
}

func TestCompressionCodecDefaultsToGzip(t *testing.T) {
	if got := compressionCodec("zstd"); got != kafkago.Zstd {
		t.Fatalf("zstd: got %v", got)
	}
	if got := compressionCodec("unknown"); got != kafkago.Gzip {
		t.Fatalf("default: got %v", got)
	}
}
