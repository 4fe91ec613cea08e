package payload

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the algorithm applied to a payload body.
type Compression uint8

const (
	// None stores the JSON body as is.
	None Compression = 0
	// LZ4 uses LZ4 block compression (fast).
	LZ4 Compression = 1
	// ZSTD uses zstd (better ratio).
	ZSTD Compression = 2
)

// ParseCompression resolves a compression name: "none", "lz4" or "zstd".
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return ZSTD, nil
	}
	return None, fmt.Errorf("payload: unsupported compression %q", name)
}

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	}
	return fmt.Sprintf("compression(%d)", uint8(c))
}

var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdErr     error
)

// zstd encoders and decoders are safe for concurrent EncodeAll/DecodeAll.
func zstdCodecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zstdErr != nil {
			return
		}
		zstdDecoder, zstdErr = zstd.NewReader(nil)
	})
	return zstdEncoder, zstdDecoder, zstdErr
}

// compress frames data as [header][uvarint size][body]. Data that does not
// shrink is stored uncompressed.
func compress(data []byte, c Compression) ([]byte, error) {
	var body []byte
	switch c {
	case None:
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("payload: lz4: %w", err)
		}
		body = buf[:n]
	case ZSTD:
		enc, _, err := zstdCodecs()
		if err != nil {
			return nil, fmt.Errorf("payload: zstd: %w", err)
		}
		body = enc.EncodeAll(data, nil)
	default:
		return nil, fmt.Errorf("payload: unsupported compression %v", c)
	}
	if c == None || len(body) == 0 || len(body) >= len(data) {
		out := make([]byte, 0, 1+len(data))
		out = append(out, byte(None))
		return append(out, data...), nil
	}
	out := make([]byte, 1+binary.MaxVarintLen64, 1+binary.MaxVarintLen64+len(body))
	out[0] = byte(c)
	n := binary.PutUvarint(out[1:], uint64(len(data)))
	out = append(out[:1+n], body...)
	return out, nil
}

func decompress(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, errors.New("payload: empty frame")
	}
	c := Compression(frame[0])
	if c == None {
		return frame[1:], nil
	}
	size, n := binary.Uvarint(frame[1:])
	if n <= 0 {
		return nil, errors.New("payload: corrupt size header")
	}
	body := frame[1+n:]
	switch c {
	case LZ4:
		out := make([]byte, size)
		m, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("payload: lz4: %w", err)
		}
		if uint64(m) != size {
			return nil, errors.New("payload: decompressed size mismatch")
		}
		return out, nil
	case ZSTD:
		_, dec, err := zstdCodecs()
		if err != nil {
			return nil, fmt.Errorf("payload: zstd: %w", err)
		}
		out, err := dec.DecodeAll(body, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("payload: zstd: %w", err)
		}
		if uint64(len(out)) != size {
			return nil, errors.New("payload: decompressed size mismatch")
		}
		return out, nil
	}
	return nil, fmt.Errorf("payload: unknown compression header %d", frame[0])
}
