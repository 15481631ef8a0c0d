package codec

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// DecoderPool manages reusable zstd decoders to reduce allocation overhead.
type DecoderPool struct {
	pool      *sync.Pool
	maxMemory uint64
}

// NewDecoderPool creates a pool of zstd decoders.
// If maxMemory is 0, no memory limit is applied to decoders.
func NewDecoderPool(maxMemory uint64) *DecoderPool {
	p := &DecoderPool{maxMemory: maxMemory}
	p.pool = &sync.Pool{
		New: func() any {
			dec, err := p.newDecoder()
			if err != nil {
				return nil
			}
			return dec
		},
	}
	return p
}

// Get returns a decoder for DecodeAll use.
// The caller must call the returned release function when done.
func (p *DecoderPool) Get() (*zstd.Decoder, func(), error) {
	if p == nil || p.pool == nil {
		dec, err := p.newDecoder()
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	}

	dec, ok := p.pool.Get().(*zstd.Decoder)
	if !ok || dec == nil {
		// Pool's New function failed, try directly
		dec, err := p.newDecoder()
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	}
	return dec, func() { p.pool.Put(dec) }, nil
}

func (p *DecoderPool) newDecoder() (*zstd.Decoder, error) {
	opts := []zstd.DOption{zstd.WithDecoderConcurrency(1)}
	if p != nil && p.maxMemory != 0 {
		opts = append(opts, zstd.WithDecoderMaxMemory(p.maxMemory))
	}
	return zstd.NewReader(nil, opts...)
}
