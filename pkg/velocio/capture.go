// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package velocio

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// CaptureRecord is one transaction as stored in a capture file.
// A capture file is a plain CBOR sequence of these records.
type CaptureRecord struct {
	Time  time.Time `cbor:"time"`
	Index int       `cbor:"index"`
	Tx    []byte    `cbor:"tx"`
	Rx    []byte    `cbor:"rx"`
}

// CaptureWriter appends transactions to a capture stream
type CaptureWriter struct {
	enc *cbor.Encoder
}

// NewCaptureWriter creates a writer encoding to w
func NewCaptureWriter(w io.Writer) (*CaptureWriter, error) {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}
	return &CaptureWriter{enc: em.NewEncoder(w)}, nil
}

// Write appends one transaction
func (c *CaptureWriter) Write(t Transaction) error {
	rec := CaptureRecord{
		Time:  t.Timestamp,
		Index: t.Index,
		Tx:    t.Tx,
		Rx:    t.Rx,
	}
	if err := c.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to write capture record %d: %w", t.Index, err)
	}
	return nil
}

// CaptureReader reads transactions back from a capture stream
type CaptureReader struct {
	dec *cbor.Decoder
}

// NewCaptureReader creates a reader decoding from r
func NewCaptureReader(r io.Reader) *CaptureReader {
	return &CaptureReader{dec: cbor.NewDecoder(r)}
}

// Next returns the next transaction, or io.EOF at the end of the stream
func (c *CaptureReader) Next() (Transaction, error) {
	var rec CaptureRecord
	if err := c.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Transaction{}, io.EOF
		}
		return Transaction{}, fmt.Errorf("failed to decode capture record: %w", err)
	}
	return Transaction{
		Index:     rec.Index,
		Tx:        Frame(rec.Tx),
		Rx:        rec.Rx,
		Timestamp: rec.Time,
	}, nil
}

// ReadCapture reads every transaction in r
func ReadCapture(r io.Reader) ([]Transaction, error) {
	cr := NewCaptureReader(r)
	var out []Transaction
	for {
		t, err := cr.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
}
