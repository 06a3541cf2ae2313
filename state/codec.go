// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// WordSize is the width of one storage slot.
const WordSize = 32

var (
	ErrShortRecord = errors.New("record shorter than its layout")
	ErrWordRange   = errors.New("slot value out of range")
)

// Encoder appends values as 32-byte big-endian words.
type Encoder struct {
	buf []byte
}

func NewEncoder(words int) *Encoder {
	return &Encoder{buf: make([]byte, 0, words*WordSize)}
}

func (e *Encoder) Uint256(x *uint256.Int) *Encoder {
	w := x.Bytes32()
	e.buf = append(e.buf, w[:]...)
	return e
}

func (e *Encoder) Uint64(v uint64) *Encoder {
	return e.Uint256(uint256.NewInt(v))
}

func (e *Encoder) Address(a common.Address) *Encoder {
	h := common.BytesToHash(a.Bytes())
	e.buf = append(e.buf, h[:]...)
	return e
}

func (e *Encoder) Bool(v bool) *Encoder {
	if v {
		return e.Uint64(1)
	}
	return e.Uint64(0)
}

func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Decoder reads words written by Encoder. The first failure sticks and is
// reported by Err.
type Decoder struct {
	buf []byte
	err error
}

func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

func (d *Decoder) word() []byte {
	if d.err != nil {
		return nil
	}
	if len(d.buf) < WordSize {
		d.err = ErrShortRecord
		return nil
	}
	w := d.buf[:WordSize]
	d.buf = d.buf[WordSize:]
	return w
}

func (d *Decoder) Uint256(x *uint256.Int) {
	if w := d.word(); w != nil {
		x.SetBytes32(w)
	}
}

func (d *Decoder) Uint64() uint64 {
	var x uint256.Int
	d.Uint256(&x)
	if !x.IsUint64() {
		if d.err == nil {
			d.err = ErrWordRange
		}
		return 0
	}
	return x.Uint64()
}

func (d *Decoder) Address() common.Address {
	w := d.word()
	if w == nil {
		return common.Address{}
	}
	return common.BytesToAddress(w[WordSize-common.AddressLength:])
}

func (d *Decoder) Bool() bool {
	return d.Uint64() != 0
}

func (d *Decoder) Err() error {
	return d.err
}
