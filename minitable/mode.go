// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package minitable

// Mode {{{

// Kind is the first of Mode's three packed fields: how a field's storage
// is shaped.
type Kind uint8

const (
	KindScalar Kind = iota
	KindArray
	KindMap
)

// Flag is a bitset of the second packed field.
type Flag uint8

const (
	FlagPacked    Flag = 1 << 0
	FlagExtension Flag = 1 << 1
	FlagAlternate Flag = 1 << 2
)

// Repr is the third packed field: the field's representation class,
// chosen independently per 32-bit/64-bit variant (§4.5 step 4's "a 32-bit
// mini-table may pick a smaller representation... for pointer-sized
// fields").
type Repr uint8

const (
	Repr1Byte Repr = iota
	Repr4Byte
	Repr8Byte
	ReprStringView
)

// Mode packs Kind (bits 0-1), Flag (bits 2-4), and Repr (bits 5-6) into a
// single byte, matching §4.5's "mode packs three fields into one byte".
type Mode uint8

func PackMode(kind Kind, flags Flag, repr Repr) Mode {
	return Mode(uint8(kind&0x3) | (uint8(flags&0x7) << 2) | (uint8(repr&0x3) << 5))
}

func (m Mode) Kind() Kind   { return Kind(m & 0x3) }
func (m Mode) Flags() Flag  { return Flag((m >> 2) & 0x7) }
func (m Mode) Repr() Repr   { return Repr((m >> 5) & 0x3) }
func (m Mode) Has(f Flag) bool { return m.Flags()&f != 0 }

// }}}
