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

package protoreg

import (
	"testing"

	"go.protoreg.dev/protoreg/internal/testutil"
)

// TestLayoutFieldsDoNotOverlap is §8's disjointness property: every
// field's [offset, offset+size) range must not intersect any other
// field's range, nor the has-bit header, for both pointer widths.
func TestLayoutFieldsDoNotOverlap(t *testing.T) {
	m := NewMessage()
	testutil.AssertNoError(t, m.SetFullName("pkg.M"))

	testutil.AssertNoError(t, m.AddField(newScalarField(t, 1, "a", TypeBool, LabelRequired)))
	testutil.AssertNoError(t, m.AddField(newScalarField(t, 2, "b", TypeI64, LabelOptional)))
	testutil.AssertNoError(t, m.AddField(newScalarField(t, 3, "c", TypeI32, LabelOptional)))
	testutil.AssertNoError(t, m.AddField(newScalarField(t, 4, "d", TypeString, LabelOptional)))
	testutil.AssertNoError(t, m.AddField(newScalarField(t, 5, "e", TypeI16, LabelOptional)))
	testutil.AssertNoError(t, m.AddField(newScalarField(t, 6, "f", TypeI8, LabelOptional)))
	testutil.AssertNoError(t, m.AddField(newScalarField(t, 7, "g", TypeMessage, LabelRepeated)))
	testutil.AssertNoError(t, m.AddField(newScalarField(t, 8, "h", TypeFixed32, LabelOptional)))
	testutil.AssertNoError(t, m.AddField(newScalarField(t, 9, "i", TypeSFixed64, LabelOptional)))

	testutil.AssertNoError(t, Layout(m))

	for _, ptrSize := range []uint8{4, 8} {
		type span struct{ start, end uint32 }
		var spans []span
		for _, f := range m.Fields() {
			sz := f.SizeClass(ptrSize).ByteSize(ptrSize)
			off := f.Offset(ptrSize)
			spans = append(spans, span{off, off + sz})
			testutil.ExpectTrue(t, off%sz == 0)
			testutil.ExpectTrue(t, off >= m.HasbitBytes())
		}
		for i := range spans {
			for j := range spans {
				if i == j {
					continue
				}
				overlap := spans[i].start < spans[j].end && spans[j].start < spans[i].end
				if overlap {
					t.Fatalf("ptrSize=%d: field spans %v and %v overlap", ptrSize, spans[i], spans[j])
				}
			}
		}
	}
}

func TestLayoutHasbitAssignedRequiredFirst(t *testing.T) {
	m := NewMessage()
	testutil.AssertNoError(t, m.SetFullName("pkg.M"))
	testutil.AssertNoError(t, m.AddField(newScalarField(t, 1, "opt", TypeBool, LabelOptional)))
	testutil.AssertNoError(t, m.AddField(newScalarField(t, 2, "req", TypeBool, LabelRequired)))

	testutil.AssertNoError(t, Layout(m))

	req, _ := m.FieldByNumber(2)
	opt, _ := m.FieldByNumber(1)
	testutil.ExpectTrue(t, req.HasbitIndex() < opt.HasbitIndex())
	testutil.ExpectEq(t, uint32(1), m.HasbitBytes())
}

func TestLayoutMessageFieldsHaveNoHasbit(t *testing.T) {
	m := NewMessage()
	testutil.AssertNoError(t, m.SetFullName("pkg.M"))
	testutil.AssertNoError(t, m.AddField(newScalarField(t, 1, "sub", TypeMessage, LabelOptional)))
	testutil.AssertNoError(t, Layout(m))

	f, _ := m.FieldByNumber(1)
	testutil.ExpectEq(t, int32(-1), f.HasbitIndex())
}

func TestLayoutOneofMembersShareOneDiscriminatorSlot(t *testing.T) {
	m := NewMessage()
	testutil.AssertNoError(t, m.SetFullName("pkg.M"))
	idx, err := m.AddOneof("which")
	testutil.AssertNoError(t, err)

	a := newScalarField(t, 1, "a", TypeI32, LabelOneofMember)
	testutil.AssertNoError(t, a.SetOneofIndex(idx))
	b := newScalarField(t, 2, "b", TypeI64, LabelOneofMember)
	testutil.AssertNoError(t, b.SetOneofIndex(idx))
	testutil.AssertNoError(t, m.AddField(a))
	testutil.AssertNoError(t, m.AddField(b))

	testutil.AssertNoError(t, Layout(m))

	testutil.ExpectEq(t, a.CaseOffset(8), b.CaseOffset(8))
	// Each member still keeps its own storage slot (the deliberate
	// simplification from a true tagged union), so a and b's own offsets
	// must differ even though their discriminator offset is shared.
	if a.Offset(8) == b.Offset(8) {
		t.Fatal("expected oneof members to keep independent storage offsets")
	}
}

func TestLayoutRejectsInvertedExtensionRange(t *testing.T) {
	m := NewMessage()
	testutil.AssertNoError(t, m.SetFullName("pkg.M"))
	testutil.AssertNoError(t, m.SetExtensionStart(200))
	testutil.AssertNoError(t, m.SetExtensionEnd(100))

	err := Layout(m)
	testutil.AssertError(t, err)
	protoErr, ok := err.(*Error)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, codeExtensionRangeInvalid, protoErr.Code())
}

func TestLayoutAcceptsWellFormedExtensionRange(t *testing.T) {
	m := NewMessage()
	testutil.AssertNoError(t, m.SetFullName("pkg.M"))
	testutil.AssertNoError(t, m.SetExtensionStart(100))
	testutil.AssertNoError(t, m.SetExtensionEnd(200))
	testutil.AssertNoError(t, Layout(m))
}

func TestLayoutIsIdempotent(t *testing.T) {
	m := NewMessage()
	testutil.AssertNoError(t, m.SetFullName("pkg.M"))
	testutil.AssertNoError(t, m.AddField(newScalarField(t, 1, "a", TypeI32, LabelOptional)))
	testutil.AssertNoError(t, Layout(m))
	size1 := m.Size()

	testutil.AssertNoError(t, m.AddField(newScalarField(t, 2, "b", TypeI64, LabelOptional)))
	testutil.AssertNoError(t, Layout(m))
	size2 := m.Size()

	if size2 <= size1 {
		t.Fatalf("expected size to grow after adding a field and relaying out: %d -> %d", size1, size2)
	}

	testutil.AssertNoError(t, Layout(m))
	testutil.ExpectEq(t, size2, m.Size())
}

func TestLayoutRejectedOnceInstalled(t *testing.T) {
	m := NewMessage()
	testutil.AssertNoError(t, m.SetFullName("pkg.M"))
	testutil.AssertNoError(t, Layout(m))

	tbl := NewTable()
	tx := NewTransaction()
	testutil.AssertNoError(t, tx.Add(m))
	status := tbl.Commit(tx)
	testutil.ExpectTrue(t, status.OK())

	testutil.AssertError(t, Layout(m))
}
