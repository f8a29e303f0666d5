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

package emitter

import (
	"strings"
	"testing"

	"go.protoreg.dev/protoreg"
	"go.protoreg.dev/protoreg/internal/testutil"
	"go.protoreg.dev/protoreg/minitable"
)

func mustField(t *testing.T, number int32, name string, typ protoreg.Type, label protoreg.Label) *protoreg.FieldDef {
	t.Helper()
	f := protoreg.NewField()
	testutil.AssertNoError(t, f.SetNumber(number))
	testutil.AssertNoError(t, f.SetName(name))
	testutil.AssertNoError(t, f.SetType(typ))
	testutil.AssertNoError(t, f.SetLabel(label))
	return f
}

func TestEmitOrdersMessagesByName(t *testing.T) {
	zMsg := protoreg.NewMessage()
	testutil.AssertNoError(t, zMsg.SetFullName("pkg.Zebra"))
	testutil.AssertNoError(t, zMsg.AddField(mustField(t, 1, "a", protoreg.TypeI32, protoreg.LabelOptional)))
	testutil.AssertNoError(t, protoreg.Layout(zMsg))

	aMsg := protoreg.NewMessage()
	testutil.AssertNoError(t, aMsg.SetFullName("pkg.Aardvark"))
	testutil.AssertNoError(t, protoreg.Layout(aMsg))

	tbl := protoreg.NewTable()
	tx := protoreg.NewTransaction()
	testutil.AssertNoError(t, tx.Add(zMsg))
	testutil.AssertNoError(t, tx.Add(aMsg))
	status := tbl.Commit(tx)
	testutil.ExpectTrue(t, status.OK())

	zTable, err := minitable.Build(zMsg)
	testutil.AssertNoError(t, err)
	aTable, err := minitable.Build(aMsg)
	testutil.AssertNoError(t, err)

	var hdr, src strings.Builder
	units := []MessageUnit{
		{Def: zMsg, MiniTable: zTable},
		{Def: aMsg, MiniTable: aTable},
	}
	err = Emit(&hdr, &src, units, nil, nil)
	testutil.AssertNoError(t, err)

	idxAardvark := strings.Index(hdr.String(), "pkg_Aardvark")
	idxZebra := strings.Index(hdr.String(), "pkg_Zebra")
	if idxAardvark < 0 || idxZebra < 0 {
		t.Fatalf("expected both message names in header output, got: %s", hdr.String())
	}
	if idxAardvark > idxZebra {
		t.Fatal("expected messages to be emitted in fully-qualified-name order regardless of input order")
	}
}

func TestEmitExtensionProducesAccessorsAndRecord(t *testing.T) {
	extendee := protoreg.NewMessage()
	testutil.AssertNoError(t, extendee.SetFullName("pkg.Extendee"))
	testutil.AssertNoError(t, extendee.SetExtensionStart(100))
	testutil.AssertNoError(t, extendee.SetExtensionEnd(200))
	testutil.AssertNoError(t, protoreg.Layout(extendee))

	f := mustField(t, 150, "val", protoreg.TypeI32, protoreg.LabelOptional)
	x := protoreg.NewExtension(f)
	testutil.AssertNoError(t, x.SetFullName("pkg.my_ext"))
	testutil.AssertNoError(t, x.SetExtendeeName("pkg.Extendee"))

	tbl := protoreg.NewTable()
	tx := protoreg.NewTransaction()
	testutil.AssertNoError(t, tx.Add(extendee))
	testutil.AssertNoError(t, tx.Add(x))
	status := tbl.Commit(tx)
	testutil.ExpectTrue(t, status.OK())

	xTable := minitable.BuildExtension(x)
	var hdr, src strings.Builder
	err := Emit(&hdr, &src, nil, nil, []ExtensionUnit{{Def: x, MiniTable: xTable}})
	testutil.AssertNoError(t, err)

	testutil.ExpectMatch(t, "pkg_my_ext_has", hdr.String())
	testutil.ExpectMatch(t, "pkg_my_ext_ext_init", src.String())
	testutil.ExpectMatch(t, "pkg_Extendee_msg_init", src.String())
}

func TestCFieldTypeMapsScalarsToCTypes(t *testing.T) {
	cases := []struct {
		typ  protoreg.Type
		want string
	}{
		{protoreg.TypeBool, "bool"},
		{protoreg.TypeI32, "int32_t"},
		{protoreg.TypeSI32, "int32_t"},
		{protoreg.TypeU32, "uint32_t"},
		{protoreg.TypeI64, "int64_t"},
		{protoreg.TypeSI64, "int64_t"},
		{protoreg.TypeU64, "uint64_t"},
		{protoreg.TypeFixed32, "uint32_t"},
		{protoreg.TypeSFixed32, "int32_t"},
		{protoreg.TypeFixed64, "uint64_t"},
		{protoreg.TypeSFixed64, "int64_t"},
		{protoreg.TypeF32, "float"},
		{protoreg.TypeF64, "double"},
		{protoreg.TypeString, "upb_StringView"},
	}
	for _, c := range cases {
		f := mustField(t, 1, "f", c.typ, protoreg.LabelOptional)
		testutil.ExpectEq(t, c.want, cFieldType(f))
	}
}
