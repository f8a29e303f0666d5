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

import (
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"go.protoreg.dev/protoreg"
	"go.protoreg.dev/protoreg/internal/testutil"
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

func commitOne(t *testing.T, defs ...protoreg.Def) *protoreg.Table {
	t.Helper()
	tbl := protoreg.NewTable()
	tx := protoreg.NewTransaction()
	for _, d := range defs {
		testutil.AssertNoError(t, tx.Add(d))
	}
	status := tbl.Commit(tx)
	testutil.ExpectTrue(t, status.OK())
	return tbl
}

func TestWireTypeOfFixedWidthIntegersUsesFixedWireType(t *testing.T) {
	cases := []struct {
		typ  protoreg.Type
		want protowire.Type
	}{
		{protoreg.TypeFixed32, protowire.Fixed32Type},
		{protoreg.TypeSFixed32, protowire.Fixed32Type},
		{protoreg.TypeFixed64, protowire.Fixed64Type},
		{protoreg.TypeSFixed64, protowire.Fixed64Type},
		{protoreg.TypeU32, protowire.VarintType},
		{protoreg.TypeI64, protowire.VarintType},
	}
	for _, c := range cases {
		f := mustField(t, 1, "f", c.typ, protoreg.LabelOptional)
		testutil.ExpectEq(t, c.want, wireTypeOf(f))
	}
}

func TestBuildFieldsInAscendingNumberOrder(t *testing.T) {
	m := protoreg.NewMessage()
	testutil.AssertNoError(t, m.SetFullName("pkg.M"))
	testutil.AssertNoError(t, m.AddField(mustField(t, 5, "e", protoreg.TypeI32, protoreg.LabelOptional)))
	testutil.AssertNoError(t, m.AddField(mustField(t, 1, "a", protoreg.TypeI32, protoreg.LabelOptional)))
	testutil.AssertNoError(t, m.AddField(mustField(t, 3, "c", protoreg.TypeI32, protoreg.LabelOptional)))
	testutil.AssertNoError(t, protoreg.Layout(m))
	commitOne(t, m)

	table, err := Build(m)
	testutil.AssertNoError(t, err)

	var got []int32
	for _, f := range table.Fields {
		got = append(got, f.Number)
	}
	testutil.ExpectSliceEq(t, []int32{1, 3, 5}, got)
}

func TestBuildDenseBelowRequiresContiguousFromOne(t *testing.T) {
	m := protoreg.NewMessage()
	testutil.AssertNoError(t, m.SetFullName("pkg.M"))
	testutil.AssertNoError(t, m.AddField(mustField(t, 1, "a", protoreg.TypeI32, protoreg.LabelOptional)))
	testutil.AssertNoError(t, m.AddField(mustField(t, 2, "b", protoreg.TypeI32, protoreg.LabelOptional)))
	testutil.AssertNoError(t, m.AddField(mustField(t, 4, "d", protoreg.TypeI32, protoreg.LabelOptional)))
	testutil.AssertNoError(t, protoreg.Layout(m))
	commitOne(t, m)

	table, err := Build(m)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 2, table.DenseBelow)
}

func TestBuildRequiredCount(t *testing.T) {
	m := protoreg.NewMessage()
	testutil.AssertNoError(t, m.SetFullName("pkg.M"))
	testutil.AssertNoError(t, m.AddField(mustField(t, 1, "a", protoreg.TypeI32, protoreg.LabelRequired)))
	testutil.AssertNoError(t, m.AddField(mustField(t, 2, "b", protoreg.TypeI32, protoreg.LabelRequired)))
	testutil.AssertNoError(t, m.AddField(mustField(t, 3, "c", protoreg.TypeI32, protoreg.LabelOptional)))
	testutil.AssertNoError(t, protoreg.Layout(m))
	commitOne(t, m)

	table, err := Build(m)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 2, table.RequiredCount)
}

func TestBuildAssignsSubRefForMessageField(t *testing.T) {
	target := protoreg.NewMessage()
	testutil.AssertNoError(t, target.SetFullName("pkg.Target"))
	testutil.AssertNoError(t, protoreg.Layout(target))

	m := protoreg.NewMessage()
	testutil.AssertNoError(t, m.SetFullName("pkg.M"))
	f := mustField(t, 1, "sub", protoreg.TypeMessage, protoreg.LabelOptional)
	testutil.AssertNoError(t, f.SetTypeName("pkg.Target"))
	testutil.AssertNoError(t, m.AddField(f))
	testutil.AssertNoError(t, protoreg.Layout(m))
	commitOne(t, target, m)

	table, err := Build(m)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 1, len(table.SubRefs))
	testutil.ExpectEq(t, int32(0), table.Fields[0].SubIndex)
	testutil.ExpectEq(t, "pkg.Target", table.SubRefs[0].Target.FullName())
}

func TestBuildScalarFieldHasNoSubRef(t *testing.T) {
	m := protoreg.NewMessage()
	testutil.AssertNoError(t, m.SetFullName("pkg.M"))
	testutil.AssertNoError(t, m.AddField(mustField(t, 1, "a", protoreg.TypeI32, protoreg.LabelOptional)))
	testutil.AssertNoError(t, protoreg.Layout(m))
	commitOne(t, m)

	table, err := Build(m)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 0, len(table.SubRefs))
	testutil.ExpectEq(t, int32(noSub), table.Fields[0].SubIndex)
}

func TestBuildExtensionCarriesExtendeeAndFieldDescriptor(t *testing.T) {
	extendee := protoreg.NewMessage()
	testutil.AssertNoError(t, extendee.SetFullName("pkg.Extendee"))
	testutil.AssertNoError(t, extendee.SetExtensionStart(100))
	testutil.AssertNoError(t, extendee.SetExtensionEnd(200))
	testutil.AssertNoError(t, protoreg.Layout(extendee))

	f := mustField(t, 150, "val", protoreg.TypeI32, protoreg.LabelOptional)
	x := protoreg.NewExtension(f)
	testutil.AssertNoError(t, x.SetFullName("pkg.my_ext"))
	testutil.AssertNoError(t, x.SetExtendeeName("pkg.Extendee"))
	commitOne(t, extendee, x)

	table := BuildExtension(x)
	testutil.ExpectEq(t, "pkg.Extendee", table.Extendee)
	testutil.ExpectEq(t, int32(150), table.Field.Number)
	if table.SubRef != nil {
		t.Fatal("expected a scalar extension to have no SubRef")
	}
}

func TestBuildEnumSortsByValue(t *testing.T) {
	e := protoreg.NewEnum()
	testutil.AssertNoError(t, e.SetFullName("pkg.E"))
	testutil.AssertNoError(t, e.AddValue("B", 2))
	testutil.AssertNoError(t, e.AddValue("A", 1))
	testutil.AssertNoError(t, e.SetClosed(true))
	commitOne(t, e)

	table := BuildEnum(e)
	testutil.ExpectSliceEq(t, []int64{1, 2}, table.Values)
	testutil.ExpectTrue(t, table.Closed)
}

func TestPresenceEncodingThreeWay(t *testing.T) {
	m := protoreg.NewMessage()
	testutil.AssertNoError(t, m.SetFullName("pkg.M"))
	idx, err := m.AddOneof("which")
	testutil.AssertNoError(t, err)

	oneofMember := mustField(t, 1, "a", protoreg.TypeI32, protoreg.LabelOneofMember)
	testutil.AssertNoError(t, oneofMember.SetOneofIndex(idx))
	hasbitField := mustField(t, 2, "b", protoreg.TypeI32, protoreg.LabelOptional)
	noPresenceField := mustField(t, 3, "c", protoreg.TypeMessage, protoreg.LabelOptional)

	testutil.AssertNoError(t, m.AddField(oneofMember))
	testutil.AssertNoError(t, m.AddField(hasbitField))
	testutil.AssertNoError(t, m.AddField(noPresenceField))
	testutil.AssertNoError(t, protoreg.Layout(m))
	commitOne(t, m)

	table, err := Build(m)
	testutil.AssertNoError(t, err)

	byNumber := map[int32]FieldDescriptor{}
	for _, fd := range table.Fields {
		byNumber[fd.Number] = fd
	}

	testutil.ExpectTrue(t, byNumber[1].Presence < 0)
	testutil.ExpectTrue(t, byNumber[2].Presence >= 0)
	testutil.ExpectEq(t, int32(0), byNumber[3].Presence)
}
