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

func TestKindString(t *testing.T) {
	cases := []struct {
		kind Kind
		want string
	}{
		{KindMessage, "message"},
		{KindEnum, "enum"},
		{KindService, "service"},
		{KindExtension, "extension"},
		{KindUnresolved, "unresolved"},
		{Kind(200), "unresolved"},
	}
	for _, c := range cases {
		testutil.ExpectEq(t, c.want, c.kind.String())
	}
}

func TestSizeClassByteSize(t *testing.T) {
	testutil.ExpectEq(t, uint32(1), SizeClass1.ByteSize(8))
	testutil.ExpectEq(t, uint32(2), SizeClass2.ByteSize(8))
	testutil.ExpectEq(t, uint32(4), SizeClass4.ByteSize(8))
	testutil.ExpectEq(t, uint32(8), SizeClass8.ByteSize(8))
	testutil.ExpectEq(t, uint32(4), SizeClassPointer.ByteSize(4))
	testutil.ExpectEq(t, uint32(8), SizeClassPointer.ByteSize(8))
}

func TestTypeIsScalar(t *testing.T) {
	testutil.ExpectTrue(t, TypeI32.IsScalar())
	testutil.ExpectTrue(t, TypeSI64.IsScalar())
	testutil.ExpectFalse(t, TypeMessage.IsScalar())
	testutil.ExpectFalse(t, TypeEnum.IsScalar())
	testutil.ExpectFalse(t, TypeGroup.IsScalar())
	testutil.ExpectFalse(t, TypeUnknown.IsScalar())
}
