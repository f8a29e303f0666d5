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

package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/pluginpb"

	"go.protoreg.dev/protoreg"
	"go.protoreg.dev/protoreg/emitter"
	"go.protoreg.dev/protoreg/fastdecode"
	"go.protoreg.dev/protoreg/fromdescriptor"
	"go.protoreg.dev/protoreg/minitable"
)

// generate is the driver's core: it walks every file in the request,
// commits each into a shared symbol table in order (so a later file's
// fields can target an earlier file's messages), and emits a header/source
// pair for each file protoc asked us to generate.
func generate(req *pluginpb.CodeGeneratorRequest, cfg fileConfig, logger zerolog.Logger) (*pluginpb.CodeGeneratorResponse, error) {
	params, err := parseParams(req.GetParameter())
	if err != nil {
		return errorResponse(err), nil
	}
	fastTable := params.FastTable || cfg.FastTableDefault

	table := protoreg.NewTable()
	resp := &pluginpb.CodeGeneratorResponse{}
	resp.SupportedFeatures = proto.Uint64(uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL))

	toGenerate := map[string]bool{}
	for _, name := range req.GetFileToGenerate() {
		toGenerate[name] = true
	}

	for _, fd := range req.GetProtoFile() {
		tx, err := fromdescriptor.Build(fd)
		if err != nil {
			return errorResponse(err), nil
		}

		status := table.Commit(tx)
		if !status.OK() {
			return errorResponse(joinCommitErrors(fd.GetName(), status)), nil
		}
		logger.Debug().Str("file", fd.GetName()).Int("defs", tx.Len()).Msg("committed")

		if !toGenerate[fd.GetName()] {
			continue
		}
		header, source, err := emitFile(tx, fastTable)
		if err != nil {
			return errorResponse(fmt.Errorf("%s: %w", fd.GetName(), err)), nil
		}

		outBase := outputPath(cfg.OutputPathTmpl, fd.GetName())
		resp.File = append(resp.File,
			&pluginpb.CodeGeneratorResponse_File{
				Name:    proto.String(outBase + ".h"),
				Content: proto.String(header),
			},
			&pluginpb.CodeGeneratorResponse_File{
				Name:    proto.String(outBase + ".c"),
				Content: proto.String(source),
			},
		)
	}

	return resp, nil
}

// emitFile builds mini-tables and (optionally) fast-decode tables for
// every message/enum tx contributed, then renders them to text.
func emitFile(tx *protoreg.Transaction, fastTable bool) (header, source string, err error) {
	var messages []emitter.MessageUnit
	var enums []emitter.EnumUnit
	var extensions []emitter.ExtensionUnit

	for def := range tx.All() {
		switch def.Kind() {
		case protoreg.KindMessage:
			m := def.(*protoreg.MessageDef)
			mt, err := minitable.Build(m)
			if err != nil {
				return "", "", fmt.Errorf("message %s: %w", m.FullName(), err)
			}
			var ft *fastdecode.Table
			if fastTable {
				ft = fastdecode.Build(m, subIndexLookup(mt))
				mt.FastTableMask = ft.Mask
			}
			messages = append(messages, emitter.MessageUnit{Def: m, MiniTable: mt, FastTable: ft})
		case protoreg.KindEnum:
			e := def.(*protoreg.EnumDef)
			enums = append(enums, emitter.EnumUnit{Def: e, MiniTable: minitable.BuildEnum(e)})
		case protoreg.KindExtension:
			x := def.(*protoreg.ExtensionDef)
			extensions = append(extensions, emitter.ExtensionUnit{Def: x, MiniTable: minitable.BuildExtension(x)})
		}
	}

	var hdrBuf, srcBuf bytes.Buffer
	if err := emitter.Emit(&hdrBuf, &srcBuf, messages, enums, extensions); err != nil {
		return "", "", err
	}
	return hdrBuf.String(), srcBuf.String(), nil
}

// subIndexLookup adapts a built mini-table's field array into the
// per-field sub-reference lookup fastdecode.Build needs.
func subIndexLookup(mt *minitable.Table) func(*protoreg.FieldDef) int32 {
	byNumber := make(map[int32]int32, len(mt.Fields))
	for _, fd := range mt.Fields {
		byNumber[fd.Number] = fd.SubIndex
	}
	return func(f *protoreg.FieldDef) int32 {
		return byNumber[f.Number()]
	}
}

// outputPath expands tmpl's {dir}/{base} placeholders against protoFile (a
// path relative to the proto_path root, e.g. "pkg/foo.proto"), producing
// the generated pair's shared basename with its own ".h"/".c" suffix left
// for the caller to append.
func outputPath(tmpl, protoFile string) string {
	trimmed := strings.TrimSuffix(protoFile, ".proto")
	dir, base := "", trimmed
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		dir, base = trimmed[:idx], trimmed[idx+1:]
	}
	out := strings.ReplaceAll(tmpl, "{dir}", dir)
	out = strings.ReplaceAll(out, "{base}", base)
	return strings.TrimPrefix(out, "/")
}

func joinCommitErrors(file string, status *protoreg.CommitStatus) error {
	msgs := make([]string, 0, len(status.Errors))
	for _, e := range status.Errors {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("%s: commit failed: %s", file, strings.Join(msgs, "; "))
}

func errorResponse(err error) *pluginpb.CodeGeneratorResponse {
	return &pluginpb.CodeGeneratorResponse{Error: proto.String(err.Error())}
}
