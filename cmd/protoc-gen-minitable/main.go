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

// Command protoc-gen-minitable is a protoc plugin: it reads a
// CodeGeneratorRequest from stdin (or a raw FileDescriptorSet from
// --descriptor-set, for testing without protoc), links it through the
// symbol table, builds mini-tables and fast-decode tables, and writes a
// CodeGeneratorResponse to stdout.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"
)

func initLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Str("component", "protoc-gen-minitable").Logger()
}

func main() {
	var descriptorSetPath string
	var configPath string

	root := &cobra.Command{
		Use:           "protoc-gen-minitable",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(descriptorSetPath, configPath)
		},
	}
	root.Flags().StringVar(&descriptorSetPath, "descriptor-set", "", "read a serialized FileDescriptorSet from this path instead of stdin")
	root.Flags().StringVar(&configPath, "config", "", "TOML file of generator defaults")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(descriptorSetPath, configPath string) error {
	logger := initLogger()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	req, err := readRequest(descriptorSetPath)
	if err != nil {
		return fmt.Errorf("reading request: %w", err)
	}

	resp, err := generate(req, cfg, logger)
	if err != nil {
		return err
	}
	if resp.GetError() != "" {
		logger.Error().Str("diagnostic", resp.GetError()).Msg("generation rejected")
	}

	out, err := proto.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshaling response: %w", err)
	}
	if _, err := os.Stdout.Write(out); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	if resp.GetError() != "" {
		os.Exit(1)
	}
	return nil
}

// readRequest builds a CodeGeneratorRequest either from stdin (the
// normal protoc-plugin path) or, when descriptorSetPath is set, from a
// standalone FileDescriptorSet — every file in the set becomes both a
// dependency and a file-to-generate, for local testing outside protoc.
func readRequest(descriptorSetPath string) (*pluginpb.CodeGeneratorRequest, error) {
	if descriptorSetPath == "" {
		buf, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		req := &pluginpb.CodeGeneratorRequest{}
		if err := proto.Unmarshal(buf, req); err != nil {
			return nil, fmt.Errorf("unmarshaling CodeGeneratorRequest: %w", err)
		}
		return req, nil
	}

	buf, err := os.ReadFile(descriptorSetPath)
	if err != nil {
		return nil, err
	}
	set := &descriptorpb.FileDescriptorSet{}
	if err := proto.Unmarshal(buf, set); err != nil {
		return nil, fmt.Errorf("unmarshaling FileDescriptorSet: %w", err)
	}

	req := &pluginpb.CodeGeneratorRequest{ProtoFile: set.GetFile()}
	for _, fd := range set.GetFile() {
		req.FileToGenerate = append(req.FileToGenerate, fd.GetName())
	}
	return req, nil
}
