package kustomizebuild

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/octopilot/secret-manager-controller/internal/errs"
	"github.com/octopilot/secret-manager-controller/internal/secretdata"
)

// secretDocument is the minimal shape this package cares about within a
// multi-document YAML stream.
type secretDocument struct {
	Kind       string            `yaml:"kind"`
	Data       map[string]string `yaml:"data"`
	StringData map[string]string `yaml:"stringData"`
}

// ExtractSecrets walks a multi-document YAML stream (as produced by
// Builder.Build), selects documents whose kind is Secret, and decodes
// their data (base64) and stringData (plain) into logical-key entries
// (spec §4.5).
func ExtractSecrets(docs []byte) ([]secretdata.Entry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(docs))

	var entries []secretdata.Entry
	for {
		var doc secretDocument
		err := dec.Decode(&doc)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errs.New(errs.KindTemplating, "kustomizebuild.ExtractSecrets", fmt.Errorf("decoding document: %w", err))
		}
		if doc.Kind != "Secret" {
			continue
		}

		for k, v := range doc.StringData {
			entries = append(entries, secretdata.Entry{LogicalKey: k, RawValue: v, Enabled: true, OriginFile: "kustomize", Route: secretdata.RouteSecret})
		}
		for k, v := range doc.Data {
			decoded, err := base64.StdEncoding.DecodeString(v)
			if err != nil {
				return nil, errs.New(errs.KindTemplating, "kustomizebuild.ExtractSecrets", fmt.Errorf("decoding base64 data key %q: %w", k, err))
			}
			entries = append(entries, secretdata.Entry{LogicalKey: k, RawValue: string(decoded), Enabled: true, OriginFile: "kustomize", Route: secretdata.RouteSecret})
		}
	}
	return entries, nil
}
