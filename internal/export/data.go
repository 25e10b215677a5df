// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// JSONExporter exports the document structure as indented JSON.
type JSONExporter struct{}

// JSON returns a JSON exporter.
func JSON() *JSONExporter { return &JSONExporter{} }

// Export implements Exporter.
func (e *JSONExporter) Export(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension implements Exporter.
func (e *JSONExporter) FileExtension() string { return ".json" }

// MimeType implements Exporter.
func (e *JSONExporter) MimeType() string { return "application/json" }

// YAMLExporter exports the document structure as YAML.
type YAMLExporter struct{}

// YAML returns a YAML exporter.
func YAML() *YAMLExporter { return &YAMLExporter{} }

// Export implements Exporter.
func (e *YAMLExporter) Export(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileExtension implements Exporter.
func (e *YAMLExporter) FileExtension() string { return ".yaml" }

// MimeType implements Exporter.
func (e *YAMLExporter) MimeType() string { return "application/yaml" }
