// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"
)

// csvTable renders a CSV file as a Markdown table. The first record is the
// header.
func csvTable(data []byte) (string, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", errors.New("no columns to parse from file")
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(strings.ReplaceAll(strings.TrimSpace(c), "|", `\|`))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(records[0])
	sep := make([]string, len(records[0]))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)
	for _, rec := range records[1:] {
		writeRow(rec)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// jsonIndent re-indents a JSON document with two spaces. Key order and
// string escapes are kept as written.
func jsonIndent(data []byte) (string, error) {
	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(data), "", "  "); err != nil {
		return "", err
	}
	return out.String(), nil
}

// yamlNormalize re-emits a YAML document in block style, keeping key order.
func yamlNormalize(data []byte) (string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return "", err
	}
	if node.Kind == 0 {
		return "", nil
	}
	clearFlowStyle(&node)

	var out bytes.Buffer
	enc := yaml.NewEncoder(&out)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return out.String(), nil
}

func clearFlowStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	for _, c := range n.Content {
		clearFlowStyle(c)
	}
}

// xmlIndent validates an XML document and re-emits it indented by two
// spaces. Prefixed names are kept as written. Whitespace-only text between
// elements is dropped.
func xmlIndent(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out bytes.Buffer
	enc := xml.NewEncoder(&out)
	enc.Indent("", "  ")

	elements := 0
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.ProcInst:
			if t.Target == "xml" {
				// The encoder would not break the line after the declaration.
				fmt.Fprintf(&out, "<?xml %s?>\n", bytes.TrimSpace(t.Inst))
				continue
			}
		case xml.CharData:
			if len(bytes.TrimSpace(t)) == 0 {
				continue
			}
		case xml.StartElement:
			elements++
			t.Name = rawName(t.Name)
			attrs := make([]xml.Attr, len(t.Attr))
			for i, a := range t.Attr {
				attrs[i] = xml.Attr{Name: rawName(a.Name), Value: a.Value}
			}
			t.Attr = attrs
			tok = t
		case xml.EndElement:
			t.Name = rawName(t.Name)
			tok = t
		}
		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return "", err
		}
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	if elements == 0 {
		return "", errors.New("no element found")
	}
	return out.String(), nil
}

// rawName folds a prefix back into the local name so the encoder writes it
// verbatim.
func rawName(n xml.Name) xml.Name {
	if n.Space == "" {
		return n
	}
	return xml.Name{Local: fmt.Sprintf("%s:%s", n.Space, n.Local)}
}
