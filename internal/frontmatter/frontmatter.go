package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

const delimiter = "---"

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// CRLF input is normalized to LF first. If the document does not start with a
// frontmatter delimiter, had is false and body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	content = NormalizeNewlines(content)

	open := []byte(delimiter + "\n")
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}

	closeSeq := []byte("\n" + delimiter + "\n")
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		// A closing delimiter on the very last line has no trailing newline.
		if bytes.HasSuffix(rest, []byte("\n"+delimiter)) {
			return rest[:len(rest)-len(delimiter)], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	return rest[:idx+1], rest[idx+len(closeSeq):], true, nil
}

// Join reassembles a document from raw frontmatter and body.
func Join(frontmatter []byte, body []byte) []byte {
	out := make([]byte, 0, len(frontmatter)+len(body)+8)
	out = append(out, delimiter+"\n"...)
	out = append(out, frontmatter...)
	if len(frontmatter) > 0 && frontmatter[len(frontmatter)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, delimiter+"\n"...)
	out = append(out, body...)
	return out
}

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(content []byte) []byte {
	if !bytes.ContainsRune(content, '\r') {
		return content
	}
	out := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(out, []byte("\r"), []byte("\n"))
}

// Decode unmarshals raw frontmatter into out. With strict set, keys that out
// does not declare are rejected.
func Decode(frontmatter []byte, out any, strict bool) error {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(frontmatter))
	dec.KnownFields(strict)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	fields := map[string]any{}
	if err := Decode(frontmatter, &fields, false); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Field is one key of an ordered frontmatter block.
type Field struct {
	Key   string
	Value any
}

// Marshal serializes fields in the given order. Empty string values are skipped.
func Marshal(fields []Field) ([]byte, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range fields {
		if s, ok := f.Value.(string); ok && s == "" {
			continue
		}
		val, err := nodeFromAny(f.Value)
		if err != nil {
			return nil, fmt.Errorf("frontmatter field %q: %w", f.Key, err)
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key}, val)
	}
	if len(n.Content) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func nodeFromAny(v any) (*yaml.Node, error) {
	switch vv := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: vv}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(vv)}, nil
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(vv)}, nil
	case []string:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range vv {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: item})
		}
		return seq, nil
	default:
		var node yaml.Node
		if err := node.Encode(v); err != nil {
			return nil, err
		}
		return &node, nil
	}
}
