// Package richtext models structured body content as a tree of tagged blocks and
// renders it to HTML through per-kind renderers.
package richtext

import (
	"encoding/json"
	"fmt"
)

// Kind is the block discriminator stored in the "_type" field.
type Kind string

const (
	KindBlock    Kind = "block"
	KindImage    Kind = "image"
	KindCode     Kind = "code"
	KindCallout  Kind = "callout"
	KindMarkdown Kind = "markdown"
)

// Block is one top-level entry of a body.
type Block interface {
	Kind() Kind
	BlockKey() string
}

// Span is a run of text inside a TextBlock. Marks are either decorator names
// (strong, em, ...) or keys into the block's MarkDefs.
type Span struct {
	Key   string   `json:"_key"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// MarkDef is an annotation referenced from span marks. Only links are rendered.
type MarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href,omitempty"`
}

// TextBlock is a paragraph, heading, quote or list item.
type TextBlock struct {
	Key      string    `json:"_key"`
	Style    string    `json:"style,omitempty"`
	ListItem string    `json:"listItem,omitempty"`
	Level    int       `json:"level,omitempty"`
	Children []Span    `json:"children"`
	MarkDefs []MarkDef `json:"markDefs,omitempty"`
}

func (b *TextBlock) Kind() Kind       { return KindBlock }
func (b *TextBlock) BlockKey() string { return b.Key }

// ImageBlock is an inline figure.
type ImageBlock struct {
	Key     string `json:"_key"`
	Ref     string `json:"-"`
	URL     string `json:"-"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

func (b *ImageBlock) Kind() Kind       { return KindImage }
func (b *ImageBlock) BlockKey() string { return b.Key }

func (b *ImageBlock) UnmarshalJSON(data []byte) error {
	var raw struct {
		Key     string `json:"_key"`
		Alt     string `json:"alt"`
		Caption string `json:"caption"`
		URL     string `json:"url"`
		Asset   *struct {
			Ref string `json:"_ref"`
			URL string `json:"url"`
		} `json:"asset"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Key, b.Alt, b.Caption, b.URL = raw.Key, raw.Alt, raw.Caption, raw.URL
	if raw.Asset != nil {
		b.Ref = raw.Asset.Ref
		if raw.Asset.URL != "" {
			b.URL = raw.Asset.URL
		}
	}
	return nil
}

// CodeBlock is a preformatted snippet.
type CodeBlock struct {
	Key      string `json:"_key"`
	Language string `json:"language,omitempty"`
	Code     string `json:"code"`
}

func (b *CodeBlock) Kind() Kind       { return KindCode }
func (b *CodeBlock) BlockKey() string { return b.Key }

// CalloutBlock is a highlighted note. Tone is info, warning or success.
type CalloutBlock struct {
	Key  string `json:"_key"`
	Tone string `json:"tone,omitempty"`
	Text string `json:"text"`
}

func (b *CalloutBlock) Kind() Kind       { return KindCallout }
func (b *CalloutBlock) BlockKey() string { return b.Key }

// MarkdownBlock carries markdown source authored in a plain text field.
type MarkdownBlock struct {
	Key    string `json:"_key"`
	Source string `json:"markdown"`
}

func (b *MarkdownBlock) Kind() Kind       { return KindMarkdown }
func (b *MarkdownBlock) BlockKey() string { return b.Key }

// UnknownBlock keeps the position of a block type this site cannot render.
type UnknownBlock struct {
	Key  string
	Type Kind
}

func (b *UnknownBlock) Kind() Kind       { return b.Type }
func (b *UnknownBlock) BlockKey() string { return b.Key }

// Body is an ordered list of blocks.
type Body []Block

func (b *Body) UnmarshalJSON(data []byte) error {
	body, err := Decode(data)
	if err != nil {
		return err
	}
	*b = body
	return nil
}

// Decode parses a JSON array of blocks, dispatching on "_type". A null or empty
// input yields an empty body.
func Decode(data []byte) (Body, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode rich text: %w", err)
	}

	body := make(Body, 0, len(raws))
	for i, raw := range raws {
		var head struct {
			Type Kind   `json:"_type"`
			Key  string `json:"_key"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, fmt.Errorf("decode rich text block %d: %w", i, err)
		}

		var block Block
		switch head.Type {
		case KindBlock:
			block = &TextBlock{}
		case KindImage:
			block = &ImageBlock{}
		case KindCode:
			block = &CodeBlock{}
		case KindCallout:
			block = &CalloutBlock{}
		case KindMarkdown:
			block = &MarkdownBlock{}
		default:
			body = append(body, &UnknownBlock{Key: head.Key, Type: head.Type})
			continue
		}

		if err := json.Unmarshal(raw, block); err != nil {
			return nil, fmt.Errorf("decode %s block %q: %w", head.Type, head.Key, err)
		}
		body = append(body, block)
	}
	return body, nil
}
