package quilr_guardrail

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/valyala/fastjson"
)

var errUnsupportedShape = errors.New("unsupported request shape")

// ChatMessage is one conversation turn as carried on the wire.
type ChatMessage struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

// ContentPart is one item of a multi-part content list.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// MessageContent is either a bare string or a list of parts. IsText records
// which wire form the content arrived in so redaction writes it back in the
// same shape instead of re-deriving it.
type MessageContent struct {
	IsText bool
	Text   string
	Parts  []ContentPart
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.IsText {
		return json.Marshal(c.Text)
	}
	if c.Parts == nil {
		return []byte("null"), nil
	}
	return json.Marshal(c.Parts)
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = MessageContent{}
		return nil
	}
	switch data[0] {
	case '"':
		c.IsText = true
		c.Parts = nil
		return json.Unmarshal(data, &c.Text)
	case '[':
		c.IsText = false
		c.Text = ""
		return json.Unmarshal(data, &c.Parts)
	}
	return fmt.Errorf("%w: content is neither string nor list", errUnsupportedShape)
}

// TextValue flattens content down to checkable text. Multi-part content
// joins its text parts with newlines. ok is false when no text exists.
func (c MessageContent) TextValue() (string, bool) {
	if c.IsText {
		return c.Text, c.Text != ""
	}
	var texts []string
	for _, part := range c.Parts {
		if part.Type == "text" && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	if len(texts) == 0 {
		return "", false
	}
	return strings.Join(texts, "\n"), true
}

// SetText writes replacement text into the content, preserving its wire
// shape: a bare string stays a string, multi-part content takes the text in
// its first text part and drops the remaining parts.
func (c *MessageContent) SetText(text string) {
	if c.IsText {
		c.Text = text
		return
	}
	for _, part := range c.Parts {
		if part.Type == "text" {
			part.Text = text
			c.Parts = []ContentPart{part}
			return
		}
	}
	*c = MessageContent{IsText: true, Text: text}
}

type requestShape int

const (
	shapeNone requestShape = iota
	shapeChat
	shapeResponses
)

// adaptedRequest is the normalized moderation payload plus the notes needed
// to rebuild the original body shape after redaction.
type adaptedRequest struct {
	shape        requestShape
	messages     json.RawMessage
	count        int
	instructions bool
	stringInput  bool
}

// adaptRequest flattens the two supported body shapes into the ordered
// message list the moderation service checks. Chat-completions bodies pass
// their messages through verbatim; responses bodies fold instructions into
// a leading system message and normalize input to the list form. Bodies
// carrying neither shape come back as shapeNone.
func adaptRequest(body *fastjson.Value) (*adaptedRequest, error) {
	if mv := body.Get("messages"); mv != nil {
		if mv.Type() != fastjson.TypeArray {
			return nil, fmt.Errorf("%w: messages is not a list", errUnsupportedShape)
		}
		items := mv.GetArray()
		if len(items) == 0 {
			return &adaptedRequest{shape: shapeNone}, nil
		}
		return &adaptedRequest{
			shape:    shapeChat,
			messages: mv.MarshalTo(nil),
			count:    len(items),
		}, nil
	}

	iv := body.Get("input")
	if iv == nil {
		return &adaptedRequest{shape: shapeNone}, nil
	}

	ar := &adaptedRequest{shape: shapeResponses}
	msgs := make([]ChatMessage, 0, 4)
	if inst := body.Get("instructions"); inst != nil && inst.Type() == fastjson.TypeString {
		if text := string(inst.GetStringBytes()); text != "" {
			msgs = append(msgs, ChatMessage{
				Role:    "system",
				Content: MessageContent{IsText: true, Text: text},
			})
			ar.instructions = true
		}
	}
	switch iv.Type() {
	case fastjson.TypeString:
		ar.stringInput = true
		msgs = append(msgs, ChatMessage{
			Role:    "user",
			Content: MessageContent{IsText: true, Text: string(iv.GetStringBytes())},
		})
	case fastjson.TypeArray:
		var items []ChatMessage
		if err := json.Unmarshal(iv.MarshalTo(nil), &items); err != nil {
			return nil, fmt.Errorf("%w: %v", errUnsupportedShape, err)
		}
		msgs = append(msgs, items...)
	default:
		return nil, fmt.Errorf("%w: input is neither string nor list", errUnsupportedShape)
	}
	if len(msgs) == 0 {
		return &adaptedRequest{shape: shapeNone}, nil
	}
	raw, err := json.Marshal(msgs)
	if err != nil {
		return nil, err
	}
	ar.messages = raw
	ar.count = len(msgs)
	return ar, nil
}

// applyRedactedRequest patches the replacement messages back into the parsed
// body in place, leaving every sibling field untouched. Responses bodies are
// rebuilt positionally: prepended instructions peel off the front and the
// remainder becomes input, collapsing back to a bare string when the
// original input was one and exactly one non-system message remains.
func applyRedactedRequest(body *fastjson.Value, ar *adaptedRequest, redacted json.RawMessage) error {
	obj := body.GetObject()
	if obj == nil {
		return fmt.Errorf("%w: body is not an object", errUnsupportedShape)
	}

	if ar.shape == shapeChat {
		mv, err := fastjson.ParseBytes(redacted)
		if err != nil {
			return fmt.Errorf("invalid replacement messages: %w", err)
		}
		obj.Set("messages", mv)
		return nil
	}

	var msgs []ChatMessage
	if err := json.Unmarshal(redacted, &msgs); err != nil {
		return fmt.Errorf("invalid replacement messages: %w", err)
	}
	if ar.instructions && len(msgs) > 0 && msgs[0].Role == "system" {
		text, _ := msgs[0].Content.TextValue()
		iv, err := jsonValue(text)
		if err != nil {
			return err
		}
		obj.Set("instructions", iv)
		msgs = msgs[1:]
	}
	if ar.stringInput {
		var nonSystem []ChatMessage
		for _, m := range msgs {
			if m.Role != "system" {
				nonSystem = append(nonSystem, m)
			}
		}
		if len(nonSystem) == 1 && nonSystem[0].Content.IsText {
			sv, err := jsonValue(nonSystem[0].Content.Text)
			if err != nil {
				return err
			}
			obj.Set("input", sv)
			return nil
		}
	}
	lv, err := jsonValue(msgs)
	if err != nil {
		return err
	}
	obj.Set("input", lv)
	return nil
}

// jsonValue converts a marshalable value into a fastjson node for in-place
// body patching.
func jsonValue(v interface{}) (*fastjson.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return fastjson.ParseBytes(b)
}
