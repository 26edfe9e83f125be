// Package transcript reads Claude Code session transcripts: append-only
// JSONL files where each line is an envelope carrying a user, assistant,
// system or progress entry. The Reader keeps a byte cursor so repeated
// reads return each line exactly once.
package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ItemKind classifies a display item.
type ItemKind int

const (
	KindUser ItemKind = iota
	KindAssistant
	KindToolUse
	KindToolResult
	KindSystem
	KindProgress
)

// Label returns the fixed-width prefix shown in the transcript pane.
func (k ItemKind) Label() string {
	switch k {
	case KindUser:
		return "USER"
	case KindAssistant:
		return "ASST"
	case KindToolUse:
		return "TOOL"
	case KindToolResult:
		return "RSLT"
	case KindSystem:
		return "SYS "
	case KindProgress:
		return "PROG"
	}
	return "    "
}

// Item is one displayable transcript entry. A single envelope can yield
// several items (one per content block).
type Item struct {
	Kind      ItemKind
	Timestamp time.Time
	Text      string
}

// Envelope is one raw JSONL line.
type Envelope struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Message   *Message        `json:"message"`
	Content   json.RawMessage `json:"content"`
}

// Message is the inner message of user/assistant/system envelopes.
type Message struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// Content is either a plain string or an array of content blocks.
type Content struct {
	Text   string
	Blocks []Block
}

// UnmarshalJSON accepts both content encodings.
func (c *Content) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		return nil
	}
	var blocks []Block
	if err := json.Unmarshal(data, &blocks); err == nil {
		c.Blocks = blocks
		return nil
	}
	return fmt.Errorf("content is neither string nor block array")
}

// Block is one element of a block-array message content.
type Block struct {
	Type    string          `json:"type"`
	Text    string          `json:"text"`
	Name    string          `json:"name"`
	Input   json.RawMessage `json:"input"`
	Content json.RawMessage `json:"content"`
}

const (
	toolInputPreviewLen  = 50
	toolResultPreviewLen = 80
)

// ParseEnvelope converts one envelope into display items. Unknown envelope
// types and empty messages yield nothing.
func ParseEnvelope(env *Envelope) []Item {
	switch env.Type {
	case "user":
		return messageItems(env, KindUser)
	case "assistant":
		return messageItems(env, KindAssistant)
	case "system":
		text := firstMessageText(env)
		if text == "" {
			return nil
		}
		return []Item{{Kind: KindSystem, Timestamp: env.Timestamp, Text: text}}
	case "progress":
		var text string
		if len(env.Content) > 0 {
			json.Unmarshal(env.Content, &text)
		}
		if text == "" {
			return nil
		}
		return []Item{{Kind: KindProgress, Timestamp: env.Timestamp, Text: text}}
	}
	return nil
}

func messageItems(env *Envelope, kind ItemKind) []Item {
	if env.Message == nil {
		return nil
	}
	content := env.Message.Content

	if content.Blocks == nil {
		if content.Text == "" {
			return nil
		}
		return []Item{{Kind: kind, Timestamp: env.Timestamp, Text: content.Text}}
	}

	var items []Item
	for _, block := range content.Blocks {
		switch block.Type {
		case "text":
			if block.Text != "" {
				items = append(items, Item{Kind: kind, Timestamp: env.Timestamp, Text: block.Text})
			}
		case "tool_use":
			items = append(items, Item{Kind: KindToolUse, Timestamp: env.Timestamp, Text: toolUseText(block)})
		case "tool_result":
			items = append(items, Item{Kind: KindToolResult, Timestamp: env.Timestamp, Text: toolResultText(block)})
		}
	}
	return items
}

// toolUseText renders a tool call as "name (firstKey: preview)".
func toolUseText(block Block) string {
	name := block.Name
	if name == "" {
		name = "unknown"
	}
	if len(block.Input) == 0 {
		return name
	}
	// Walk the object in document order so the preview field is stable.
	dec := json.NewDecoder(bytes.NewReader(block.Input))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return name
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			break
		}
		key, _ := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			break
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return fmt.Sprintf("%s (%s: %s)", name, key, truncateRunes(s, toolInputPreviewLen))
		}
	}
	return name
}

// toolResultText extracts a short preview from a tool result, whose content
// is a string or an array of text blocks.
func toolResultText(block Block) string {
	if len(block.Content) == 0 {
		return "[result]"
	}
	var s string
	if err := json.Unmarshal(block.Content, &s); err == nil {
		return truncateRunes(s, toolResultPreviewLen)
	}
	var blocks []Block
	if err := json.Unmarshal(block.Content, &blocks); err == nil {
		for _, b := range blocks {
			if b.Text != "" {
				return truncateRunes(b.Text, toolResultPreviewLen)
			}
		}
	}
	return "[result]"
}

func firstMessageText(env *Envelope) string {
	if env.Message == nil {
		return ""
	}
	content := env.Message.Content
	if content.Blocks == nil {
		return content.Text
	}
	for _, block := range content.Blocks {
		if block.Type == "text" && block.Text != "" {
			return block.Text
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
