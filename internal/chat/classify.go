package chat

import (
	"strings"
	"time"
	"unicode"

	"roomhub/internal/presence"
)

type MessageKind string

const (
	KindText        MessageKind = "text"
	KindMovie       MessageKind = "movie"
	KindAIChat      MessageKind = "ai_chat"
	KindMaxenceChat MessageKind = "maxence_chat"
)

// Command maps an @prefix typed in chat to the kind it produces.
type Command struct {
	Token string
	Kind  MessageKind
	// NeedsArg commands stay plain text when nothing follows the token.
	NeedsArg bool
}

// DefaultCommands is matched in order, case-insensitively.
var DefaultCommands = []Command{
	{Token: "@电影", Kind: KindMovie, NeedsArg: true},
	{Token: "@川小农", Kind: KindAIChat},
	{Token: "@maxence", Kind: KindMaxenceChat},
}

type Classifier struct {
	commands []Command
	now      func() time.Time
}

func NewClassifier(commands []Command) *Classifier {
	if commands == nil {
		commands = DefaultCommands
	}
	return &Classifier{commands: commands, now: time.Now}
}

func trustedKind(t string) (MessageKind, bool) {
	switch k := MessageKind(t); k {
	case KindMovie, KindAIChat, KindMaxenceChat:
		return k, true
	}
	return "", false
}

// Classify resolves msg into an envelope for sender. ok is false when the
// sender has no session; nothing should be delivered in that case.
// Command messages with nothing after the token keep an empty content.
func (c *Classifier) Classify(sender *presence.Session, msg InboundMessage) (Envelope, bool) {
	if sender == nil {
		return Envelope{}, false
	}

	kind, text := c.resolve(msg)
	return Envelope{
		Nickname:  sender.Nickname,
		Content:   text,
		Type:      kind,
		Timestamp: formatTime(c.now()),
	}, true
}

func (c *Classifier) resolve(msg InboundMessage) (MessageKind, string) {
	if kind, ok := trustedKind(msg.Type); ok {
		return kind, msg.Content
	}

	text := msg.Message
	if !strings.HasPrefix(text, "@") {
		return KindText, text
	}

	command, rest, hasRest := splitCommand(text)
	for _, cmd := range c.commands {
		if !strings.EqualFold(command, cmd.Token) {
			continue
		}
		if cmd.NeedsArg && !hasRest {
			break
		}
		return cmd.Kind, strings.TrimSpace(rest)
	}
	return KindText, text
}

// splitCommand splits text at its first run of whitespace.
func splitCommand(text string) (command, rest string, hasRest bool) {
	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return text, "", false
	}
	return text[:i], strings.TrimLeftFunc(text[i:], unicode.IsSpace), true
}
