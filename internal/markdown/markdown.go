// Package markdown builds the message-markup fragments herald emits:
// user mentions, message links, fences and bounded content.
package markdown

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// EmptyTopicDisplayName is shown for messages sent to the empty topic.
const EmptyTopicDisplayName = "general chat"

// SilentMention renders a mention that links to the user without notifying them.
func SilentMention(fullName string, userID int64) string {
	return fmt.Sprintf("@_**%s|%d**", fullName, userID)
}

var brokenLinkChars = regexp.MustCompile("[`>*&\\[\\]]|\\$\\$")

var linkEscaper = strings.NewReplacer(
	"`", "&#96;",
	">", "&gt;",
	"*", "&#42;",
	"&", "&amp;",
	"$$", "&#36;&#36;",
	"[", "&#91;",
	"]", "&#93;",
)

// MessageLink renders a link to a single channel message. Names that would
// break the compact #**channel>topic@id** syntax get a plain markdown link
// to the narrow URL instead.
func MessageLink(streamID int64, streamName, topic string, messageID int64) string {
	if brokenLinkChars.MatchString(streamName) || brokenLinkChars.MatchString(topic) {
		return fallbackMessageLink(streamID, streamName, topic, messageID)
	}
	return fmt.Sprintf("#**%s>%s@%d**", streamName, topic, messageID)
}

func fallbackMessageLink(streamID int64, streamName, topic string, messageID int64) string {
	topicDisplay := topic
	if topicDisplay == "" {
		topicDisplay = EmptyTopicDisplayName
	}
	text := fmt.Sprintf("#%s > %s @ 💬", linkEscaper.Replace(streamName), linkEscaper.Replace(topicDisplay))
	link := fmt.Sprintf("#narrow/channel/%d-%s/topic/%s/near/%d",
		streamID, EncodeHashComponent(streamName), EncodeHashComponent(topic), messageID)
	return fmt.Sprintf("[%s](%s)", text, link)
}

// EncodeHashComponent encodes s for use inside a narrow URL fragment, where
// '%' is written as '.'.
func EncodeHashComponent(s string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	var b strings.Builder
	b.Grow(len(encoded))
	for _, r := range encoded {
		switch r {
		case '%':
			b.WriteByte('.')
		case '.':
			b.WriteString(".2E")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Truncate shortens content to at most maxLen characters, ending with marker
// when anything was cut.
func Truncate(content string, maxLen int, marker string) string {
	if utf8.RuneCountInString(content) <= maxLen {
		return content
	}
	keep := maxLen - utf8.RuneCountInString(marker)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(content)
	return string(runes[:keep]) + marker
}

// UnusedFence returns a backtick fence longer than any backtick run in
// content, and at least three long, so wrapping content in it cannot close
// early on a fence nested inside content.
func UnusedFence(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	length := 3
	if longest >= length {
		length = longest + 1
	}
	return strings.Repeat("`", length)
}

// NormalizeTopic folds a topic onto a single line.
func NormalizeTopic(topic string) string {
	topic = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, topic)
	return strings.TrimSpace(topic)
}
