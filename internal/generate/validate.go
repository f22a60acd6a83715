// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"fmt"
	"strings"
)

// Validation failure reasons, checked in this order.
const (
	ReasonFewBullets = "not enough actionable bullet points"
	ReasonStructure  = "not enough structure (intro, bullets, closing)"
	ReasonEmoji      = "emojis detected"
	ReasonWordLimit  = "word count exceeds limit"
)

const (
	bulletMarker = "-"
	minBullets   = 3

	// framingLines counts the opening and closing lines around the bullets.
	framingLines = 2
)

// bannedEmoji lists the face and creature emoji a draft must not contain.
// Every rune counts on its own, including the U+FE0F variation selector
// that follows U+2639.
const bannedEmoji = "😀😁😂🤣😃😄😅😆😉😊😋😎😍😘🥰😗😙😚🙂🤗" +
	"🤩🤔🤨😐😑😶🙄😏😣😥😮🤐😯😪😫😴😌😛😜😝" +
	"🤤😒😓😔😕🙃🤑😲☹️🙁😖😞😟😤😢😭😦😧😨" +
	"😩🤯😬😰😱🥵🥶😳🤪😵😡😠🤬😷🤒🤕🤢🤮🥴😇" +
	"🥳🥺🤠🤡🤥🤫🤭🧐🤓😈👿👹👺💀👻👽👾🤖😺😸" +
	"😹😻😼😽🙀😿😾"

// ValidationError reports a draft that breaks the post structure contract.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("generated post invalid: %s", e.Reason)
}

// Validate checks text against the post contract: at least three "-"
// bullets, an opening and closing line beyond the bullets, no banned emoji,
// and at most limit words. The first failing rule is returned as a
// *ValidationError.
func Validate(text string, limit int) error {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	bullets := 0
	for _, l := range lines {
		if strings.HasPrefix(l, bulletMarker) {
			bullets++
		}
	}
	if bullets < minBullets {
		return &ValidationError{Reason: ReasonFewBullets}
	}
	if len(lines) < bullets+framingLines {
		return &ValidationError{Reason: ReasonStructure}
	}
	if strings.ContainsAny(text, bannedEmoji) {
		return &ValidationError{Reason: ReasonEmoji}
	}
	if WordCount(text) > limit {
		return &ValidationError{Reason: ReasonWordLimit}
	}
	return nil
}

// WordCount returns the number of whitespace-delimited words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
