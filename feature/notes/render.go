package notes

import (
	"weread-sync/core/workspace"
	"weread-sync/feature/bootstrap"
)

// highlightColors maps the platform's highlight colors to block colors.
var highlightColors = map[int64]string{
	1: "red",
	2: "purple",
	3: "blue",
	4: "green",
	5: "yellow",
}

// styleEmojis maps highlight styles to callout icons.
var styleEmojis = map[int64]string{
	0: "💡",
	1: "⭐",
	2: "〰️",
}

const (
	defaultEmoji = "〰️"
	reviewEmoji  = "✍️"
)

var blockTypes = map[string]workspace.BlockType{
	"callout":            workspace.BlockCallout,
	"quote":              workspace.BlockQuote,
	"paragraph":          workspace.BlockParagraph,
	"bulleted_list_item": workspace.BlockBulletedList,
	"numbered_list_item": workspace.BlockNumberedList,
}

// BlockType resolves a configured block style, falling back to callout.
func BlockType(name string) workspace.BlockType {
	if t, ok := blockTypes[name]; ok {
		return t
	}
	return workspace.BlockCallout
}

// Render builds the block of a highlight or note. Notes always carry the
// review icon when rendered as callouts.
func Render(text string, style, colorStyle int64, review bool, s bootstrap.Settings) workspace.Block {
	color := "default"
	if s.ShowColor {
		if c, ok := highlightColors[colorStyle]; ok {
			color = c
		}
	}

	emoji := reviewEmoji
	if !review {
		emoji = defaultEmoji
		if e, ok := styleEmojis[style]; ok {
			emoji = e
		}
	}
	return workspace.Text(BlockType(s.BlockType), text, color, emoji)
}
