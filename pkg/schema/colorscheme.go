package schema

// Schema trees for the two color scheme dialects: the JSON
// sublime-color-scheme format and the legacy tmTheme property list.

var fontStyleWords = []string{
	"bold", "italic", "underline", "glow",
	"squiggly_underline", "stippled_underline", "none",
}

var bracketOptionWords = []string{
	"foreground", "underline", "stippled_underline", "squiggly_underline",
	"bold", "italic", "glow", "none",
}

var colorSchemeRoot = buildColorScheme()

func buildColorScheme() *Node {
	globals := map[string]*Node{
		"background":                    color("editor background"),
		"foreground":                    color("default text color"),
		"invisibles":                    color("whitespace markers when drawn"),
		"caret":                         color("text caret"),
		"block_caret":                   color("caret in overwrite mode"),
		"block_caret_border":            color("border of the block caret"),
		"block_caret_underline":         color("underline style block caret"),
		"block_caret_corner_style":      enum("corner shape of the block caret", "round", "cut", "square"),
		"block_caret_corner_radius":     str("corner radius of the block caret"),
		"line_highlight":                color("background of the caret line"),
		"misspelling":                   color("underline for misspelled words"),
		"fold_marker":                   color("marker for folded regions"),
		"minimap_border":                color("border of the minimap viewport"),
		"accent":                        color("accent for interface highlights"),
		"popup_css":                     cssText("CSS for popups, may use var(--name)"),
		"phantom_css":                   cssText("CSS for phantoms, may use var(--name)"),
		"sheet_css":                     cssText("CSS for HTML sheets, may use var(--name)"),
		"gutter":                        color("gutter background"),
		"gutter_foreground":             color("line numbers"),
		"gutter_foreground_highlight":   color("line number of the caret line"),
		"line_diff_width":               str("width of the diff marker, 1 to 8"),
		"line_diff_added":               color("diff marker for added lines"),
		"line_diff_modified":            color("diff marker for modified lines"),
		"line_diff_deleted":             color("diff marker for deleted lines"),
		"selection":                     color("selection background"),
		"selection_foreground":          color("selection text color"),
		"selection_border":              color("selection border"),
		"selection_border_width":        str("selection border width, 0 to 4"),
		"inactive_selection":            color("selection in unfocused views"),
		"inactive_selection_foreground": color("selection text in unfocused views"),
		"inactive_selection_border":     color("selection border in unfocused views"),
		"selection_corner_style":        enum("corner shape of selections", "round", "cut", "square"),
		"selection_corner_radius":       str("corner radius of selections"),
		"highlight":                     color("border of other find matches"),
		"find_highlight":                color("background of the current find match"),
		"find_highlight_foreground":     color("text of the current find match"),
		"scroll_highlight":              color("scroll bar marks for find matches"),
		"scroll_selected_highlight":     color("scroll bar mark for the selected find match"),
		"rulers":                        color("vertical rulers"),
		"guide":                         color("indent guides"),
		"active_guide":                  color("indent guide of the caret's level"),
		"stack_guide":                   color("indent guides of enclosing levels"),
		"brackets_options":              wordEnum("how matching brackets are drawn", bracketOptionWords...),
		"brackets_foreground":           color("matching brackets when foreground is set"),
		"bracket_contents_options":      wordEnum("how bracket contents are drawn", bracketOptionWords...),
		"bracket_contents_foreground":   color("bracket contents when foreground is set"),
		"tags_options":                  wordEnum("how matching tags are drawn", bracketOptionWords...),
		"tags_foreground":               color("matching tags when foreground is set"),
		"shadow":                        color("shadow cast when scrolling"),
		"shadow_width":                  str("width of the scroll shadow"),
	}

	rule := mapOf("one highlighting rule", map[string]*Node{
		"name":                 str("name of this rule, informational"),
		"scope":                scopeSelector("selector choosing the text this rule styles"),
		"foreground":           color("text color, or a list for gradients"),
		"background":           color("background color"),
		"foreground_adjust":    str("adjusters applied to the foreground when using a background"),
		"selection_foreground": color("text color while selected"),
		"font_style":           wordEnum("font styling for matched text", fontStyleWords...),
	})

	return mapOf("sublime-color-scheme document", map[string]*Node{
		"name":      str("name shown in the color scheme list"),
		"author":    str("author credit"),
		"variables": mapWild("named colors referenced as var(name)", color("color value this variable holds"), nil),
		"globals":   mapOf("colors of the editor chrome", globals),
		"rules":     list("highlighting rules, first match wins per property", rule),
	})
}

var tmThemeRoot = buildTmTheme()

func buildTmTheme() *Node {
	styleSettings := map[string]*Node{
		"background":                  color("editor or rule background"),
		"foreground":                  color("default or rule text color"),
		"caret":                       color("text caret"),
		"blockCaret":                  color("caret in overwrite mode"),
		"invisibles":                  color("whitespace markers when drawn"),
		"lineHighlight":               color("background of the caret line"),
		"misspelling":                 color("underline for misspelled words"),
		"minimapBorder":               color("border of the minimap viewport"),
		"accent":                      color("accent for interface highlights"),
		"popupCss":                    cssText("CSS for popups, may use var(--name)"),
		"phantomCss":                  cssText("CSS for phantoms, may use var(--name)"),
		"gutter":                      color("gutter background"),
		"gutterForeground":            color("line numbers"),
		"selection":                   color("selection background"),
		"selectionForeground":         color("selection text color"),
		"selectionBorder":             color("selection border"),
		"inactiveSelection":           color("selection in unfocused views"),
		"inactiveSelectionForeground": color("selection text in unfocused views"),
		"highlight":                   color("border of other find matches"),
		"findHighlight":               color("background of the current find match"),
		"findHighlightForeground":     color("text of the current find match"),
		"guide":                       color("indent guides"),
		"activeGuide":                 color("indent guide of the caret's level"),
		"stackGuide":                  color("indent guides of enclosing levels"),
		"bracketsOptions":             wordEnum("how matching brackets are drawn", bracketOptionWords...),
		"bracketsForeground":          color("matching brackets when foreground is set"),
		"bracketContentsOptions":      wordEnum("how bracket contents are drawn", bracketOptionWords...),
		"bracketContentsForeground":   color("bracket contents when foreground is set"),
		"tagsOptions":                 wordEnum("how matching tags are drawn", bracketOptionWords...),
		"tagsForeground":              color("matching tags when foreground is set"),
		"shadow":                      color("shadow cast when scrolling"),
		"shadowWidth":                 str("width of the scroll shadow"),
		"fontStyle":                   wordEnum("font styling for matched text", "bold", "italic", "underline", "stippled_underline", "none"),
	}

	entry := mapOf("one theme entry: global settings or a scoped rule", map[string]*Node{
		"name":     str("name of this rule, informational"),
		"scope":    scopeSelector("selector choosing the text this rule styles"),
		"settings": mapOf("style attributes", styleSettings),
	})

	return mapOf("tmTheme property list", map[string]*Node{
		"name":           str("name shown in the color scheme list"),
		"author":         str("author credit"),
		"uuid":           str("stable identifier for this theme"),
		"colorSpaceName": str("color space hint, usually sRGB"),
		"semanticClass":  str("dot-separated theme classification"),
		"comment":        str("note to other authors"),
		"settings":       list("global settings entry followed by scoped rules", entry),
	})
}
