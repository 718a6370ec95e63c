package schema

// Schema trees for preferences, build systems, key bindings, and snippets.

var settingsRoot = buildSettings()

func buildSettings() *Node {
	return mapWild("editor and syntax preferences", freeText("unrecognized setting, passed through"), map[string]*Node{
		"color_scheme":                      str("color scheme file applied to views"),
		"theme":                             str("interface theme file"),
		"syntax":                            syntaxRef("syntax applied to matching views"),
		"font_face":                         str("font family for editor text"),
		"font_size":                         num("font size in points"),
		"font_options":                      wordEnum("font rendering options", "no_bold", "no_italic", "gray_antialias", "subpixel_antialias", "no_antialias", "no_round", "directwrite", "gdi", "dwrite_cleartype_classic", "dwrite_cleartype_natural"),
		"tab_size":                          num("spaces a tab occupies"),
		"translate_tabs_to_spaces":          boolean("insert spaces when tab is pressed"),
		"use_tab_stops":                     boolean("make backspace and delete treat spaces like tabs"),
		"detect_indentation":                boolean("guess tab settings from the buffer"),
		"auto_indent":                       boolean("carry indentation to new lines"),
		"smart_indent":                      boolean("indent based on syntax heuristics"),
		"trim_automatic_white_space":        boolean("remove auto-indent whitespace when leaving the line"),
		"word_wrap":                         enum("wrap long lines", "auto", "true", "false"),
		"wrap_width":                        num("column to wrap at, 0 for window width"),
		"rulers":                            list("columns to draw vertical rulers at", num("ruler column")),
		"draw_white_space":                  wordEnum("when whitespace is drawn", "none", "selection", "leading", "enclosed", "trailing", "isolated", "all"),
		"draw_indent_guides":                boolean("draw indent guides"),
		"indent_guide_options":              wordEnum("how indent guides are drawn", "draw_normal", "draw_active", "draw_active_single", "solid", "none"),
		"trim_trailing_white_space_on_save": enum("strip trailing whitespace when saving", "none", "all", "not_on_caret"),
		"ensure_newline_at_eof_on_save":     boolean("append a trailing newline when saving"),
		"spell_check":                       boolean("check spelling in comments and strings"),
		"dictionary":                        str("dictionary file used for spell checking"),
		"highlight_line":                    boolean("highlight the caret line"),
		"caret_style":                       enum("caret blink style", "smooth", "phase", "blink", "solid", "wide"),
		"line_numbers":                      boolean("show line numbers in the gutter"),
		"gutter":                            boolean("show the gutter"),
		"margin":                            num("pixels between the gutter and text"),
		"fold_buttons":                      boolean("show fold arrows in the gutter"),
		"fade_fold_buttons":                 boolean("hide fold arrows until hovered"),
		"scroll_past_end":                   boolean("allow scrolling one page past the last line"),
		"highlight_modified_tabs":           boolean("tint tabs of modified files"),
		"show_definitions":                  boolean("show definition popups on hover"),
		"auto_complete":                     boolean("show the completion popup while typing"),
		"auto_complete_commit_on_tab":       boolean("commit completions with tab instead of enter"),
		"auto_complete_with_fields":         boolean("allow completions inside snippet fields"),
		"auto_match_enabled":                boolean("insert closing brackets and quotes automatically"),
		"save_on_focus_lost":                boolean("save files when switching away"),
		"index_files":                       boolean("index files for goto definition"),
		"ignored_packages":                  list("packages that are not loaded", str("package name")),
		"word_separators":                   str("characters that split words"),
		"default_line_ending":               enum("line endings for new files", "system", "windows", "unix"),
		"show_encoding":                     boolean("show the encoding in the status bar"),
		"show_line_endings":                 boolean("show the line ending style in the status bar"),
	})
}

var buildRoot = buildBuildSystem()

func buildCoreKeys() map[string]*Node {
	return map[string]*Node{
		"cmd":         list("command and arguments executed directly", str("argument")),
		"shell_cmd":   str("command line run through the shell"),
		"file_regex":  regex("captures file, line, column, message from output"),
		"line_regex":  regex("captures the line when file_regex matched a previous line"),
		"working_dir": str("directory the command runs in"),
		"encoding":    str("output encoding", "utf-8", "cp1252", "iso-8859-1"),
		"env":         mapWild("extra environment variables", str("variable value"), nil),
		"shell":       boolean("run cmd through the shell"),
		"word_wrap":   boolean("wrap lines in the output panel"),
		"syntax":      syntaxRef("syntax applied to the output panel"),
		"target":      str("command processing this configuration", "exec"),
		"selector":    scopeSelector("limits automatic selection to matching files"),
		"keyfiles":    list("files that make this build system apply to a folder", str("file name")),
		"cancel":      freeText("command or arguments used to cancel a running build"),
	}
}

func buildBuildSystem() *Node {
	core := buildCoreKeys()

	variantChildren := buildCoreKeys()
	variantChildren["name"] = str("name of this variant in the build menu")
	variant := mapOf("alternate configuration selectable from the build menu", variantChildren)

	platformOverride := func(doc string) *Node {
		return mapOf(doc, buildCoreKeys())
	}

	core["windows"] = platformOverride("overrides applied on Windows")
	core["osx"] = platformOverride("overrides applied on macOS")
	core["linux"] = platformOverride("overrides applied on Linux")
	core["variants"] = list("alternate configurations", variant)

	return mapOf("sublime-build configuration", core)
}

var keymapRoot = buildKeymap()

func buildKeymap() *Node {
	contextEntry := mapOf("one condition limiting when the binding applies", map[string]*Node{
		// Not an enum: plugins add their own context keys, and setting.*
		// names an arbitrary setting.
		"key": str("aspect of the view state being tested",
			"selector", "eol_selector", "text", "preceding_text", "following_text",
			"selection_empty", "has_next_field", "has_prev_field",
			"auto_complete_visible", "panel_visible", "overlay_visible",
			"popup_visible", "read_only", "num_selections", "panel",
			"panel_has_focus", "last_command", "is_recording_macro"),
		"operator": enum("comparison applied to the key's value",
			"equal", "not_equal", "regex_match", "not_regex_match",
			"regex_contains", "not_regex_contains"),
		"operand":   freeText("value compared against, a selector when key is selector"),
		"match_all": boolean("require the condition for every selection"),
	})

	binding := mapOf("one key binding", map[string]*Node{
		"keys": list("key chord sequence triggering the command", str("key with optional modifiers",
			"up", "down", "left", "right", "home", "end", "pageup", "pagedown",
			"backspace", "delete", "insert", "tab", "enter", "escape", "space",
			"f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10", "f11", "f12",
			"keypad_enter", "keypad_plus", "keypad_minus", "context_menu")),
		"command": str("command executed when the chord matches",
			"insert", "insert_snippet", "move", "move_to", "new_file", "close",
			"show_overlay", "show_panel", "toggle_comment", "indent", "unindent",
			"run_macro_file", "paste", "copy", "cut", "undo", "redo", "save",
			"find_next", "find_prev", "set_layout", "focus_group", "noop"),
		"args":    mapWild("arguments passed to the command", freeText("argument value"), nil),
		"context": list("conditions that must all hold for the binding", contextEntry),
	})

	return list("key bindings tried in order, later files win", binding)
}

var snippetRoot = buildSnippet()

func buildSnippet() *Node {
	return mapOf("sublime-snippet document", map[string]*Node{
		"snippet": mapOf("snippet definition", map[string]*Node{
			"content":     str("text inserted, with $1 fields and ${1:placeholders}"),
			"tabTrigger":  str("word that expands into the snippet on tab"),
			"scope":       scopeSelector("limits where the snippet is offered"),
			"description": str("text shown in the completion list"),
		}),
	})
}
