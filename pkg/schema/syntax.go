package schema

// Schema trees for the two syntax definition dialects. Context rules and
// grammar patterns are self-referential, so both trees are assembled in
// init rather than as literal cycles.

var (
	sublimeSyntaxRoot *Node
	tmLanguageRoot    *Node
)

func init() {
	sublimeSyntaxRoot = buildSublimeSyntax()
	tmLanguageRoot = buildTmLanguage()
}

func buildSublimeSyntax() *Node {
	// Each captures key gets its own node so node names track map keys.
	captures := func(doc string) *Node {
		return mapWild(doc, scopeName("scope assigned to this capture group"), nil)
	}

	rule := mapOf("one matching rule inside a context", map[string]*Node{
		"match":                  regex("pattern the rule matches"),
		"scope":                  scopeName("scope assigned to matched text"),
		"captures":               captures("scope names applied to numbered capture groups"),
		"push":                   actionRef("context or syntax to push onto the stack"),
		"set":                    actionRef("context or syntax replacing the current one"),
		"pop":                    boolean("pop contexts off the stack when the rule matches"),
		"embed":                  actionRef("context or syntax to embed until escape matches"),
		"embed_scope":            scopeName("scope applied over the embedded region"),
		"escape":                 regex("pattern ending an embed"),
		"escape_captures":        captures("scope names applied to the escape pattern's capture groups"),
		"include":                actionRef("context whose rules are included in place"),
		"meta_scope":             scopeName("scope applied to everything the context matches"),
		"meta_content_scope":     scopeName("scope applied to content between the pushing and popping matches"),
		"meta_include_prototype": boolean("whether the prototype context is included"),
		"meta_prepend":           boolean("prepend these rules when extending a context"),
		"meta_append":            boolean("append these rules when extending a context"),
		"clear_scopes":           freeText("clear enclosing scopes: true or a count"),
		"apply_prototype":        boolean("apply the prototype to embedded or pushed contexts"),
		"branch":                 list("contexts to try in order", actionRef("branch target context")),
		"branch_point":           str("name for this branch, targeted by fail"),
		"fail":                   actionRef("branch point to fail back to"),
		"comment":                str("note to other authors, ignored by the engine"),
	})

	contextBody := list("rules tried in order", rule)
	withPrototype := &Node{
		Name: "with_prototype",
		Kind: KindList,
		Doc:  "rules prepended to every context reachable from the action",
		Elem: rule,
	}
	rule.Children["with_prototype"] = withPrototype

	return mapOf("sublime-syntax definition", map[string]*Node{
		"name":                   str("name shown in the syntax menus"),
		"file_extensions":        list("extensions this syntax applies to", str("file extension without the dot")),
		"hidden_file_extensions": list("extensions recognized but not listed", str("file extension without the dot")),
		"first_line_match":       regex("applies the syntax when the first line matches"),
		"scope":                  scopeName("base scope of the whole file"),
		"version":                enum("sublime-syntax feature version", "1", "2"),
		"extends":                syntaxRef("syntax definition this one inherits from"),
		"hidden":                 boolean("hide this syntax from menus and completions"),
		"name_suffixes":          list("suffixes appended to the name per file type", str("name suffix")),
		"variables":              mapWild("named sub-patterns usable as {{name}}", regex("pattern fragment"), nil),
		"contexts":               mapWild("named contexts making up the state machine", contextBody, nil),
	})
}

func buildTmLanguage() *Node {
	var captureEntries []*Node
	captures := func(doc string) *Node {
		entry := mapOf("capture group assignment", map[string]*Node{
			"name": scopeName("scope assigned to this capture group"),
		})
		captureEntries = append(captureEntries, entry)
		return mapWild(doc, entry, nil)
	}

	pattern := mapOf("one grammar pattern", map[string]*Node{
		"name":                scopeName("scope assigned to matched text"),
		"match":               regex("pattern matched against one line"),
		"begin":               regex("pattern opening a multi-line span"),
		"end":                 regex("pattern closing the span"),
		"while":               regex("pattern continuing the span line by line"),
		"contentName":         scopeName("scope applied between begin and end"),
		"captures":            captures("scope names applied to numbered capture groups"),
		"beginCaptures":       captures("scope names applied to the begin pattern's capture groups"),
		"endCaptures":         captures("scope names applied to the end pattern's capture groups"),
		"whileCaptures":       captures("scope names applied to the while pattern's capture groups"),
		"include":             actionRef("repository entry, $self, $base, or another grammar's scope"),
		"applyEndPatternLast": num("try the end pattern after the inner patterns"),
		"disabled":            num("non-zero disables this pattern"),
		"comment":             str("note to other authors, ignored by the engine"),
	})

	patterns := &Node{
		Name: "patterns",
		Kind: KindList,
		Doc:  "patterns tried in order",
		Elem: pattern,
	}
	pattern.Children["patterns"] = patterns
	for _, entry := range captureEntries {
		entry.Children["patterns"] = patterns
	}

	return mapOf("tmLanguage grammar property list", map[string]*Node{
		"name":               str("name shown in the syntax menus"),
		"scopeName":          scopeName("base scope of the whole file"),
		"fileTypes":          list("extensions this grammar applies to", str("file extension without the dot")),
		"firstLineMatch":     regex("applies the grammar when the first line matches"),
		"foldingStartMarker": regex("line pattern beginning a foldable region"),
		"foldingStopMarker":  regex("line pattern ending a foldable region"),
		"uuid":               str("stable identifier for this grammar"),
		"hideFromUser":       boolean("hide this grammar from menus and completions"),
		"comment":            str("note to other authors, ignored by the engine"),
		"patterns":           patterns,
		"repository":         mapWild("named patterns referenced by include", pattern, nil),
	})
}
