package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/forkeith/PackageDev/pkg/completion"
	"github.com/forkeith/PackageDev/pkg/diagnostic"
	"github.com/forkeith/PackageDev/pkg/dialect"
	"github.com/forkeith/PackageDev/pkg/position"
)

func (s *Server) textDocumentDidOpen(glspCtx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	doc := &Document{
		URI:     uri,
		Dialect: dialect.FromPath(uri),
		Version: params.TextDocument.Version,
		Content: params.TextDocument.Text,
	}
	s.documents.Store(uri, doc)
	s.log.Debug().
		Str("uri", uri).
		Stringer("dialect", doc.Dialect).
		Int("bytes", len(doc.Content)).
		Msg("document opened")

	s.publishDiagnostics(glspCtx, doc)
	return nil
}

func (s *Server) textDocumentDidChange(glspCtx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	doc, ok := s.documents.Get(uri)
	if !ok {
		doc = &Document{URI: uri, Dialect: dialect.FromPath(uri)}
	}

	text := doc.Content
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				text = c.Text
				continue
			}
			start := offsetOf(text, c.Range.Start)
			end := offsetOf(text, c.Range.End)
			if end < start {
				start, end = end, start
			}
			text = text[:start] + c.Text + text[end:]
		}
	}

	updated := &Document{
		URI:     doc.URI,
		Dialect: doc.Dialect,
		Version: params.TextDocument.Version,
		Content: text,
	}
	s.documents.Store(uri, updated)

	s.publishDiagnostics(glspCtx, updated)
	return nil
}

func (s *Server) textDocumentDidClose(glspCtx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	s.documents.Delete(uri)
	s.log.Debug().Str("uri", uri).Msg("document closed")

	// Clear anything still shown for the closed buffer.
	glspCtx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *Server) textDocumentCompletion(glspCtx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc, ok := s.documents.Get(string(params.TextDocument.URI))
	if !ok || doc.Dialect.Family() == dialect.FamilyUnknown {
		return nil, nil
	}

	offset := offsetOf(doc.Content, params.Position)
	items, err := s.engine.GetCompletions(s.ctx, doc.Content, offset, doc.Dialect)
	if err != nil {
		return nil, err
	}

	out := make([]protocol.CompletionItem, len(items))
	for i, it := range items {
		out[i] = toProtocolCompletionItem(it)
	}
	return out, nil
}

func (s *Server) textDocumentHover(glspCtx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, ok := s.documents.Get(string(params.TextDocument.URI))
	if !ok || doc.Dialect.Family() == dialect.FamilyUnknown {
		return nil, nil
	}

	offset := offsetOf(doc.Content, params.Position)
	info, err := s.engine.GetHover(s.ctx, doc.Content, offset, doc.Dialect)
	if err != nil || info == nil {
		return nil, err
	}

	rng := toProtocolRange(doc.Content, info.Range.Offset, info.Range.End())
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: strings.Join(info.Content, "\n\n"),
		},
		Range: &rng,
	}, nil
}

func offsetOf(text string, pos protocol.Position) int {
	return position.OffsetForPlace(text, position.Place{
		Line:      int(pos.Line),
		Character: int(pos.Character),
	})
}

func toProtocolRange(text string, start, end int) protocol.Range {
	start = position.ClampOffset(text, start)
	end = position.ClampOffset(text, end)
	if end < start {
		end = start
	}
	r := position.RawPosition{Offset: start, Text: text[start:end]}.GetRange(text)
	return protocol.Range{
		Start: protocol.Position{Line: uint32(r.Start.Line), Character: uint32(r.Start.Character)},
		End:   protocol.Position{Line: uint32(r.End.Line), Character: uint32(r.End.Character)},
	}
}

var diagnosticSource = "packagedev"

func toProtocolDiagnostics(text string, findings []diagnostic.Finding) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, len(findings))
	for i, f := range findings {
		severity := protocol.DiagnosticSeverityWarning
		if f.Severity == diagnostic.Info {
			severity = protocol.DiagnosticSeverityInformation
		}
		out[i] = protocol.Diagnostic{
			Range:    toProtocolRange(text, f.Start, f.End),
			Severity: &severity,
			Source:   &diagnosticSource,
			Message:  f.Message,
		}
	}
	return out
}

func toProtocolCompletionItem(it completion.Item) protocol.CompletionItem {
	kind := completionItemKind(it.Kind)
	out := protocol.CompletionItem{
		Label: it.Label,
		Kind:  &kind,
	}
	if it.Detail != "" {
		detail := it.Detail
		out.Detail = &detail
	}
	if it.InsertText != "" {
		insert := it.InsertText
		out.InsertText = &insert
	}
	if it.Kind == completion.ItemSnippet {
		// Clients default to plain text and would insert the ${n:...}
		// placeholders literally.
		format := protocol.InsertTextFormatSnippet
		out.InsertTextFormat = &format
	}
	if it.SortText != "" {
		sortText := it.SortText
		out.SortText = &sortText
	}
	if it.Documentation != "" {
		out.Documentation = protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: it.Documentation,
		}
	}
	return out
}

func completionItemKind(k completion.ItemKind) protocol.CompletionItemKind {
	switch k {
	case completion.ItemKey:
		return protocol.CompletionItemKindProperty
	case completion.ItemValue:
		return protocol.CompletionItemKindValue
	case completion.ItemScope:
		return protocol.CompletionItemKindReference
	case completion.ItemContext:
		return protocol.CompletionItemKindFunction
	case completion.ItemSyntax:
		return protocol.CompletionItemKindFile
	case completion.ItemVariable:
		return protocol.CompletionItemKindVariable
	case completion.ItemColor:
		return protocol.CompletionItemKindColor
	case completion.ItemSnippet:
		return protocol.CompletionItemKindSnippet
	default:
		return protocol.CompletionItemKindText
	}
}
