// Package lsp serves the engine over the Language Server Protocol.
// Documents sync in full, diagnostics are pushed on open and change,
// and completion and hover requests go straight to the engine against
// the last synced content.
package lsp

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/forkeith/PackageDev/pkg/dialect"
	"github.com/forkeith/PackageDev/pkg/engine"
)

const serverName = "packagedev-ls"

// normalizeURI makes document keys consistent across clients that send
// file:// URIs and ones that send bare paths.
func normalizeURI(uri string) string {
	uri = strings.TrimPrefix(uri, "file://")
	uri = strings.TrimPrefix(uri, "file:")
	return uri
}

// Server is the LSP adapter over an engine.
type Server struct {
	engine    *engine.Engine
	documents *DocumentManager
	version   string

	ctx context.Context
	log zerolog.Logger
}

// NewServer wires an engine to the protocol handlers. The logger feeds
// every request the engine serves.
func NewServer(eng *engine.Engine, version string, log zerolog.Logger) *Server {
	return &Server{
		engine:    eng,
		documents: NewDocumentManager(),
		version:   version,
		ctx:       log.WithContext(context.Background()),
		log:       log,
	}
}

// RunStdio serves LSP over stdin/stdout until the client disconnects.
func (s *Server) RunStdio() error {
	handler := protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdown,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.textDocumentDidOpen,
		TextDocumentDidChange:  s.textDocumentDidChange,
		TextDocumentDidClose:   s.textDocumentDidClose,
		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
	}
	return glspserver.NewServer(&handler, serverName, false).RunStdio()
}

func (s *Server) initialize(glspCtx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.log.Info().Interface("client", params.ClientInfo).Msg("client initializing")

	openClose := true
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: &openClose,
			Change:    &syncKind,
		},
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{".", "(", "-"},
		},
		HoverProvider: &protocol.HoverOptions{},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(glspCtx *glsp.Context, params *protocol.InitializedParams) error {
	s.log.Info().Msg("client initialized")
	return nil
}

func (s *Server) shutdown(glspCtx *glsp.Context) error {
	s.log.Info().Msg("client shutting down")
	return nil
}

func (s *Server) setTrace(glspCtx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// publishDiagnostics validates the document and pushes the findings.
// Documents in dialects the engine does not recognize get an empty
// report, which also clears anything published before.
func (s *Server) publishDiagnostics(glspCtx *glsp.Context, doc *Document) {
	diags := []protocol.Diagnostic{}
	if doc.Dialect.Family() != dialect.FamilyUnknown {
		findings, err := s.engine.GetDiagnostics(s.ctx, doc.Content, doc.Dialect)
		if err != nil {
			s.log.Warn().Err(err).Str("uri", doc.URI).Msg("diagnostics failed")
			return
		}
		diags = toProtocolDiagnostics(doc.Content, findings)
	}
	glspCtx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(doc.URI),
		Diagnostics: diags,
	})
}
