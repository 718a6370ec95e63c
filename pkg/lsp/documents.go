package lsp

import (
	"sync"

	"github.com/forkeith/PackageDev/pkg/dialect"
)

// Document is one open editor buffer and the dialect inferred from its
// name when it was opened.
type Document struct {
	URI     string
	Dialect dialect.Dialect
	Version int32
	Content string
}

// DocumentManager tracks open documents by normalized URI.
type DocumentManager struct {
	store *sync.Map // map[string]*Document
}

func NewDocumentManager() *DocumentManager {
	return &DocumentManager{
		store: &sync.Map{},
	}
}

func (m *DocumentManager) Get(uri string) (*Document, bool) {
	content, ok := m.store.Load(normalizeURI(uri))
	if !ok {
		return nil, false
	}
	doc, ok := content.(*Document)
	return doc, ok
}

func (m *DocumentManager) Store(uri string, doc *Document) {
	m.store.Store(normalizeURI(uri), doc)
}

func (m *DocumentManager) Delete(uri string) {
	m.store.Delete(normalizeURI(uri))
}
