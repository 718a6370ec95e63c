package scopes

import (
	"bytes"
	"path"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
	"howett.net/plist"

	"github.com/forkeith/PackageDev/pkg/archive"
)

// fileScopes is the raw extraction from one syntax file: the scopes it
// assigns and the syntaxes it pulls in by scope or by path.
type fileScopes struct {
	path      string
	pkg       string
	name      string
	mainScope string
	hidden    bool
	defined   []string
	refScopes []string
	refPaths  []string
}

func extractFile(fsys afero.Fs, root, rel string) (*fileScopes, error) {
	data, err := afero.ReadFile(fsys, path.Join(root, rel))
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", rel, err)
	}

	fsc := &fileScopes{path: rel, pkg: topDir(rel)}
	if strings.HasSuffix(rel, ".sublime-syntax") {
		err = fsc.fromSublimeSyntax(data)
	} else {
		err = fsc.fromTmLanguage(data)
		if strings.HasSuffix(rel, ".hidden-tmLanguage") {
			fsc.hidden = true
		}
	}
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", rel, err)
	}

	fsc.defined = dedupeSorted(fsc.defined)
	fsc.refScopes = dedupeSorted(fsc.refScopes)
	return fsc, nil
}

// extractArchive indexes every syntax definition inside a
// .sublime-package zip. Members are attributed to the package the
// archive names, with paths rewritten to pkg/member so they resolve the
// same way loose package files do.
func extractArchive(fsys afero.Fs, root, name string) ([]*fileScopes, error) {
	data, err := afero.ReadFile(fsys, path.Join(root, name))
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", name, err)
	}

	inner, err := archive.ExtractWithOptions(data, archive.ExtractOptions{
		Filter: func(member string) bool { return isSyntaxPath(member) },
	})
	if err != nil {
		return nil, errors.Errorf("opening %s: %w", name, err)
	}

	pkg := strings.TrimSuffix(name, packageExt)
	files, err := findSyntaxFiles(inner, "/")
	if err != nil {
		return nil, errors.Errorf("scanning %s: %w", name, err)
	}

	var out []*fileScopes
	var errs *multierror.Error
	for _, file := range files {
		fsc, err := extractFile(inner, "/", file)
		if err != nil {
			errs = multierror.Append(errs, errors.Errorf("in %s: %w", name, err))
			continue
		}
		fsc.pkg = pkg
		fsc.path = pkg + "/" + file
		out = append(out, fsc)
	}
	return out, errs.ErrorOrNil()
}

func topDir(rel string) string {
	rel = strings.TrimPrefix(rel, "./")
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		return rel[:i]
	}
	return ""
}

func dedupeSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	sort.Strings(in)
	out := in[:1]
	for _, s := range in[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}

// stripDirectives drops leading %YAML and %TAG directive lines, which
// yaml.v3 refuses, keeping the --- separator after them. Every
// conventional sublime-syntax file opens with `%YAML 1.2`.
func stripDirectives(data []byte) []byte {
	for len(data) > 0 && data[0] == '%' {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return nil
		}
		data = data[i+1:]
	}
	return data
}

func (f *fileScopes) fromSublimeSyntax(data []byte) error {
	var doc struct {
		Name     string    `yaml:"name"`
		Scope    string    `yaml:"scope"`
		Hidden   bool      `yaml:"hidden"`
		Extends  string    `yaml:"extends"`
		Contexts yaml.Node `yaml:"contexts"`
	}
	if err := yaml.Unmarshal(stripDirectives(data), &doc); err != nil {
		return errors.Errorf("yaml: %w", err)
	}

	f.name = doc.Name
	f.hidden = doc.Hidden
	if fields := strings.Fields(doc.Scope); len(fields) > 0 {
		f.mainScope = fields[0]
	}
	if doc.Extends != "" {
		f.refPaths = append(f.refPaths, strings.TrimPrefix(doc.Extends, "Packages/"))
	}
	f.walkSyntaxNode(&doc.Contexts)
	return nil
}

func (f *fileScopes) walkSyntaxNode(n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			switch k.Value {
			case "scope", "meta_scope", "meta_content_scope", "embed_scope":
				f.addAssigned(v.Value)
			case "captures", "escape_captures":
				if v.Kind == yaml.MappingNode {
					for j := 1; j < len(v.Content); j += 2 {
						f.addAssigned(v.Content[j].Value)
					}
				}
			case "embed", "include", "push", "set":
				f.walkSyntaxRef(v)
			default:
				f.walkSyntaxNode(v)
			}
		}
	case yaml.SequenceNode:
		for _, c := range n.Content {
			f.walkSyntaxNode(c)
		}
	case yaml.DocumentNode:
		for _, c := range n.Content {
			f.walkSyntaxNode(c)
		}
	}
}

// walkSyntaxRef handles the values of embed, include, push, and set: a
// context name, a `scope:` reference to another syntax, or an inline list
// of rules.
func (f *fileScopes) walkSyntaxRef(n *yaml.Node) {
	switch n.Kind {
	case yaml.ScalarNode:
		if ref, ok := strings.CutPrefix(n.Value, "scope:"); ok {
			if i := strings.IndexByte(ref, '#'); i >= 0 {
				ref = ref[:i]
			}
			if ref != "" {
				f.refScopes = append(f.refScopes, ref)
			}
		}
	case yaml.SequenceNode:
		for _, c := range n.Content {
			if c.Kind == yaml.ScalarNode {
				f.walkSyntaxRef(c)
			} else {
				f.walkSyntaxNode(c)
			}
		}
	case yaml.MappingNode:
		f.walkSyntaxNode(n)
	}
}

// addAssigned splits a scope assignment into its space-separated names.
func (f *fileScopes) addAssigned(value string) {
	for _, name := range strings.Fields(value) {
		if !plainScopeName(name) {
			continue
		}
		f.defined = append(f.defined, name)
	}
}

// plainScopeName filters out assignments that are not literal names, such
// as ones using variable substitution or capture backreferences.
func plainScopeName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '_' || c == '+':
		default:
			return false
		}
	}
	return true
}

func (f *fileScopes) fromTmLanguage(data []byte) error {
	var doc map[string]interface{}
	if _, err := plist.Unmarshal(data, &doc); err != nil {
		return errors.Errorf("plist: %w", err)
	}

	if s, ok := doc["name"].(string); ok {
		f.name = s
	}
	if s, ok := doc["scopeName"].(string); ok {
		if fields := strings.Fields(s); len(fields) > 0 {
			f.mainScope = fields[0]
		}
	}
	if b, ok := doc["hideFromUser"].(bool); ok && b {
		f.hidden = true
	}

	f.walkPlistValue(doc["patterns"])
	f.walkPlistValue(doc["repository"])
	return nil
}

func (f *fileScopes) walkPlistValue(v interface{}) {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, vv := range t {
			switch k {
			case "name", "contentName":
				if s, ok := vv.(string); ok {
					f.addAssigned(s)
				}
			case "include":
				s, ok := vv.(string)
				if !ok || s == "" {
					continue
				}
				if s[0] == '#' || s[0] == '$' {
					continue
				}
				if i := strings.IndexByte(s, '#'); i >= 0 {
					s = s[:i]
				}
				f.refScopes = append(f.refScopes, s)
			default:
				f.walkPlistValue(vv)
			}
		}
	case []interface{}:
		for _, vv := range t {
			f.walkPlistValue(vv)
		}
	}
}
