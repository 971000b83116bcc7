// Package apidocs serves the hand-written OpenAPI document of the question
// API together with a Swagger UI page.
package apidocs

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/dskvich/study-bot-api/pkg/logger"
	"github.com/russross/blackfriday"
	"gopkg.in/yaml.v3"
)

const (
	BasePath = "/api-docs"

	specJSONPath = BasePath + "/openapi.json"
	specYAMLPath = BasePath + "/openapi.yaml"
)

//go:embed assets
var assetsFS embed.FS

type server struct {
	URL         string `yaml:"url" json:"url"`
	Description string `yaml:"description" json:"description"`
}

type Docs struct {
	yamlDoc []byte
	jsonDoc []byte
	index   []byte
}

// New renders the documentation once. serverURL replaces the server list of
// the embedded document when non-empty.
func New(serverURL string) (*Docs, error) {
	raw, err := assetsFS.ReadFile("assets/openapi.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading openapi document: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing openapi document: %w", err)
	}
	if serverURL != "" {
		doc["servers"] = []server{{URL: serverURL, Description: "Current server"}}
	}

	yamlDoc, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding openapi yaml: %w", err)
	}
	jsonDoc, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding openapi json: %w", err)
	}

	index, err := renderIndex(doc)
	if err != nil {
		return nil, err
	}

	return &Docs{yamlDoc: yamlDoc, jsonDoc: jsonDoc, index: index}, nil
}

func renderIndex(doc map[string]any) ([]byte, error) {
	intro, err := assetsFS.ReadFile("assets/intro.md")
	if err != nil {
		return nil, fmt.Errorf("reading intro: %w", err)
	}

	tmpl, err := template.ParseFS(assetsFS, "assets/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing index template: %w", err)
	}

	title := "API documentation"
	if info, ok := doc["info"].(map[string]any); ok {
		if t, ok := info["title"].(string); ok {
			title = t
		}
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]any{
		"Title":   title,
		"Intro":   template.HTML(blackfriday.MarkdownCommon(intro)),
		"SpecURL": specJSONPath,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering index: %w", err)
	}

	return buf.Bytes(), nil
}

func (d *Docs) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case BasePath, BasePath + "/":
		d.write(w, r, "text/html; charset=utf-8", d.index)
	case specJSONPath:
		d.write(w, r, "application/json", d.jsonDoc)
	case specYAMLPath:
		d.write(w, r, "application/yaml", d.yamlDoc)
	default:
		http.NotFound(w, r)
	}
}

func (d *Docs) write(w http.ResponseWriter, r *http.Request, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(body); err != nil {
		slog.WarnContext(r.Context(), "Failed to write docs", "path", r.URL.Path, logger.Err(err))
	}
}
