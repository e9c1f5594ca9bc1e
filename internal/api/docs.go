package api

import (
	"embed"
	"encoding/json"
	"io/fs"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

const (
	openAPIFile  = "openapi.yaml"
	docsHTMLFile = "docs.html"
)

//go:embed docs/openapi.yaml docs/docs.html
var docsFS embed.FS

func embeddedDocs() fs.FS {
	sub, err := fs.Sub(docsFS, "docs")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	return sub
}

// swaggerJSON converts the OpenAPI YAML document to JSON.
func swaggerJSON(docs fs.FS) ([]byte, error) {
	raw, err := fs.ReadFile(docs, openAPIFile)
	if err != nil {
		return nil, eris.Wrapf(err, "api: read %s", openAPIFile)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, eris.Wrapf(err, "api: parse %s", openAPIFile)
	}
	if doc == nil {
		return nil, eris.Errorf("api: %s is empty", openAPIFile)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, eris.Wrapf(err, "api: encode %s", openAPIFile)
	}
	return out, nil
}
