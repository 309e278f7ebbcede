package router

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/HarooHub/internal/pkg/middleware"
)

const openAPIFile = "../../../public/docs/v1/openapi.yml"

func TestOpenAPIDocument(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(openAPIFile)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	// every exempt API route is documented and nothing else is
	assert.Equal(t, len(middleware.CSRFExemptPaths), doc.Paths.Len())
	for path := range middleware.CSRFExemptPaths {
		item := doc.Paths.Value(path)
		if assert.NotNil(t, item, path) {
			assert.NotNil(t, item.Post, path)
		}
	}
}

func TestOpenAPIMatchesRoutes(t *testing.T) {
	te := newTestEnv(t)

	registered := map[string]bool{}
	for _, route := range te.app.GetRoutes(true) {
		if route.Method == "POST" {
			registered[route.Path] = true
		}
	}
	for path := range middleware.CSRFExemptPaths {
		assert.True(t, registered[path], "route %s is registered", path)
	}
}
