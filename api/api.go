// Package api embeds the OpenAPI documents of the agent server and of the
// remote planning service it talks to.
package api

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Server is the OpenAPI document of the agent HTTP surface.
//
//go:embed openapi.yaml
var Server []byte

// Planner is the OpenAPI document of the planning service protocol.
//
//go:embed planner.yaml
var Planner []byte

// LoadServer parses and validates the agent document.
func LoadServer(ctx context.Context) (*openapi3.T, error) {
	return load(ctx, Server)
}

// LoadPlanner parses and validates the planning service document.
func LoadPlanner(ctx context.Context) (*openapi3.T, error) {
	return load(ctx, Planner)
}

func load(ctx context.Context, data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// Schema returns a named component schema of doc.
func Schema(doc *openapi3.T, name string) (*openapi3.Schema, error) {
	ref, ok := doc.Components.Schemas[name]
	if !ok || ref.Value == nil {
		return nil, fmt.Errorf("schema %q not found", name)
	}
	return ref.Value, nil
}
