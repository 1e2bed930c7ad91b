// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package parsers

import (
	"errors"
	"testing"
)

func TestOpenAIParser_ParsePage(t *testing.T) {
	parser := NewOpenAIParser()

	content := []byte(`{
		"object": "list",
		"data": [
			{"id": "gpt-4o", "object": "model", "created": 1715367049, "owned_by": "system"},
			{"id": "", "object": "model"},
			{"id": "whisper-1", "object": "model", "created": 1677532384, "owned_by": "openai-internal"}
		],
		"has_more": true
	}`)

	page, err := parser.ParsePage(content)
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}

	// Entries without an id are dropped
	if len(page.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(page.Items))
	}
	if page.Items[0].Created == nil || page.Items[0].Created.Unix() != 1715367049 {
		t.Errorf("Expected created timestamp to be parsed, got %v", page.Items[0].Created)
	}
	// has_more without last_id falls back to the last entry's id
	if page.NextCursor != "whisper-1" {
		t.Errorf("Expected cursor 'whisper-1', got '%s'", page.NextCursor)
	}
}

func TestOpenAIParser_LastPage(t *testing.T) {
	page, err := NewOpenAIParser().ParsePage([]byte(`{"data":[{"id":"grok-3"}]}`))
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}
	if page.NextCursor != "" {
		t.Errorf("Expected empty cursor on last page, got '%s'", page.NextCursor)
	}
}

func TestOpenAIParser_InvalidShapes(t *testing.T) {
	parser := NewOpenAIParser()

	if _, err := parser.ParsePage([]byte(`not json`)); !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("Expected ErrInvalidJSON, got %v", err)
	}
	if _, err := parser.ParsePage([]byte(`{"models":[]}`)); err == nil {
		t.Error("Expected error for missing data array")
	}
}

func TestAnthropicParser_ParsePage(t *testing.T) {
	content := []byte(`{
		"data": [
			{"type": "model", "id": "claude-sonnet-4-20250514", "display_name": "Claude Sonnet 4", "created_at": "2025-05-22T00:00:00Z"},
			{"type": "model", "id": "claude-3-5-haiku-20241022", "display_name": "Claude Haiku 3.5", "created_at": "2024-10-22T00:00:00Z"}
		],
		"has_more": true,
		"first_id": "claude-sonnet-4-20250514",
		"last_id": "claude-3-5-haiku-20241022"
	}`)

	page, err := NewAnthropicParser().ParsePage(content)
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(page.Items))
	}
	if page.Items[0].DisplayName != "Claude Sonnet 4" {
		t.Errorf("Expected display name 'Claude Sonnet 4', got '%s'", page.Items[0].DisplayName)
	}
	if page.Items[0].Created == nil || page.Items[0].Created.Year() != 2025 {
		t.Errorf("Expected created_at to be parsed, got %v", page.Items[0].Created)
	}
	if page.NextCursor != "claude-3-5-haiku-20241022" {
		t.Errorf("Expected cursor from last_id, got '%s'", page.NextCursor)
	}
}

func TestGeminiParser_ParsePage(t *testing.T) {
	content := []byte(`{
		"models": [
			{
				"name": "models/gemini-2.5-flash",
				"displayName": "Gemini 2.5 Flash",
				"description": "Stable version of Gemini 2.5 Flash",
				"inputTokenLimit": 1048576,
				"outputTokenLimit": 65536,
				"supportedGenerationMethods": ["generateContent", "countTokens"]
			},
			{
				"name": "models/text-embedding-004",
				"supportedGenerationMethods": ["embedContent"]
			}
		],
		"nextPageToken": "tok-2"
	}`)

	page, err := NewGeminiParser().ParsePage(content)
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(page.Items))
	}

	first := page.Items[0]
	if first.ID != "gemini-2.5-flash" {
		t.Errorf("Expected 'models/' prefix to be stripped, got '%s'", first.ID)
	}
	if first.InputTokenLimit != 1048576 || first.OutputTokenLimit != 65536 {
		t.Errorf("Unexpected token limits: %d/%d", first.InputTokenLimit, first.OutputTokenLimit)
	}
	if len(first.Methods) != 2 || first.Methods[0] != "generateContent" {
		t.Errorf("Unexpected methods: %v", first.Methods)
	}
	if page.NextCursor != "tok-2" {
		t.Errorf("Expected cursor 'tok-2', got '%s'", page.NextCursor)
	}
}

func TestGeminiParser_EmptyPage(t *testing.T) {
	page, err := NewGeminiParser().ParsePage([]byte(`{}`))
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}
	if len(page.Items) != 0 || page.NextCursor != "" {
		t.Errorf("Expected empty final page, got %+v", page)
	}
}
