// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package parsers

import (
	"strings"

	"github.com/tidwall/gjson"
)

// GeminiParser parses Generative Language API /v1beta/models pages.
type GeminiParser struct{}

// NewGeminiParser creates a new Gemini parser.
func NewGeminiParser() *GeminiParser {
	return &GeminiParser{}
}

// ParsePage decodes {"models":[...],"nextPageToken":"..."}.
// Names arrive as "models/<id>" and are stripped to the bare id. The API omits
// "models" entirely on an empty page, which is not an error.
func (p *GeminiParser) ParsePage(content []byte) (Page, error) {
	if !gjson.ValidBytes(content) {
		return Page{}, ErrInvalidJSON
	}

	var page Page
	gjson.GetBytes(content, "models").ForEach(func(_, m gjson.Result) bool {
		id := strings.TrimPrefix(m.Get("name").String(), "models/")
		if id == "" {
			return true
		}
		var methods []string
		m.Get("supportedGenerationMethods").ForEach(func(_, v gjson.Result) bool {
			methods = append(methods, v.String())
			return true
		})
		page.Items = append(page.Items, Item{
			ID:               id,
			DisplayName:      m.Get("displayName").String(),
			OwnedBy:          "google",
			Description:      m.Get("description").String(),
			InputTokenLimit:  int(m.Get("inputTokenLimit").Int()),
			OutputTokenLimit: int(m.Get("outputTokenLimit").Int()),
			Methods:          methods,
		})
		return true
	})

	page.NextCursor = gjson.GetBytes(content, "nextPageToken").String()
	return page, nil
}
