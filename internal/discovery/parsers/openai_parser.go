// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package parsers

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// OpenAIParser parses OpenAI-compatible /v1/models pages (OpenAI, xAI).
type OpenAIParser struct{}

func NewOpenAIParser() *OpenAIParser {
	return &OpenAIParser{}
}

// ParsePage decodes {"data":[...],"has_more":bool,"last_id":"..."}.
// When has_more is set without last_id the last entry's id is the cursor.
func (p *OpenAIParser) ParsePage(content []byte) (Page, error) {
	if !gjson.ValidBytes(content) {
		return Page{}, ErrInvalidJSON
	}
	data := gjson.GetBytes(content, "data")
	if !data.IsArray() {
		return Page{}, fmt.Errorf("unexpected response shape: missing data array")
	}

	var page Page
	var lastID string
	data.ForEach(func(_, m gjson.Result) bool {
		id := m.Get("id").String()
		if id == "" {
			return true
		}
		lastID = id
		page.Items = append(page.Items, Item{
			ID:      id,
			Created: unixTime(m.Get("created")),
			OwnedBy: m.Get("owned_by").String(),
		})
		return true
	})

	if gjson.GetBytes(content, "has_more").Bool() {
		page.NextCursor = gjson.GetBytes(content, "last_id").String()
		if page.NextCursor == "" {
			page.NextCursor = lastID
		}
	}
	return page, nil
}
