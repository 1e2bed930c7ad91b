// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package parsers decodes one page of a provider's model-listing response.
package parsers

import (
	"errors"
	"time"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when a page body is not valid JSON.
var ErrInvalidJSON = errors.New("response is not valid JSON")

// Item is one raw model entry as the provider reported it, before filtering.
type Item struct {
	ID               string
	DisplayName      string
	Created          *time.Time
	OwnedBy          string
	Description      string
	InputTokenLimit  int
	OutputTokenLimit int
	// Methods is Gemini's supportedGenerationMethods; empty elsewhere.
	Methods []string
}

// Page is a decoded listing page. An empty NextCursor means the listing is complete.
type Page struct {
	Items      []Item
	NextCursor string
}

func unixTime(v gjson.Result) *time.Time {
	if !v.Exists() || v.Int() <= 0 {
		return nil
	}
	t := time.Unix(v.Int(), 0).UTC()
	return &t
}

func rfc3339Time(v gjson.Result) *time.Time {
	if v.Type != gjson.String {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v.String())
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
