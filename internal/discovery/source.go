// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package discovery

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/traylinx/modelprobe/internal/capability"
	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/discovery/parsers"
	"github.com/traylinx/modelprobe/internal/registry"
)

// Source describes how to list one provider's catalog.
type Source struct {
	Provider constant.Provider
	BaseURL  string
	// ListPath and ModelPath are appended to BaseURL ("/v1/models", "/v1/models/").
	ListPath  string
	ModelPath string
	// Query is sent on every listing request (page size).
	Query url.Values
	// CursorParam carries the next-page cursor ("after", "after_id", "pageToken").
	CursorParam string
	AuthHeaders func(apiKey string) map[string]string
	Parser      Parser
	// Include holds id prefixes; an empty list admits everything.
	Include []string
	// Exclude patterns always win over Include.
	Exclude   []*regexp.Regexp
	InferType func(item parsers.Item) registry.ModelType
}

// SourceOptions are the user-overridable parts of a Source.
type SourceOptions struct {
	BaseURL string
	Include []string
	Exclude []string
}

// PageURL builds the listing URL for the given cursor ("" for the first page).
func (s Source) PageURL(cursor string) string {
	q := url.Values{}
	for k, v := range s.Query {
		q[k] = append([]string(nil), v...)
	}
	if cursor != "" {
		q.Set(s.CursorParam, cursor)
	}
	u := strings.TrimRight(s.BaseURL, "/") + s.ListPath
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// ModelURL builds the single-model lookup URL.
func (s Source) ModelURL(modelID string) string {
	return strings.TrimRight(s.BaseURL, "/") + s.ModelPath + url.PathEscape(modelID)
}

// Allowed applies the include prefixes, then the exclude patterns.
func (s Source) Allowed(modelID string) bool {
	id := strings.ToLower(modelID)
	if len(s.Include) > 0 {
		included := false
		for _, prefix := range s.Include {
			if strings.HasPrefix(id, strings.ToLower(prefix)) {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}
	for _, re := range s.Exclude {
		if re.MatchString(modelID) {
			return false
		}
	}
	return true
}

// Default include/exclude lists per provider.
var (
	DefaultOpenAIInclude = []string{
		"gpt-", "o1", "o3", "o4", "chatgpt-", "dall-e", "gpt-image",
		"text-embedding", "whisper", "tts-", "omni-moderation", "codex-",
	}
	DefaultOpenAIExclude = []string{
		`^babbage`, `^davinci`, `^text-(ada|babbage|curie|davinci)`, `-instruct`,
		`^ft:`, `^gpt-3\.5-turbo-(0301|0613|16k-0613)`, `-search-`,
	}
	DefaultAnthropicExclude = []string{`^claude-(1|2|instant)`}
	DefaultGeminiInclude    = []string{"gemini-", "imagen-", "text-embedding-", "gemini-embedding", "veo-"}
	DefaultGeminiExclude    = []string{`^gemini-1\.0`, `^gemini-pro`, `^embedding-gecko`, `-vision-latest$`}
	DefaultXAIInclude       = []string{"grok"}
	DefaultXAIExclude       = []string{`^grok-beta$`, `^grok-vision-beta$`}
)

// NewSource builds the listing description for a provider. Empty option fields
// fall back to the provider defaults.
func NewSource(provider constant.Provider, opts SourceOptions) (Source, error) {
	analyzer := capability.NewAnalyzer()
	byID := func(item parsers.Item) registry.ModelType { return analyzer.InferType(item.ID) }
	bearer := func(apiKey string) map[string]string {
		return map[string]string{"Authorization": "Bearer " + apiKey}
	}

	var src Source
	var include, exclude []string
	switch provider {
	case constant.OpenAI, constant.XAI:
		src = Source{
			ListPath:    "/v1/models",
			ModelPath:   "/v1/models/",
			CursorParam: "after",
			AuthHeaders: bearer,
			Parser:      parsers.NewOpenAIParser(),
			InferType:   byID,
		}
		include, exclude = DefaultOpenAIInclude, DefaultOpenAIExclude
		if provider == constant.XAI {
			include, exclude = DefaultXAIInclude, DefaultXAIExclude
		}
	case constant.Anthropic:
		src = Source{
			ListPath:    "/v1/models",
			ModelPath:   "/v1/models/",
			Query:       url.Values{"limit": {"1000"}},
			CursorParam: "after_id",
			AuthHeaders: func(apiKey string) map[string]string {
				return map[string]string{
					"x-api-key":         apiKey,
					"anthropic-version": constant.AnthropicVersion,
				}
			},
			Parser: parsers.NewAnthropicParser(),
			// Anthropic's type field is always "model"; every listed model is a chat model.
			InferType: func(parsers.Item) registry.ModelType { return registry.TypeChat },
		}
		exclude = DefaultAnthropicExclude
	case constant.Gemini:
		src = Source{
			ListPath:    "/v1beta/models",
			ModelPath:   "/v1beta/models/",
			Query:       url.Values{"pageSize": {"1000"}},
			CursorParam: "pageToken",
			AuthHeaders: func(apiKey string) map[string]string {
				return map[string]string{"x-goog-api-key": apiKey}
			},
			Parser: parsers.NewGeminiParser(),
			InferType: func(item parsers.Item) registry.ModelType {
				return analyzer.InferGemini(item.ID, item.Methods)
			},
		}
		include, exclude = DefaultGeminiInclude, DefaultGeminiExclude
	default:
		return Source{}, fmt.Errorf("unsupported provider: %s", provider)
	}

	src.Provider = provider
	src.BaseURL = opts.BaseURL
	if src.BaseURL == "" {
		src.BaseURL = constant.DefaultBaseURL(provider)
	}
	if len(opts.Include) > 0 {
		include = opts.Include
	}
	if len(opts.Exclude) > 0 {
		exclude = opts.Exclude
	}
	src.Include = append([]string(nil), include...)
	for _, pattern := range exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Source{}, fmt.Errorf("invalid exclude pattern %q for %s: %w", pattern, provider, err)
		}
		src.Exclude = append(src.Exclude, re)
	}
	return src, nil
}
