// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ProviderErrorMessage pulls a human-readable message out of a provider error body.
// OpenAI, xAI, Anthropic and Gemini all use {"error":{"message":...}}; some
// gateways return {"error":"..."} or plain text.
func ProviderErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}
	for _, path := range []string{"error.message", "message", "detail"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	if v := gjson.GetBytes(body, "error"); v.Type == gjson.String {
		return v.String()
	}
	return ""
}

// ProviderErrorCode returns the machine-readable code or type from an error body
// (error.code, then error.type, then error.status for Gemini).
func ProviderErrorCode(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"error.code", "error.type", "error.status"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
