// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"
	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/util"
	"google.golang.org/genai"
)

// Error is the structured failure every probe returns.
type Error struct {
	Provider   constant.Provider
	Model      string
	Modality   constant.Modality
	StatusCode int
	// Type and Code are the provider's machine-readable error identifiers.
	Type    string
	Code    string
	Message string
	// NotFound is set when the provider definitively reported the model missing.
	NotFound bool
	// Err is the underlying SDK or transport error.
	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s probe for %s: status %d: %s", e.Provider, e.Modality, e.Model, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s probe for %s: %s", e.Provider, e.Modality, e.Model, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// text is everything marker matching looks at.
func (e *Error) text() string {
	parts := []string{e.Message, e.Type, e.Code}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, " ")
}

// target identifies the probe an error belongs to.
type target struct {
	provider constant.Provider
	model    string
	modality constant.Modality
}

func (t target) newError(status int, typ, code, message string, cause error) *Error {
	return &Error{
		Provider:   t.provider,
		Model:      t.model,
		Modality:   t.modality,
		StatusCode: status,
		Type:       typ,
		Code:       code,
		Message:    message,
		NotFound:   status == http.StatusNotFound,
		Err:        cause,
	}
}

// fromOpenAI maps go-openai errors, which cover OpenAI and xAI.
func (t target) fromOpenAI(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := ""
		if apiErr.Code != nil {
			code = fmt.Sprint(apiErr.Code)
		}
		pe := t.newError(apiErr.HTTPStatusCode, apiErr.Type, code, apiErr.Message, err)
		pe.NotFound = pe.NotFound || code == "model_not_found"
		return pe
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := util.ProviderErrorMessage(reqErr.Body)
		if msg == "" && reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return t.newError(reqErr.HTTPStatusCode, "", util.ProviderErrorCode(reqErr.Body), msg, err)
	}
	return t.newError(0, "", "", "", err)
}

// fromAnthropic maps anthropic-sdk-go errors. The raw JSON body carries
// {"type":"error","error":{"type":"not_found_error","message":...}}.
func (t target) fromAnthropic(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		raw := apiErr.RawJSON()
		msg := gjson.Get(raw, "error.message").String()
		typ := gjson.Get(raw, "error.type").String()
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		pe := t.newError(apiErr.StatusCode, typ, "", msg, err)
		pe.NotFound = pe.NotFound || typ == "not_found_error"
		return pe
	}
	return t.newError(0, "", "", "", err)
}

// fromGenAI maps google.golang.org/genai errors. The SDK returns APIError by
// value; the pointer form is accepted too.
func (t target) fromGenAI(err error) error {
	if err == nil {
		return nil
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return t.genaiError(apiErr, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return t.genaiError(*apiErrPtr, err)
	}
	return t.newError(0, "", "", "", err)
}

func (t target) genaiError(apiErr genai.APIError, cause error) *Error {
	pe := t.newError(apiErr.Code, apiErr.Status, "", apiErr.Message, cause)
	pe.NotFound = pe.NotFound || apiErr.Status == "NOT_FOUND"
	return pe
}

// fromHTTP maps a raw non-2xx response body.
func (t target) fromHTTP(status int, body []byte) error {
	msg := util.ProviderErrorMessage(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	code := util.ProviderErrorCode(body)
	pe := t.newError(status, gjson.GetBytes(body, "error.type").String(), code, msg, nil)
	pe.NotFound = pe.NotFound || code == "model_not_found"
	return pe
}
