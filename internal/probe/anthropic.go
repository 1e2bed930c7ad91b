// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/traylinx/modelprobe/internal/constant"
)

func anthropicChatProbe(c Clients) ProbeFunc {
	return func(ctx context.Context, apiKey, model string) error {
		t := target{constant.Anthropic, model, constant.ModalityChat}
		client := anthropic.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(c.baseURL(constant.Anthropic)+"/"),
			option.WithHTTPClient(c.httpClient()),
			option.WithHeader("User-Agent", constant.UserAgent),
			// A probe is a single attempt; retries would hide the real outcome.
			option.WithMaxRetries(0),
		)
		_, err := client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(model),
			MaxTokens: 1,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(probePrompt)),
			},
		})
		return t.fromAnthropic(err)
	}
}
