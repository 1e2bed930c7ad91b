// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/tidwall/sjson"
	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/discovery/fetcher"
)

var modelIDGen = gopter.CombineGens(
	gen.OneConstOf("gpt-", "o3-", "babbage-", "davinci-", "ft:gpt-", "text-embedding-", "whisper-", "dall-e-", "tts-", "random-"),
	gen.OneConstOf("4o", "mini", "instruct", "3-small", "002", "search-preview", "x"),
).Map(func(values []interface{}) string {
	return values[0].(string) + values[1].(string)
})

// TestProperty_ExcludedIDsNeverSurface checks that an id matching an exclude
// pattern is rejected no matter what the include list says.
func TestProperty_ExcludedIDsNeverSurface(t *testing.T) {
	src, err := NewSource(constant.OpenAI, SourceOptions{})
	if err != nil {
		t.Fatalf("NewSource failed: %v", err)
	}

	properties := gopter.NewProperties(nil)
	properties.Property("exclude wins over include", prop.ForAll(
		func(id string) bool {
			for _, re := range src.Exclude {
				if re.MatchString(id) {
					return !src.Allowed(id)
				}
			}
			return true
		},
		modelIDGen,
	))
	properties.TestingRun(t)
}

// TestProperty_PaginationYieldsEveryAllowedModel serves a random id list split
// into random page sizes and checks the adapter returns exactly the allowed ids.
func TestProperty_PaginationYieldsEveryAllowedModel(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("all pages are merged and filtered", prop.ForAll(
		func(ids []string, pageSize int) bool {
			// Unique ids, since adapters de-duplicate
			seen := map[string]bool{}
			var unique []string
			for i, id := range ids {
				id = fmt.Sprintf("%s-%d", id, i)
				if !seen[id] {
					seen[id] = true
					unique = append(unique, id)
				}
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				start := 0
				if after := r.URL.Query().Get("after"); after != "" {
					start, _ = strconv.Atoi(strings.TrimPrefix(after, "cursor-"))
				}
				end := start + pageSize
				if end > len(unique) {
					end = len(unique)
				}
				body := `{"data":[]}`
				for _, id := range unique[start:end] {
					body, _ = sjson.Set(body, "data.-1", map[string]string{"id": id})
				}
				if end < len(unique) {
					body, _ = sjson.Set(body, "has_more", true)
					body, _ = sjson.Set(body, "last_id", fmt.Sprintf("cursor-%d", end))
				}
				w.Write([]byte(body))
			}))
			defer server.Close()

			src, err := NewSource(constant.OpenAI, SourceOptions{BaseURL: server.URL})
			if err != nil {
				return false
			}
			result := NewPagedAdapter(src, fetcher.NewHTTPFetcher(5*time.Second)).Discover(context.Background(), "sk")
			if !result.Success {
				return false
			}

			var want []string
			for _, id := range unique {
				if src.Allowed(id) {
					want = append(want, id)
				}
			}
			if len(want) != len(result.Models) {
				return false
			}
			for i, m := range result.Models {
				if m.ID != want[i] || !src.Allowed(m.ID) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(25, modelIDGen),
		gen.IntRange(1, 7),
	))
	properties.TestingRun(t)
}
