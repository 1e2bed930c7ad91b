// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import (
	"encoding/binary"
	"testing"
	"time"
)

func TestSilentWAV(t *testing.T) {
	wav := SilentWAV(100*time.Millisecond, 16000)

	// 1600 samples * 2 bytes + 44 byte header
	if len(wav) != 44+3200 {
		t.Fatalf("Expected %d bytes, got %d", 44+3200, len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Fatalf("Malformed WAV header: %q", wav[:44])
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Errorf("Expected mono, got %d channels", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != 3200 {
		t.Errorf("Expected data length 3200, got %d", got)
	}
	for i, b := range wav[44:] {
		if b != 0 {
			t.Fatalf("Expected silence, found %d at offset %d", b, 44+i)
		}
	}
}
