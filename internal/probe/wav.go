// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import (
	"bytes"
	"encoding/binary"
	"time"
)

// SilentWAV returns a mono 16-bit PCM WAV file of the given length, all zero samples.
func SilentWAV(d time.Duration, sampleRate int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	blockAlign := channels * bitsPerSample / 8
	samples := int(int64(sampleRate) * int64(d) / int64(time.Second))
	dataLen := samples * blockAlign

	buf := bytes.NewBuffer(make([]byte, 0, 44+dataLen))
	le := func(v any) { _ = binary.Write(buf, binary.LittleEndian, v) }

	buf.WriteString("RIFF")
	le(uint32(36 + dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	le(uint32(16)) // PCM chunk size
	le(uint16(1))  // PCM
	le(uint16(channels))
	le(uint32(sampleRate))
	le(uint32(sampleRate * blockAlign))
	le(uint16(blockAlign))
	le(uint16(bitsPerSample))

	buf.WriteString("data")
	le(uint32(dataLen))
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}
