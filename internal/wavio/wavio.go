// Package wavio converts between WAV blobs and the mono PCM-16 clips the
// playback engine consumes.
package wavio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Clip is a decoded recording: mono 16-bit PCM at a known sample rate.
type Clip struct {
	Samples    []int16
	SampleRate int
}

// Duration returns the playable length of the clip.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.Samples)) / float64(c.SampleRate) * float64(time.Second))
}

// At converts a playback offset to a sample index, clamped to the clip.
func (c *Clip) At(offset time.Duration) int {
	if offset <= 0 {
		return 0
	}
	idx := int(offset.Seconds() * float64(c.SampleRate))
	if idx > len(c.Samples) {
		idx = len(c.Samples)
	}
	return idx
}

// header is the canonical 44-byte PCM WAV header.
type header struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

// Encode serializes mono PCM-16 samples as a WAV blob.
func Encode(samples []int16, sampleRate int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("cannot encode empty audio")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	dataSize := uint32(len(samples) * 2)
	h := header{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1, // PCM
		NumChannels:   1,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * 2,
		BlockAlign:    2,
		BitsPerSample: 16,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(samples)*2))
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("write wav header: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("write wav data: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a WAV blob into a Clip. Multi-channel input is downmixed to
// mono and other bit depths are rescaled to 16-bit.
func Decode(data []byte) (*Clip, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav file")
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if pcm == nil || pcm.Format == nil || len(pcm.Data) == 0 {
		return nil, fmt.Errorf("wav file contains no audio data")
	}
	return fromPCM(pcm, int(dec.BitDepth)), nil
}

// fromPCM downmixes an interleaved buffer to mono and rescales the samples
// to 16-bit.
func fromPCM(pcm *audio.IntBuffer, bitDepth int) *Clip {
	channels := pcm.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	shift := uint(0)
	if bitDepth > 16 {
		shift = uint(bitDepth - 16)
	}
	scaleUp := uint(0)
	if bitDepth > 0 && bitDepth < 16 {
		scaleUp = uint(16 - bitDepth)
	}

	frames := len(pcm.Data) / channels
	samples := make([]int16, frames)
	for i := 0; i < frames; i++ {
		var sum int
		for ch := 0; ch < channels; ch++ {
			v := pcm.Data[i*channels+ch]
			// 8-bit WAV PCM is unsigned, centered on 128; deeper depths
			// are signed.
			if bitDepth == 8 {
				v -= 128
			}
			if shift > 0 {
				v >>= shift
			} else if scaleUp > 0 {
				v <<= scaleUp
			}
			sum += v
		}
		samples[i] = clampInt16(sum / channels)
	}

	return &Clip{
		Samples:    samples,
		SampleRate: pcm.Format.SampleRate,
	}
}

// Probe returns the duration of a WAV blob without keeping the decoded
// samples around.
func Probe(data []byte) (time.Duration, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("not a valid wav file")
	}
	d, err := dec.Duration()
	if err != nil {
		return 0, fmt.Errorf("read wav duration: %w", err)
	}
	return d, nil
}

func clampInt16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
