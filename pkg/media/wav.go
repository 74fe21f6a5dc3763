package media

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// DecodeWAV parses a 16-bit PCM WAV file into an AudioClip.
func DecodeWAV(data []byte) (*AudioClip, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	var sampleRate int
	var numChannels int
	var bitsPerSample int
	var pcm []byte

	// Walk chunks: only fmt and data matter.
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+size > len(data) {
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("truncated fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return nil, fmt.Errorf("unsupported WAV format %d (want PCM)", format)
			}
			numChannels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+size]
		}

		// Chunks are word-aligned.
		offset = body + size
		if size%2 == 1 {
			offset++
		}
	}

	if sampleRate == 0 || numChannels == 0 {
		return nil, fmt.Errorf("missing fmt chunk")
	}
	if bitsPerSample != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d (want 16)", bitsPerSample)
	}
	if pcm == nil {
		return nil, fmt.Errorf("missing data chunk")
	}

	clip := &AudioClip{
		Data:        make([]byte, len(pcm)),
		SampleRate:  sampleRate,
		NumChannels: numChannels,
	}
	copy(clip.Data, pcm)
	return clip, nil
}

// EncodeWAV serializes the clip as a 16-bit PCM WAV file.
func EncodeWAV(clip *AudioClip) []byte {
	dataSize := uint32(len(clip.Data))
	byteRate := uint32(clip.SampleRate * clip.NumChannels * 2)
	blockAlign := uint16(clip.NumChannels * 2)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(clip.NumChannels))
	binary.Write(&buf, binary.LittleEndian, uint32(clip.SampleRate))
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	buf.Write(clip.Data)
	return buf.Bytes()
}

// ReadWAVFile loads a WAV file from disk.
func ReadWAVFile(path string) (*AudioClip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}
	clip, err := DecodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return clip, nil
}

// WriteWAVFile writes the clip to disk as a WAV file.
func WriteWAVFile(path string, clip *AudioClip) error {
	if err := os.WriteFile(path, EncodeWAV(clip), 0644); err != nil {
		return fmt.Errorf("failed to write WAV file: %w", err)
	}
	return nil
}
