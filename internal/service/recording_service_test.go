package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type mockUploader struct {
	bucket      string
	path        string
	contentType string
	body        []byte
	err         error
}

func (m *mockUploader) Upload(_ context.Context, bucket, objectPath, contentType string, body io.Reader) error {
	m.bucket = bucket
	m.path = objectPath
	m.contentType = contentType
	m.body, _ = io.ReadAll(body)
	return m.err
}

// buildWAV arma un WAV PCM mono de 16 bits con n muestras a sampleRate.
func buildWAV(sampleRate, samples int) []byte {
	var buf bytes.Buffer
	dataSize := samples * 2
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

func TestWAVDuration(t *testing.T) {
	d, err := WAVDuration(buildWAV(8000, 16000))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if d != 2*time.Second {
		t.Fatalf("expected 2s, got %v", d)
	}

	if _, err := WAVDuration([]byte("not a wav")); err == nil {
		t.Fatalf("expected error for non wav input")
	}
}

func TestRecordingServiceSave_WAV(t *testing.T) {
	up := &mockUploader{}
	svc := NewRecordingService(zap.NewNop(), up, "gita-guru")
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	data := buildWAV(8000, 8000)
	rec, err := svc.Save(context.Background(), "u1", data)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if up.bucket != "gita-guru" {
		t.Fatalf("expected gita-guru bucket, got %q", up.bucket)
	}
	if !strings.HasPrefix(up.path, "u1/20240501T100000Z_") || !strings.HasSuffix(up.path, ".wav") {
		t.Fatalf("unexpected object path %q", up.path)
	}
	if up.contentType != "audio/wav" {
		t.Fatalf("expected audio/wav, got %q", up.contentType)
	}
	if !bytes.Equal(up.body, data) {
		t.Fatalf("expected body to be uploaded unchanged")
	}
	if rec.Duration != time.Second || rec.Size != int64(len(data)) {
		t.Fatalf("unexpected recording metadata: %+v", rec)
	}
}

func TestRecordingServiceSave_Rejections(t *testing.T) {
	up := &mockUploader{}
	svc := NewRecordingService(zap.NewNop(), up, "gita-guru")

	if _, err := svc.Save(context.Background(), "u1", nil); !errors.Is(err, ErrRecordingEmpty) {
		t.Fatalf("expected ErrRecordingEmpty, got %v", err)
	}
	if _, err := svc.Save(context.Background(), "u1", make([]byte, MaxRecordingSize+1)); !errors.Is(err, ErrRecordingTooLarge) {
		t.Fatalf("expected ErrRecordingTooLarge, got %v", err)
	}
	if _, err := svc.Save(context.Background(), "u1", []byte("plain text, not audio")); !errors.Is(err, ErrUnsupportedAudio) {
		t.Fatalf("expected ErrUnsupportedAudio, got %v", err)
	}
	if up.path != "" {
		t.Fatalf("expected nothing uploaded, got %q", up.path)
	}
}

func TestRecordingServiceSave_UploadError(t *testing.T) {
	up := &mockUploader{err: errors.New("bucket not found")}
	svc := NewRecordingService(zap.NewNop(), up, "missing")

	_, err := svc.Save(context.Background(), "u1", buildWAV(8000, 100))
	if err == nil || !strings.Contains(err.Error(), "bucket not found") {
		t.Fatalf("expected upload error, got %v", err)
	}
}
