package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gita-guru/internal/domain"
)

const MaxRecordingSize = 10 << 20

var (
	ErrRecordingEmpty    = errors.New("recording is empty")
	ErrRecordingTooLarge = errors.New("recording too large")
	ErrUnsupportedAudio  = errors.New("unsupported audio format")
)

var allowedAudioTypes = []string{
	"audio/wav",
	"audio/mpeg",
	"audio/ogg",
	"application/ogg",
	"audio/webm",
	"video/webm",
}

// ObjectUploader sube objetos al storage de Supabase.
type ObjectUploader interface {
	Upload(ctx context.Context, bucket, objectPath, contentType string, body io.Reader) error
}

// RecordingService guarda las grabaciones de practica de cada usuario.
type RecordingService struct {
	logger  *zap.Logger
	storage ObjectUploader
	bucket  string
	now     func() time.Time
}

func NewRecordingService(logger *zap.Logger, storage ObjectUploader, bucket string) *RecordingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordingService{
		logger:  logger,
		storage: storage,
		bucket:  bucket,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *RecordingService) Save(ctx context.Context, userID string, data []byte) (domain.Recording, error) {
	if s.storage == nil {
		return domain.Recording{}, errors.New("recording service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return domain.Recording{}, errors.New("user id required")
	}
	if len(data) == 0 {
		return domain.Recording{}, ErrRecordingEmpty
	}
	if len(data) > MaxRecordingSize {
		return domain.Recording{}, ErrRecordingTooLarge
	}

	mtype := mimetype.Detect(data)
	if !isAllowedAudio(mtype) {
		return domain.Recording{}, fmt.Errorf("%w: %s", ErrUnsupportedAudio, mtype.String())
	}

	now := s.now()
	objectPath := fmt.Sprintf("%s/%s_%s%s", userID, now.Format("20060102T150405Z"), uuid.NewString(), mtype.Extension())
	contentType := mtype.String()
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}

	if err := s.storage.Upload(ctx, s.bucket, objectPath, contentType, bytes.NewReader(data)); err != nil {
		s.logger.Error("upload recording failed", zap.String("user_id", userID), zap.Error(err))
		return domain.Recording{}, fmt.Errorf("upload recording: %w", err)
	}

	rec := domain.Recording{
		UserID:      userID,
		Bucket:      s.bucket,
		Path:        objectPath,
		ContentType: contentType,
		Size:        int64(len(data)),
		CreatedAt:   now,
	}
	if mtype.Is("audio/wav") {
		if d, err := WAVDuration(data); err == nil {
			rec.Duration = d
		}
	}
	return rec, nil
}

func isAllowedAudio(mtype *mimetype.MIME) bool {
	for _, allowed := range allowedAudioTypes {
		if mtype.Is(allowed) {
			return true
		}
	}
	return false
}

// WAVDuration calcula la duracion a partir de los chunks fmt y data del RIFF.
func WAVDuration(data []byte) (time.Duration, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0, errors.New("not a wav file")
	}
	var byteRate uint32
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		switch id {
		case "fmt ":
			if body+12 > len(data) {
				return 0, errors.New("truncated fmt chunk")
			}
			byteRate = binary.LittleEndian.Uint32(data[body+8 : body+12])
		case "data":
			if byteRate == 0 {
				return 0, errors.New("data chunk before fmt chunk")
			}
			if body+size > len(data) {
				size = len(data) - body
			}
			return time.Duration(float64(size) / float64(byteRate) * float64(time.Second)), nil
		}
		// los chunks se alinean a 2 bytes
		offset = body + size + size%2
	}
	return 0, errors.New("missing data chunk")
}
