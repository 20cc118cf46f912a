package procurement

import (
	"context"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	identityapp "github.com/procura/backend/internal/application/identity"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ObjectStorage issues presigned upload URLs for attachment files
type ObjectStorage interface {
	GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)
}

// maxFileNameLength bounds the sanitized file name inside a storage key
const maxFileNameLength = 120

// AttachmentService hands out upload targets for request attachments.
// The returned key is what the client stores in a request's attachments.
type AttachmentService struct {
	storage   ObjectStorage
	keyPrefix string
	expiresIn time.Duration
	logger    *zap.Logger
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(storage ObjectStorage, keyPrefix string, expiresIn time.Duration, logger *zap.Logger) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	return &AttachmentService{
		storage:   storage,
		keyPrefix: strings.Trim(keyPrefix, "/"),
		expiresIn: expiresIn,
		logger:    logger.Named("attachments"),
	}
}

// CreateUploadURL returns a presigned PUT URL under {prefix}/{user id}/{uuid}-{file name}
func (s *AttachmentService) CreateUploadURL(ctx context.Context, p *identity.Principal, in UploadURLInput) (*UploadURLResponse, error) {
	if err := identityapp.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	fileName := SanitizeFileName(in.FileName)
	if fileName == "" {
		return nil, shared.NewBadRequestError("File name is required")
	}
	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" || !strings.Contains(contentType, "/") {
		return nil, shared.NewBadRequestError("Content type must be a MIME type")
	}

	key := path.Join(s.keyPrefix, p.ID.String(), uuid.NewString()+"-"+fileName)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, s.expiresIn)
	if err != nil {
		s.logger.Error("Failed to generate upload URL", zap.String("key", key), zap.Error(err))
		return nil, shared.NewStoreError(err)
	}

	return &UploadURLResponse{URL: url, Key: key, Method: "PUT", ExpiresAt: expiresAt}, nil
}

// SanitizeFileName keeps the base name and replaces characters outside
// letters, digits, dot, dash and underscore with a dash.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), ".-")
	if len(out) > maxFileNameLength {
		out = out[len(out)-maxFileNameLength:]
	}
	return out
}
