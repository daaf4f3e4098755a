// backend/src/security/validation/image_validation.go
package validation

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/username/protrade/backend/src/logger"
)

// AllowedImageContentTypes lists the MIME types an image payload may carry,
// both in its data-URI header and in the sniffed content.
var AllowedImageContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateImagePayload checks one journal image payload. Two forms are
// accepted: a base64 data URI (the declared MIME must be an allowed image
// type, the decoded bytes must sniff to an allowed image type, and the
// decoded size must stay under maxBytes) or a plain http(s) URL no longer
// than maxURLLength.
func ValidateImagePayload(payload string, maxBytes int64, maxURLLength int) error {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return fmt.Errorf("image payload is empty")
	}

	if strings.HasPrefix(trimmed, "data:") {
		return validateDataURI(trimmed, maxBytes)
	}
	return validateImageURL(trimmed, maxURLLength)
}

func validateDataURI(payload string, maxBytes int64) error {
	header, data, found := strings.Cut(payload, ",")
	if !found {
		return fmt.Errorf("malformed data URI: missing comma separator")
	}

	meta := strings.TrimPrefix(header, "data:")
	if !strings.HasSuffix(meta, ";base64") {
		return fmt.Errorf("data URI must be base64 encoded")
	}
	declaredType := strings.ToLower(strings.TrimSuffix(meta, ";base64"))
	if !AllowedImageContentTypes[declaredType] {
		logger.L.Warn("Disallowed declared image type in data URI", "contentType", declaredType)
		return fmt.Errorf("image type '%s' is not allowed", declaredType)
	}

	// Reject on encoded length first; base64 expands ~4/3, so this bounds the
	// decode without allocating for oversized payloads.
	if int64(len(data))/4*3 > maxBytes {
		return fmt.Errorf("image exceeds the maximum size of %d bytes", maxBytes)
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return fmt.Errorf("invalid base64 image data: %w", err)
	}
	if int64(len(decoded)) > maxBytes {
		return fmt.Errorf("image exceeds the maximum size of %d bytes", maxBytes)
	}
	if len(decoded) == 0 {
		return fmt.Errorf("image data is empty")
	}

	sniffLen := len(decoded)
	if sniffLen > 512 {
		sniffLen = 512
	}
	detected := strings.ToLower(strings.Split(http.DetectContentType(decoded[:sniffLen]), ";")[0])
	if !AllowedImageContentTypes[detected] {
		logger.L.Warn("Image payload rejected: content does not match an allowed image type",
			"declaredType", declaredType, "detectedType", detected)
		return fmt.Errorf("image content detected as '%s', which is not allowed", detected)
	}

	return nil
}

func validateImageURL(payload string, maxURLLength int) error {
	if len(payload) > maxURLLength {
		return fmt.Errorf("image URL exceeds the maximum length of %d characters", maxURLLength)
	}
	u, err := url.Parse(payload)
	if err != nil {
		return fmt.Errorf("invalid image URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("image URL must use http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("image URL has no host")
	}
	return nil
}
