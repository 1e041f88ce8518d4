package document

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const pngDataURIPrefix = "data:image/png;base64,"

func qrDataURI(content string, size int) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return pngDataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}
