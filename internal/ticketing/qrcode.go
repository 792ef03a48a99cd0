// Package ticketing renders admission artefacts for issued tickets: a QR code
// image carrying the ticket code and a printable one-page PDF.
package ticketing

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// Standard QR sizes in pixels.
const (
	QRSizeSmall    = 150
	QRSizeStandard = 300
	QRSizeLarge    = 500
)

// QRPNG encodes text as a PNG QR code of size x size pixels with medium error
// correction.
func QRPNG(text string, size int) ([]byte, error) {
	if size <= 0 {
		size = QRSizeStandard
	}
	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("generate qr: %w", err)
	}
	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}
	return png, nil
}
