package tables

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// QRCodePNG renders the code a guest scans at the table. It encodes the
// customer menu URL for the table's restaurant and number, with high error
// correction so the print survives wear.
func QRCodePNG(frontendBaseURL string, t Table, size int) ([]byte, error) {
	url := fmt.Sprintf("%s/restaurant/%s/table/%d",
		strings.TrimRight(frontendBaseURL, "/"), t.RestaurantID, t.Number)
	png, err := qrcode.Encode(url, qrcode.High, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
