package service

import (
	"fmt"
	"net/url"

	"github.com/skip2/go-qrcode"
)

const defaultQRSize = 256

type QRGenerator interface {
	Generate(restaurantID, tableID int) ([]byte, error)
}

// TableQRGenerator encodes the link a guest scans to join a table session.
type TableQRGenerator struct {
	BaseURL string
	Size    int
}

var _ QRGenerator = TableQRGenerator{}

func (g TableQRGenerator) JoinURL(restaurantID, tableID int) string {
	query := url.Values{}
	query.Set("restaurant", fmt.Sprint(restaurantID))
	query.Set("table", fmt.Sprint(tableID))
	return g.BaseURL + "/?" + query.Encode()
}

func (g TableQRGenerator) Generate(restaurantID, tableID int) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = defaultQRSize
	}
	return qrcode.Encode(g.JoinURL(restaurantID, tableID), qrcode.Medium, size)
}
