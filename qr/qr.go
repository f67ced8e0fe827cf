// Package qr renders table QR codes that deep-link into the ordering page and
// backs up the upload directory they are written to.
package qr

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/junaidrashid-git/canteen-api/models"
)

const (
	subDir      = "qr"
	defaultSize = 256
)

var unsafeChars = regexp.MustCompile(`[^\w\-]`)

// DeepLink returns <frontend>/order?table=<n>.
func DeepLink(frontendBaseURL, table string) string {
	return strings.TrimRight(frontendBaseURL, "/") + "/order?table=" + url.QueryEscape(table)
}

// Generator writes QR PNGs under UploadDir/qr and reports their public URLs.
type Generator struct {
	UploadDir       string
	PublicBaseURL   string
	FrontendBaseURL string
	Size            int
	now             func() time.Time
}

func NewGenerator(uploadDir, publicBaseURL, frontendBaseURL string) *Generator {
	return &Generator{
		UploadDir:       uploadDir,
		PublicBaseURL:   strings.TrimRight(publicBaseURL, "/"),
		FrontendBaseURL: frontendBaseURL,
		Size:            defaultSize,
		now:             time.Now,
	}
}

// Render writes the QR image for table and returns the unsaved record.
func (g *Generator) Render(table string) (models.QRTable, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return models.QRTable{}, fmt.Errorf("qr: table number is required")
	}

	dir := filepath.Join(g.UploadDir, subDir)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return models.QRTable{}, fmt.Errorf("qr: create upload folder: %w", err)
	}

	link := DeepLink(g.FrontendBaseURL, table)
	name := fmt.Sprintf("table-%s-%d.png", unsafeChars.ReplaceAllString(table, "_"), g.now().UnixNano())
	size := g.Size
	if size <= 0 {
		size = defaultSize
	}
	if err := qrcode.WriteFile(link, qrcode.Medium, size, filepath.Join(dir, name)); err != nil {
		return models.QRTable{}, fmt.Errorf("qr: render %s: %w", table, err)
	}

	rel := subDir + "/" + name
	return models.QRTable{
		TableNumber: table,
		DeepLink:    link,
		FileName:    rel,
		FileURL:     g.PublicBaseURL + "/uploads/" + rel,
	}, nil
}

// Remove deletes a rendered image. A file that is already gone is not an error.
func (g *Generator) Remove(fileName string) error {
	if err := os.Remove(filepath.Join(g.UploadDir, filepath.FromSlash(fileName))); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
