package docx

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// emuPerInch is the OOXML length unit: 914400 EMU per inch.
const emuPerInch = 914400

// pixelDPI is the assumed screen density when converting pixel dimensions.
const pixelDPI = 96

// AddPicture appends a paragraph containing the image as an inline drawing.
// widthInches > 0 scales the image to that width preserving aspect ratio;
// zero keeps the native pixel size at 96 DPI.
func (d *Document) AddPicture(imagePath string, widthInches float64) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image %s: %w", imagePath, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("image %s has invalid dimensions %dx%d", imagePath, cfg.Width, cfg.Height)
	}

	ext := normalizeImageExt(format, filepath.Ext(imagePath))
	name := fmt.Sprintf("image%d%s", len(d.media)+1, ext)
	d.media = append(d.media, mediaPart{
		name:        name,
		contentType: contentTypeForImage(ext),
		data:        data,
	})

	widthEMU := int64(cfg.Width) * emuPerInch / pixelDPI
	heightEMU := int64(cfg.Height) * emuPerInch / pixelDPI
	if widthInches > 0 {
		scaled := int64(widthInches * emuPerInch)
		heightEMU = heightEMU * scaled / widthEMU
		widthEMU = scaled
	}

	d.Body = append(d.Body, &Paragraph{Runs: []*Run{{
		picture: &picture{
			relID:     mediaRelID(name),
			widthEMU:  widthEMU,
			heightEMU: heightEMU,
		},
	}}})
	return nil
}

// HasPictures reports whether any inline drawings are present.
func (d *Document) HasPictures() bool {
	return len(d.media) > 0
}

// normalizeImageExt prefers the decoded format over the file extension,
// since the payload is what ends up in the package.
func normalizeImageExt(format, fileExt string) string {
	switch format {
	case "png":
		return ".png"
	case "jpeg":
		return ".jpeg"
	case "gif":
		return ".gif"
	}
	if fileExt != "" {
		return strings.ToLower(fileExt)
	}
	return ".bin"
}

func contentTypeForImage(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return "image/png"
	case "jpeg", "jpg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
