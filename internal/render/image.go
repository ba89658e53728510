package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
)

// maxImageBytes caps how much image data a single element may pull in.
const maxImageBytes = 10 << 20

// loadImage fetches an element's image content and normalizes it to PNG.
// Content is either a base64 data URL or an http(s) URL. Normalizing
// through a full decode also rejects anything that merely claims to be an
// image.
func (r *Renderer) loadImage(content string) ([]byte, error) {
	var raw []byte
	switch {
	case strings.HasPrefix(content, "data:"):
		b, err := decodeDataURL(content)
		if err != nil {
			return nil, err
		}
		raw = b
	case strings.HasPrefix(content, "http://"), strings.HasPrefix(content, "https://"):
		b, err := r.fetchImage(content)
		if err != nil {
			return nil, err
		}
		raw = b
	default:
		return nil, fmt.Errorf("unsupported image source")
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeDataURL(content string) ([]byte, error) {
	idx := strings.Index(content, ",")
	if idx < 0 {
		return nil, fmt.Errorf("malformed data url")
	}
	meta, payload := content[:idx], content[idx+1:]
	if !strings.Contains(meta, "base64") {
		return nil, fmt.Errorf("data url is not base64 encoded")
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding data url: %w", err)
	}
	return b, nil
}

func (r *Renderer) fetchImage(url string) ([]byte, error) {
	resp, err := r.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching image: status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("reading image body: %w", err)
	}
	return b, nil
}
