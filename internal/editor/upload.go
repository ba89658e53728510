package editor

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/inkform/docpress/internal/document"
)

// ImageDataURL converts uploaded image bytes into a data URL suitable for
// an image element's content. Non-image payloads are rejected so a stray
// PDF or text file never ends up embedded in a template.
func ImageDataURL(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("editor: empty image upload")
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("editor: upload is %s, not an image", mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// SetElementImage uploads image bytes onto an image element and commits
// the change as one history entry.
func (e *Editor) SetElementImage(id string, data []byte) error {
	el := e.tmpl.FindElement(id)
	if el == nil {
		return fmt.Errorf("editor: no element %s", id)
	}
	if el.Type != document.ElementImage {
		return fmt.Errorf("editor: element %s is not an image", id)
	}
	url, err := ImageDataURL(data)
	if err != nil {
		return err
	}
	el.Content = url
	e.commit()
	return nil
}
