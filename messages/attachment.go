package messages

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Attachment represents a piece of auxiliary content referenced by a user
// turn. The adapter does not transmit attachment bytes; Describe renders the
// textual stand-in that is appended to the composed prompt.
type Attachment interface {
	attachment()
	// Describe returns the textual stand-in for this attachment.
	Describe() string
}

// ImageAttachment references an image on the local filesystem.
type ImageAttachment struct {
	Path    string // Filesystem path to the image
	AltText string // Optional alternative text

	_ struct{} // require keyed usage
}

func (ImageAttachment) attachment() {}

// Describe renders the image reference as prompt text.
func (a ImageAttachment) Describe() string {
	if strings.TrimSpace(a.AltText) != "" {
		return fmt.Sprintf("[Attached image %q: %s]", filepath.Base(a.Path), a.AltText)
	}
	return fmt.Sprintf("[Attached image %q]", filepath.Base(a.Path))
}

// FileAttachment references an arbitrary file on the local filesystem.
type FileAttachment struct {
	Path      string // Filesystem path to the file
	MediaType string // Optional MIME type hint

	_ struct{} // require keyed usage
}

func (FileAttachment) attachment() {}

// Describe renders the file reference as prompt text.
func (a FileAttachment) Describe() string {
	if strings.TrimSpace(a.MediaType) != "" {
		return fmt.Sprintf("[Attached file %q (%s)]", filepath.Base(a.Path), a.MediaType)
	}
	return fmt.Sprintf("[Attached file %q]", filepath.Base(a.Path))
}

// LinkAttachment references an external URL.
type LinkAttachment struct {
	URL   string // Target URL
	Title string // Optional human readable title

	_ struct{} // require keyed usage
}

func (LinkAttachment) attachment() {}

// Describe renders the link reference as prompt text.
func (a LinkAttachment) Describe() string {
	if strings.TrimSpace(a.Title) != "" {
		return fmt.Sprintf("[Linked resource %q: %s]", a.Title, a.URL)
	}
	return fmt.Sprintf("[Linked resource: %s]", a.URL)
}

// DescribeAll renders every attachment in order, one per line. It returns the
// empty string when there are no attachments.
func DescribeAll(attachments []Attachment) string {
	if len(attachments) == 0 {
		return ""
	}
	descriptions := make([]string, len(attachments))
	for i, att := range attachments {
		descriptions[i] = att.Describe()
	}
	return strings.Join(descriptions, "\n")
}

// MarshalAttachment implements JSON marshaling for the attachment variants.
// Each variant carries a "type" discriminator so UnmarshalAttachment can
// reconstruct the concrete kind.
func MarshalAttachment(a Attachment) ([]byte, error) {
	var (
		result []byte
		err    error
	)
	switch att := a.(type) {
	case ImageAttachment:
		result = []byte(`{"type":"image"}`)
		if result, err = sjson.SetBytes(result, "path", att.Path); err != nil {
			return nil, err
		}
		if att.AltText != "" {
			result, err = sjson.SetBytes(result, "alt_text", att.AltText)
		}
	case FileAttachment:
		result = []byte(`{"type":"file"}`)
		if result, err = sjson.SetBytes(result, "path", att.Path); err != nil {
			return nil, err
		}
		if att.MediaType != "" {
			result, err = sjson.SetBytes(result, "media_type", att.MediaType)
		}
	case LinkAttachment:
		result = []byte(`{"type":"link"}`)
		if result, err = sjson.SetBytes(result, "url", att.URL); err != nil {
			return nil, err
		}
		if att.Title != "" {
			result, err = sjson.SetBytes(result, "title", att.Title)
		}
	default:
		return nil, fmt.Errorf("unknown attachment type: %T", a)
	}
	return result, err
}

// UnmarshalAttachment reconstructs a concrete attachment from its JSON form.
func UnmarshalAttachment(data []byte) (Attachment, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json: %s", data)
	}

	jv := gjson.ParseBytes(data)
	switch tpe := jv.Get("type").String(); tpe {
	case "image":
		return ImageAttachment{
			Path:    jv.Get("path").String(),
			AltText: jv.Get("alt_text").String(),
		}, nil
	case "file":
		return FileAttachment{
			Path:      jv.Get("path").String(),
			MediaType: jv.Get("media_type").String(),
		}, nil
	case "link":
		return LinkAttachment{
			URL:   jv.Get("url").String(),
			Title: jv.Get("title").String(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown attachment type: %q", tpe)
	}
}
