package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageAttachment_Describe(t *testing.T) {
	att := ImageAttachment{Path: "/tmp/photos/cat.png"}
	assert.Equal(t, `[Attached image "cat.png"]`, att.Describe())

	att = ImageAttachment{Path: "cat.png", AltText: "a cat on a keyboard"}
	assert.Equal(t, `[Attached image "cat.png": a cat on a keyboard]`, att.Describe())
}

func TestFileAttachment_Describe(t *testing.T) {
	att := FileAttachment{Path: "notes/report.pdf"}
	assert.Equal(t, `[Attached file "report.pdf"]`, att.Describe())

	att = FileAttachment{Path: "report.pdf", MediaType: "application/pdf"}
	assert.Equal(t, `[Attached file "report.pdf" (application/pdf)]`, att.Describe())
}

func TestLinkAttachment_Describe(t *testing.T) {
	att := LinkAttachment{URL: "https://example.com/doc"}
	assert.Equal(t, "[Linked resource: https://example.com/doc]", att.Describe())

	att = LinkAttachment{URL: "https://example.com/doc", Title: "The Doc"}
	assert.Equal(t, `[Linked resource "The Doc": https://example.com/doc]`, att.Describe())
}

func TestDescribeAll(t *testing.T) {
	assert.Empty(t, DescribeAll(nil))

	all := DescribeAll([]Attachment{
		ImageAttachment{Path: "cat.png"},
		LinkAttachment{URL: "https://example.com"},
	})
	assert.Equal(t, "[Attached image \"cat.png\"]\n[Linked resource: https://example.com]", all)
}

func TestAttachment_JSONRoundTrip(t *testing.T) {
	attachments := []Attachment{
		ImageAttachment{Path: "cat.png", AltText: "cat"},
		FileAttachment{Path: "report.pdf", MediaType: "application/pdf"},
		LinkAttachment{URL: "https://example.com", Title: "Example"},
	}

	for _, att := range attachments {
		data, err := MarshalAttachment(att)
		require.NoError(t, err)

		got, err := UnmarshalAttachment(data)
		require.NoError(t, err)
		assert.Equal(t, att, got)
	}
}

func TestUnmarshalAttachment_Errors(t *testing.T) {
	_, err := UnmarshalAttachment([]byte(`{"type":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid json")

	_, err = UnmarshalAttachment([]byte(`{"type":"audio"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown attachment type")
}
