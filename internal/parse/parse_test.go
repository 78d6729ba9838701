// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pitagorin/pkg/types"
)

func TestParsePlainText(t *testing.T) {
	p := New(nil, "")
	for _, ext := range []string{"txt", "md", ".MD"} {
		got, err := p.Parse([]byte("# Notes\nThe sky is blue."), ext)
		require.NoError(t, err, ext)
		assert.Equal(t, "# Notes\nThe sky is blue.", got)
	}

	got, err := p.Parse([]byte("\ufeffhola"), "txt")
	require.NoError(t, err)
	assert.Equal(t, "hola", got)

	_, err = p.Parse([]byte{0xff, 0xfe, 0x00}, "txt")
	assert.ErrorIs(t, err, types.ErrExternalSource)
}

func TestParseUnsupported(t *testing.T) {
	_, err := New(nil, "").Parse([]byte("x"), "exe")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Contains(t, err.Error(), `unsupported file type "exe"`)

	var perr *Error
	assert.False(t, errors.As(err, &perr))
}

func TestParseCSV(t *testing.T) {
	in := "name,age\nAna,30\nLuis,41\n"
	got, err := New(nil, "").Parse([]byte(in), "csv")
	require.NoError(t, err)
	assert.Equal(t, "| name | age |\n| --- | --- |\n| Ana | 30 |\n| Luis | 41 |", got)

	got, err = New(nil, "").Parse([]byte("a\nx|y\n"), "csv")
	require.NoError(t, err)
	assert.Contains(t, got, `| x\|y |`)
}

func TestParseCSVErrors(t *testing.T) {
	p := New(nil, "")

	_, err := p.Parse(nil, "csv")
	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "csv", perr.Ext)
	assert.True(t, strings.HasPrefix(err.Error(), "error parsing CSV: "))

	_, err = p.Parse([]byte("a,b\n1,2,3\n"), "csv")
	assert.ErrorIs(t, err, types.ErrExternalSource)
}

func TestParseJSON(t *testing.T) {
	got, err := New(nil, "").Parse([]byte(`{"z":1,"a":{"b":[1,2]},"s":"ñ"}`), "json")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"z\": 1,\n  \"a\": {\n    \"b\": [\n      1,\n      2\n    ]\n  },\n  \"s\": \"ñ\"\n}", got)

	_, err = New(nil, "").Parse([]byte(`{"z":`), "json")
	assert.ErrorIs(t, err, types.ErrExternalSource)
	assert.Contains(t, err.Error(), "error parsing JSON")
}

func TestParseYAML(t *testing.T) {
	in := "zeta: 1\nalpha: {b: [1, 2]}\n"
	for _, ext := range []string{"yaml", "yml"} {
		got, err := New(nil, "").Parse([]byte(in), ext)
		require.NoError(t, err)
		assert.Equal(t, "zeta: 1\nalpha:\n  b:\n    - 1\n    - 2\n", got)
	}

	got, err := New(nil, "").Parse([]byte(""), "yaml")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = New(nil, "").Parse([]byte("a: [1, 2"), "yml")
	assert.ErrorIs(t, err, types.ErrExternalSource)
	assert.Contains(t, err.Error(), "error parsing YML")
}

func TestParseXML(t *testing.T) {
	in := `<?xml version="1.0"?><catalog><book id="1"><title>Go</title></book></catalog>`
	got, err := New(nil, "").Parse([]byte(in), "xml")
	require.NoError(t, err)
	assert.Equal(t, "<?xml version=\"1.0\"?>\n<catalog>\n  <book id=\"1\">\n    <title>Go</title>\n  </book>\n</catalog>", got)

	got, err = New(nil, "").Parse([]byte(`<dc:root xmlns:dc="urn:dc"><dc:x>1</dc:x></dc:root>`), "xml")
	require.NoError(t, err)
	assert.Contains(t, got, `<dc:root xmlns:dc="urn:dc">`)
	assert.Contains(t, got, "  <dc:x>1</dc:x>")
}

func TestParseXMLErrors(t *testing.T) {
	for name, in := range map[string]string{
		"mismatched": "<a><b></a>",
		"unclosed":   "<a><b></b>",
		"empty":      "   ",
	} {
		_, err := New(nil, "").Parse([]byte(in), "xml")
		assert.ErrorIs(t, err, types.ErrExternalSource, name)
	}
}

func docxBytes(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if documentXML != "" {
		w, err := zw.Create("word/document.xml")
		require.NoError(t, err)
		_, err = io.WriteString(w, documentXML)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParseDOCX(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Hello </w:t></w:r><w:r><w:t>world</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>
  </w:body>
</w:document>`
	got, err := New(nil, "").Parse(docxBytes(t, doc), "docx")
	require.NoError(t, err)
	assert.Equal(t, "Hello world\n\nSecond paragraph", got)
}

func TestParseDOCXErrors(t *testing.T) {
	_, err := New(nil, "").Parse([]byte("not a zip"), "docx")
	assert.ErrorIs(t, err, types.ErrExternalSource)

	_, err = New(nil, "").Parse(docxBytes(t, ""), "docx")
	assert.ErrorContains(t, err, "word/document.xml not found")
}

// fakeRuntime is a container.Runtime that echoes a fixed conversion.
type fakeRuntime struct {
	missing bool
	output  string
	gotIn   []byte
	image   string
}

func (f *fakeRuntime) Name() string    { return "fake" }
func (f *fakeRuntime) Available() bool { return true }

func (f *fakeRuntime) ImageExists(image string) error {
	if f.missing {
		return errors.New("no such image")
	}
	return nil
}

func (f *fakeRuntime) Run(_ context.Context, image string, stdin io.Reader, stdout io.Writer) error {
	f.image = image
	f.gotIn, _ = io.ReadAll(stdin)
	_, err := io.WriteString(stdout, f.output)
	return err
}

func TestParsePDF(t *testing.T) {
	rt := &fakeRuntime{output: "# Paper\n\nBody text\n"}
	got, err := New(rt, "").Parse([]byte("%PDF-1.7 ..."), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "# Paper\n\nBody text\n", got)
	assert.Equal(t, ImageMarkitdown, rt.image)
	assert.Equal(t, "%PDF-1.7 ...", string(rt.gotIn))

	_, err = New(rt, "custom/markitdown:1").Parse([]byte("%PDF"), ".pdf")
	require.NoError(t, err)
	assert.Equal(t, "custom/markitdown:1", rt.image)
}

func TestParsePDFErrors(t *testing.T) {
	_, err := New(nil, "").Parse([]byte("%PDF"), "pdf")
	assert.ErrorIs(t, err, types.ErrExternalSource)
	assert.ErrorContains(t, err, "no container runtime")

	_, err = New(&fakeRuntime{missing: true}, "").Parse([]byte("%PDF"), "pdf")
	assert.ErrorContains(t, err, "markitdown image not available in fake")

	_, err = New(&fakeRuntime{}, "").Parse([]byte("%PDF"), "pdf")
	assert.ErrorContains(t, err, "empty output")
}
