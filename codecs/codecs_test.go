package codecs

import (
	"bytes"
	"io"
	"testing"

	gc "gopkg.in/check.v1"
)

type CodecsSuite struct{}

func (s *CodecsSuite) TestRoundTrip(c *gc.C) {
	var content = bytes.Repeat([]byte(`{"name": "h0001", "rack": "sjc1-1"}`), 100)

	for _, codec := range []Codec{None, Gzip, Snappy, Zstandard} {
		var buf bytes.Buffer

		var w, err = NewCodecWriter(&buf, codec)
		c.Assert(err, gc.IsNil)
		_, err = w.Write(content)
		c.Assert(err, gc.IsNil)
		c.Assert(w.Close(), gc.IsNil)

		if codec != None {
			c.Check(buf.Len() < len(content), gc.Equals, true)
		}

		r, err := NewCodecReader(&buf, codec)
		c.Assert(err, gc.IsNil)
		out, err := io.ReadAll(r)
		c.Assert(err, gc.IsNil)
		c.Assert(r.Close(), gc.IsNil)

		c.Check(out, gc.DeepEquals, content)
	}
}

func (s *CodecsSuite) TestUnsupportedCodec(c *gc.C) {
	var _, err = NewCodecWriter(io.Discard, Codec(42))
	c.Check(err, gc.ErrorMatches, `invalid value \(Codec\(42\)\)`)
	_, err = NewCodecReader(bytes.NewReader(nil), Codec(42))
	c.Check(err, gc.ErrorMatches, `invalid value \(Codec\(42\)\)`)

	c.Check(Codec(42).Validate(), gc.ErrorMatches, `invalid value \(Codec\(42\)\)`)
	c.Check(Snappy.Validate(), gc.IsNil)
}

func (s *CodecsSuite) TestPathMapping(c *gc.C) {
	var cases = []struct {
		path     string
		codec    Codec
		stripped string
	}{
		{"plans/fleet.json", None, "plans/fleet.json"},
		{"plans/fleet.json.gz", Gzip, "plans/fleet.json"},
		{"plans/fleet.yaml.SZ", Snappy, "plans/fleet.yaml"},
		{"fleet.json.zst", Zstandard, "fleet.json"},
		{"fleet", None, "fleet"},
	}
	for _, tc := range cases {
		var codec, stripped = CodecForPath(tc.path)
		c.Check(codec, gc.Equals, tc.codec)
		c.Check(stripped, gc.Equals, tc.stripped)
	}

	for ext, codec := range map[string]Codec{".gz": Gzip, ".sz": Snappy, ".zst": Zstandard, ".json": None} {
		c.Check(CodecFromExtension(ext), gc.Equals, codec)
	}
	c.Check(Zstandard.Validate(), gc.IsNil)
	c.Check(Gzip.ContentEncoding(), gc.Equals, "gzip")
	c.Check(Snappy.ContentEncoding(), gc.Equals, "")
}

var _ = gc.Suite(&CodecsSuite{})

func Test(t *testing.T) { gc.TestingT(t) }
