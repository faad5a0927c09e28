package main

import (
	"bytes"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/variant"
)

const sampleJSON = `{"b": ["x", 2], "a": 1} "s" 300`

func sample(t *testing.T) []byte {
	t.Helper()
	enc, count, err := encodeJSON(strings.NewReader(sampleJSON))
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.Len(t, enc, 24)
	return enc
}

func TestInspect_Tree(t *testing.T) {
	enc := sample(t)
	nodes, err := inspect(iotest.OneByteReader(bytes.NewReader(enc)), 0, defaultConfig())
	require.NoError(t, err)

	require.Equal(t, []node{
		{depth: 0, label: "#0", kind: variant.KindMap8, offset: 0, size: 18, text: "{2}"},
		{depth: 1, label: `"a"`, kind: variant.KindOne, offset: 6, size: 1, text: "1"},
		{depth: 1, label: `"b"`, kind: variant.KindList8, offset: 10, size: 8, text: "[2]"},
		{depth: 2, label: "[0]", kind: variant.KindString8, offset: 13, size: 3, text: `"x"`},
		{depth: 2, label: "[1]", kind: variant.KindInt8, offset: 16, size: 2, text: "2"},
		{depth: 0, label: "#1", kind: variant.KindString8, offset: 18, size: 3, text: `"s"`},
		{depth: 0, label: "#2", kind: variant.KindInt16, offset: 21, size: 3, text: "300"},
	}, nodes)
}

func TestInspect_Limits(t *testing.T) {
	enc := sample(t)

	cfg := defaultConfig()
	cfg.MaxDepth = 1
	nodes, err := inspect(bytes.NewReader(enc), 0, cfg)
	require.NoError(t, err)
	require.Len(t, nodes, 5)
	require.Equal(t, "[2] ...", nodes[2].text)

	cfg = defaultConfig()
	cfg.MaxValues = 2
	nodes, err = inspect(bytes.NewReader(enc), 0, cfg)
	require.NoError(t, err)
	require.Equal(t, "#1", nodes[len(nodes)-1].label)

	cfg = defaultConfig()
	cfg.Preview = 3
	enc, _, err = encodeJSON(strings.NewReader(`"abcdef"`))
	require.NoError(t, err)
	nodes, err = inspect(bytes.NewReader(enc), 0, cfg)
	require.NoError(t, err)
	require.Equal(t, `"abc"...`, nodes[0].text)
}

func TestInspect_BaseOffset(t *testing.T) {
	enc := sample(t)
	nodes, err := inspect(bytes.NewReader(enc[18:]), 18, defaultConfig())
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	require.Equal(t, 18, nodes[0].offset)
	require.Equal(t, 21, nodes[1].offset)
}

func TestInspect_Errors(t *testing.T) {
	enc := sample(t)

	nodes, err := inspect(bytes.NewReader(enc[:20]), 0, defaultConfig())
	require.ErrorContains(t, err, "truncated")
	require.ErrorContains(t, err, "value 1 at offset 18")
	require.Len(t, nodes, 5)

	bad := append(append([]byte{}, enc...), 0x99)
	_, err = inspect(bytes.NewReader(bad), 0, defaultConfig())
	require.True(t, errors.HasKind(err, errors.KindInvalidVariant), "%v", err)
}

func TestEncodeJSON(t *testing.T) {
	long := strings.Repeat("z", 10000)
	enc, count, err := encodeJSON(strings.NewReader(`"` + long + `" null`))
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Len(t, enc, 10003+1)

	_, _, err = encodeJSON(strings.NewReader(`1.5`))
	require.True(t, errors.HasKind(err, errors.KindUnsupported), "%v", err)

	_, _, err = encodeJSON(strings.NewReader(`{"a":`))
	require.ErrorContains(t, err, "json value 0")
}

func TestHexdump(t *testing.T) {
	require.Equal(t, "00000012  71 01 73     q.s\n", hexdump([]byte{0x71, 0x01, 's'}, 18, 4))
	require.Equal(t,
		"00000000  61 62  ab\n00000002  63     c\n",
		hexdump([]byte("abc"), 0, 2))
}

func TestPrintTree(t *testing.T) {
	nodes, err := inspect(bytes.NewReader(sample(t)), 0, defaultConfig())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printTree(&out, nodes[:3], newPalette(false)))
	require.Equal(t,
		"#0 map8 @0+18 {2}\n"+
			"  \"a\" one @6+1 1\n"+
			"  \"b\" list8 @10+8 [2]\n",
		out.String())
}
