package exporter

import (
	"bytes"
	"strings"
	"testing"

	"colcon-nix/pkg/descriptor"
	"colcon-nix/pkg/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emptySRI = "sha256-47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU="

func TestPrintDescriptors(t *testing.T) {
	withHash := descriptor.New(descriptor.KindPackage, "demo", "cmake", "/ws/src/demo")
	withHash.Metadata["narhash"] = emptySRI
	without := descriptor.New(descriptor.KindRepository, "ws", "git", "/ws")

	var buf bytes.Buffer
	require.NoError(t, PrintDescriptors(&buf, []*descriptor.Descriptor{withHash, without}, "narhash"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"KIND", "NAME", "TYPE", "NARHASH"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"package", "demo", "cmake", emptySRI}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"repository", "ws", "git", "-"}, strings.Fields(lines[2]))
}

func TestPrintRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintRecords(&buf, []record.Record{
		{Kind: descriptor.KindPackage, Name: "demo", Type: "cmake", NarHash: emptySRI, UpdatedAt: 1700000000},
		{Kind: descriptor.KindRepository, Name: "ws", Type: "git"},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"package", "demo", "cmake", emptySRI, "2023-11-14T22:13:20Z"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"repository", "ws", "git", "-", "-"}, strings.Fields(lines[2]))
}

func TestPrintRecord(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintRecord(&buf, record.Record{
		Kind:     descriptor.KindPackage,
		Name:     "demo",
		Metadata: map[string]string{"narhash": emptySRI, "b": "2"},
	}))

	out := buf.String()
	assert.Contains(t, out, "Name:     demo")
	assert.Contains(t, out, "NarHash:  -")
	assert.Less(t, strings.Index(out, "  b = 2"), strings.Index(out, "  narhash = "), "metadata 按 key 排序")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, record.Record{Kind: descriptor.KindPackage, Name: "demo", NarHash: emptySRI}))
	assert.JSONEq(t, `{"kind":"package","name":"demo","type":"","path":"","narhash":"`+emptySRI+`","updated_at":0}`, buf.String())
}
