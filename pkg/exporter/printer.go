package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"colcon-nix/pkg/descriptor"
	"colcon-nix/pkg/record"
)

// missing 表示没有 narhash (通常是哈希工具不可用)
const missing = "-"

// PrintDescriptors 以表格形式打印增强后的描述符
func PrintDescriptors(w io.Writer, descs []*descriptor.Descriptor, key string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tTYPE\tNARHASH")
	for _, d := range descs {
		h, ok := d.Metadata.String(key)
		if !ok {
			h = missing
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Kind, d.Name, d.Type, h)
	}
	return tw.Flush()
}

// PrintRecords 以表格形式打印持久化的记录
func PrintRecords(w io.Writer, recs []record.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tTYPE\tNARHASH\tUPDATED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Kind, r.Name, r.Type, narhashOf(r), formatTime(r.UpdatedAt))
	}
	return tw.Flush()
}

// PrintRecord 打印单条记录的详细信息
func PrintRecord(w io.Writer, r record.Record) error {
	fmt.Fprintf(w, "Kind:     %s\n", r.Kind)
	fmt.Fprintf(w, "Name:     %s\n", r.Name)
	fmt.Fprintf(w, "Type:     %s\n", r.Type)
	fmt.Fprintf(w, "Path:     %s\n", r.Path)
	fmt.Fprintf(w, "NarHash:  %s\n", narhashOf(r))
	fmt.Fprintf(w, "Updated:  %s\n", formatTime(r.UpdatedAt))
	if len(r.Metadata) == 0 {
		return nil
	}

	fmt.Fprintln(w, "Metadata:")
	keys := make([]string, 0, len(r.Metadata))
	for k := range r.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s = %s\n", k, r.Metadata[k])
	}
	return nil
}

// PrintJSON 以缩进 JSON 打印任意值
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func narhashOf(r record.Record) string {
	if r.NarHash.IsZero() {
		return missing
	}
	return r.NarHash.String()
}

func formatTime(unix int64) string {
	if unix == 0 {
		return missing
	}
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
