package record

import (
	"fmt"
	"sort"
	"time"

	"colcon-nix/pkg/descriptor"
	"colcon-nix/pkg/types"

	"github.com/fxamacker/cbor/v2"
)

// MetadataKey 与 augment.MetadataKey 相同；这里重复定义以避免循环依赖
const MetadataKey = "narhash"

// Record 是增强后的描述符在存储层的投影
type Record struct {
	Kind      descriptor.Kind   `json:"kind" cbor:"kind"`
	Name      string            `json:"name" cbor:"name"`
	Type      string            `json:"type" cbor:"type"`
	Path      string            `json:"path" cbor:"path"`
	NarHash   types.SRIHash     `json:"narhash,omitempty" cbor:"narhash,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty" cbor:"metadata,omitempty"`
	UpdatedAt int64             `json:"updated_at" cbor:"updated_at"` // Unix 秒
}

// Key 返回 "<kind>/<name>"
func (r Record) Key() string {
	return Key(r.Kind, r.Name)
}

func Key(kind descriptor.Kind, name string) string {
	return string(kind) + "/" + name
}

// FromDescriptor 把描述符投影为 Record
// metadata 中的非字符串值会被格式化为字符串
func FromDescriptor(d *descriptor.Descriptor, now time.Time) Record {
	rec := Record{
		Kind:      d.Kind,
		Name:      d.Name,
		Type:      d.Type,
		Path:      d.Path,
		UpdatedAt: now.Unix(),
	}
	if len(d.Metadata) > 0 {
		rec.Metadata = make(map[string]string, len(d.Metadata))
		for _, k := range d.Metadata.Keys() {
			v, _ := d.Metadata.String(k)
			rec.Metadata[k] = v
		}
	}
	if h, ok := rec.Metadata[MetadataKey]; ok {
		rec.NarHash = types.SRIHash(h)
	}
	return rec
}

// Sort 按 Key 排序，保证 List 的输出稳定
func Sort(recs []Record) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key() < recs[j].Key() })
}

// Canonical CBOR，保证相同的 Record 编码为相同的字节
var encOptions = cbor.EncOptions{
	Sort:          cbor.SortCanonical,
	ShortestFloat: cbor.ShortestFloatNone,
	Time:          cbor.TimeUnix,
	TimeTag:       cbor.EncTagNone,
	IndefLength:   cbor.IndefLengthForbidden,
}

var em, _ = encOptions.EncMode()

var decOptions = cbor.DecOptions{
	MaxArrayElements: 10000,
	MaxMapPairs:      10000,
	MaxNestedLevels:  16,
	IndefLength:      cbor.IndefLengthForbidden,
	DupMapKey:        cbor.DupMapKeyEnforcedAPF,
}

var dm, _ = decOptions.DecMode()

// Marshal 把 Record 编码为 canonical CBOR
func Marshal(r Record) ([]byte, error) {
	data, err := em.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return data, nil
}

// Unmarshal 解码 Marshal 的输出
func Unmarshal(data []byte) (Record, error) {
	var r Record
	if err := dm.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return r, nil
}
