// pkg/descriptor/descriptor.go
package descriptor

import (
	"fmt"
	"sort"
)

// Kind 区分包描述符与仓库描述符
type Kind string

const (
	KindPackage    Kind = "package"
	KindRepository Kind = "repository"
)

func (k Kind) String() string { return string(k) }

func (k Kind) IsValid() bool { return k == KindPackage || k == KindRepository }

// ParseKind 把字符串转换为 Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown descriptor kind %q", s)
	}
	return k, nil
}

// Metadata 是描述符上附带的键值信息
type Metadata map[string]any

// Has 判断 key 是否存在 (值为 nil 也算存在)
func (m Metadata) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// String 以字符串形式读取 key
func (m Metadata) String(key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case fmt.Stringer:
		return s.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// Keys 返回排序后的 key 列表
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Descriptor 代表一个包或仓库
// 调用方拥有它；增强 (augmentation) 只会有条件地写入 Metadata。
type Descriptor struct {
	Kind     Kind
	Name     string
	Type     string // 例如 "ros.ament_cmake", "cmake", "python", "git"
	Path     string
	Metadata Metadata
}

// New 创建描述符，Metadata 总是非 nil
func New(kind Kind, name, typ, path string) *Descriptor {
	return &Descriptor{
		Kind:     kind,
		Name:     name,
		Type:     typ,
		Path:     path,
		Metadata: Metadata{},
	}
}

// Identifier 返回 "<kind>/<name>"，用于日志和存储 key
func (d *Descriptor) Identifier() string {
	return string(d.Kind) + "/" + d.Name
}
