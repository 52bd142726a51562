// pkg/types/common.go
package types

import "strings"

// Algorithm 是外部哈希工具接受的算法名 (nix-hash --type)
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	SHA512 Algorithm = "sha512"
)

func (a Algorithm) String() string { return string(a) }

// Size 返回摘要的原始字节长度，未知算法返回 0
func (a Algorithm) Size() int {
	switch a {
	case MD5:
		return 16
	case SHA1:
		return 20
	case SHA256:
		return 32
	case SHA512:
		return 64
	default:
		return 0
	}
}

func (a Algorithm) IsValid() bool { return a.Size() > 0 }

// SRIHash 代表自描述的哈希值，格式为 "<algorithm>-<base64>"
// 与 Hash 一样是“值对象”，写入 metadata 后不应再修改。
type SRIHash string

func (h SRIHash) String() string { return string(h) }
func (h SRIHash) IsZero() bool   { return h == "" }

// Algorithm 返回 "-" 之前的算法标签
func (h SRIHash) Algorithm() Algorithm {
	algo, _, _ := strings.Cut(string(h), "-")
	return Algorithm(algo)
}

// Payload 返回 "-" 之后的 base64 部分
func (h SRIHash) Payload() string {
	_, payload, _ := strings.Cut(string(h), "-")
	return payload
}
