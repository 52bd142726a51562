package narhash

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"colcon-nix/pkg/types"
)

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")
	ErrMalformedDigest      = errors.New("malformed digest")
)

// ToSRI 把外部工具输出的十六进制摘要转换为 SRI 格式
// 注意：base64 编码的是原始摘要字节，而不是十六进制字符串本身
func ToSRI(algo types.Algorithm, hexDigest string) (types.SRIHash, error) {
	if !algo.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algo)
	}

	raw, err := hex.DecodeString(hexDigest)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedDigest, err)
	}
	if len(raw) != algo.Size() {
		return "", fmt.Errorf("%w: %s digest must be %d bytes, got %d", ErrMalformedDigest, algo, algo.Size(), len(raw))
	}

	return types.SRIHash(string(algo) + "-" + base64.StdEncoding.EncodeToString(raw)), nil
}

// ParseSRI 校验并解析一个 SRI 字符串
func ParseSRI(s string) (types.SRIHash, error) {
	algo, payload, ok := strings.Cut(s, "-")
	if !ok {
		return "", fmt.Errorf("%w: missing algorithm prefix in %q", ErrMalformedDigest, s)
	}

	h := types.SRIHash(s)
	if _, err := decode(types.Algorithm(algo), payload); err != nil {
		return "", err
	}
	return h, nil
}

// Digest 返回 SRI 中携带的原始摘要字节
func Digest(h types.SRIHash) ([]byte, error) {
	return decode(h.Algorithm(), h.Payload())
}

// Hex 把 SRI 还原为外部工具的十六进制输出 (round-trip)
func Hex(h types.SRIHash) (string, error) {
	raw, err := Digest(h)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func decode(algo types.Algorithm, payload string) ([]byte, error) {
	if !algo.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algo)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDigest, err)
	}
	if len(raw) != algo.Size() {
		return nil, fmt.Errorf("%w: %s digest must be %d bytes, got %d", ErrMalformedDigest, algo, algo.Size(), len(raw))
	}
	return raw, nil
}
