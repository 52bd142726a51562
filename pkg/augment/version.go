package augment

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	ErrInvalidVersion      = errors.New("invalid version")
	ErrIncompatibleVersion = errors.New("incompatible extension point version")
)

// SatisfiesVersion 检查扩展点版本是否满足扩展声明的约束
// 支持的约束形式:
//   - "^1.0": 同一个 major (major 为 0 时要求同一个 minor)，且不低于约束
//   - "~1.2": 同一个 major.minor，且不低于约束
//   - "1.0":  完全相等
func SatisfiesVersion(version, constraint string) error {
	v := canonical(version)
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}

	op, rest := "", strings.TrimSpace(constraint)
	if strings.HasPrefix(rest, "^") || strings.HasPrefix(rest, "~") {
		op, rest = rest[:1], rest[1:]
	}
	c := canonical(rest)
	if !semver.IsValid(c) {
		return fmt.Errorf("%w: constraint %q", ErrInvalidVersion, constraint)
	}

	ok := false
	switch op {
	case "^":
		if semver.Major(c) == "v0" {
			ok = semver.MajorMinor(v) == semver.MajorMinor(c)
		} else {
			ok = semver.Major(v) == semver.Major(c)
		}
		ok = ok && semver.Compare(v, c) >= 0
	case "~":
		ok = semver.MajorMinor(v) == semver.MajorMinor(c) && semver.Compare(v, c) >= 0
	default:
		ok = semver.Compare(v, c) == 0
	}

	if !ok {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrIncompatibleVersion, version, constraint)
	}
	return nil
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
