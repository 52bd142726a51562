package discovery

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"colcon-nix/pkg/descriptor"
)

// packageManifest 是 package.xml 中我们关心的部分
type packageManifest struct {
	Name   string `xml:"name"`
	Export struct {
		BuildType string `xml:"build_type"`
	} `xml:"export"`
}

// identifier 按优先级识别一个目录是否为包
type identifier struct {
	marker string
	build  func(dir string) (*descriptor.Descriptor, error)
}

var identifiers = []identifier{
	{marker: "package.xml", build: identifyROS},
	{marker: "pyproject.toml", build: plain("python")},
	{marker: "setup.py", build: plain("python")},
	{marker: "CMakeLists.txt", build: plain("cmake")},
}

// identifyPackage 返回 dir 对应的包描述符；不是包时返回 nil
func identifyPackage(dir string) (*descriptor.Descriptor, error) {
	for _, id := range identifiers {
		if !fileExists(filepath.Join(dir, id.marker)) {
			continue
		}
		return id.build(dir)
	}
	return nil, nil
}

func identifyROS(dir string) (*descriptor.Descriptor, error) {
	data, err := os.ReadFile(filepath.Join(dir, "package.xml"))
	if err != nil {
		return nil, fmt.Errorf("failed to read package.xml: %w", err)
	}

	var manifest packageManifest
	if err := xml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("malformed package.xml in %s: %w", dir, err)
	}

	name := strings.TrimSpace(manifest.Name)
	if name == "" {
		name = filepath.Base(dir)
	}
	buildType := strings.TrimSpace(manifest.Export.BuildType)
	if buildType == "" {
		buildType = "ament_cmake"
	}
	return descriptor.New(descriptor.KindPackage, name, "ros."+buildType, dir), nil
}

func plain(typ string) func(string) (*descriptor.Descriptor, error) {
	return func(dir string) (*descriptor.Descriptor, error) {
		return descriptor.New(descriptor.KindPackage, filepath.Base(dir), typ, dir), nil
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
