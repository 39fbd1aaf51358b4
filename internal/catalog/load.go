package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/rspl-generator/constants"
)

// fileCatalog is the on-disk YAML shape. Omitted sections keep the built-in data.
type fileCatalog struct {
	Keywords   []fileKeyword  `yaml:"keywords"`
	Categories []fileCategory `yaml:"categories"`
	Generic    []filePart     `yaml:"generic"`
}

type fileKeyword struct {
	Keyword        string  `yaml:"keyword"`
	Classification string  `yaml:"classification"`
	Weight         float64 `yaml:"weight"`
	Unit           string  `yaml:"unit"`
}

type fileCategory struct {
	Key   string     `yaml:"key"`
	Parts []filePart `yaml:"parts"`
}

type filePart struct {
	Name           string  `yaml:"name"`
	Classification string  `yaml:"classification"`
	Weight         float64 `yaml:"weight"`
	Unit           string  `yaml:"unit"`
}

// Load returns the built-in catalog, overridden section by section by the YAML
// file at path. An empty path returns Default().
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	// #nosec G304 -- path comes from operator configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document on top of the built-in catalog.
func Parse(data []byte) (*Catalog, error) {
	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	cat := Default()
	if len(fc.Keywords) > 0 {
		cat.Keywords = make([]KeywordEntry, 0, len(fc.Keywords))
		for i, k := range fc.Keywords {
			kw := strings.ToLower(strings.TrimSpace(k.Keyword))
			if kw == "" {
				return nil, fmt.Errorf("keywords[%d]: keyword is required", i)
			}
			cls, err := parseClassification(k.Classification)
			if err != nil {
				return nil, fmt.Errorf("keywords[%d] %q: %w", i, kw, err)
			}
			if k.Weight < 0 {
				return nil, fmt.Errorf("keywords[%d] %q: weight must not be negative", i, kw)
			}
			cat.Keywords = append(cat.Keywords, KeywordEntry{
				Keyword:        kw,
				Classification: cls,
				Weight:         k.Weight,
				UnitOfIssue:    unitOrDefault(k.Unit),
			})
		}
	}
	if len(fc.Categories) > 0 {
		cat.Categories = make([]Category, 0, len(fc.Categories))
		for i, c := range fc.Categories {
			key := strings.ToLower(strings.TrimSpace(c.Key))
			if key == "" {
				return nil, fmt.Errorf("categories[%d]: key is required", i)
			}
			parts, err := convertParts(c.Parts)
			if err != nil {
				return nil, fmt.Errorf("categories[%d] %q: %w", i, key, err)
			}
			if len(parts) == 0 {
				return nil, fmt.Errorf("categories[%d] %q: at least one part is required", i, key)
			}
			cat.Categories = append(cat.Categories, Category{Key: key, Parts: parts})
		}
	}
	if len(fc.Generic) > 0 {
		parts, err := convertParts(fc.Generic)
		if err != nil {
			return nil, fmt.Errorf("generic: %w", err)
		}
		cat.Generic = parts
	}
	return cat, nil
}

func convertParts(in []filePart) ([]PartTemplate, error) {
	out := make([]PartTemplate, 0, len(in))
	for i, p := range in {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("parts[%d]: name is required", i)
		}
		cls, err := parseClassification(p.Classification)
		if err != nil {
			return nil, fmt.Errorf("parts[%d] %q: %w", i, name, err)
		}
		if p.Weight < 0 {
			return nil, fmt.Errorf("parts[%d] %q: weight must not be negative", i, name)
		}
		out = append(out, PartTemplate{
			Name:           name,
			Classification: cls,
			Weight:         p.Weight,
			UnitOfIssue:    strings.ToUpper(strings.TrimSpace(p.Unit)),
		})
	}
	return out, nil
}

func parseClassification(s string) (constants.Classification, error) {
	if strings.TrimSpace(s) == "" {
		return constants.Preventive, nil
	}
	cls, ok := constants.Canonicalize(s)
	if !ok {
		return "", fmt.Errorf("unknown classification %q (want one of %s)", s, strings.Join(constants.ClassificationCodes(), ", "))
	}
	return cls, nil
}

func unitOrDefault(u string) string {
	u = strings.ToUpper(strings.TrimSpace(u))
	if u == "" {
		return "EA"
	}
	return u
}
