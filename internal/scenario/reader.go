package scenario

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/reel2video/internal/failure"
)

type rawFrame struct {
	ID       string   `json:"id" yaml:"id"`
	Asset    string   `json:"asset" yaml:"asset"`
	Dur      *float64 `json:"dur" yaml:"dur"`
	Subtitle string   `json:"subtitle" yaml:"subtitle"`
	Caption  string   `json:"caption_tr" yaml:"caption_tr"`
}

type rawDocument struct {
	Meta   `yaml:",inline"`
	Frames *[]rawFrame `json:"frames" yaml:"frames"`
}

// Read loads a scene document from a JSON or YAML file. Relative asset paths
// that do not exist from the working directory are resolved against the
// directory of the document.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, failure.Wrap(failure.InvalidSpec, failure.NoScene, errors.Wrapf(err, "read spec %s", path))
	}

	doc, err := Parse(data, formatOf(path))
	if err != nil {
		return nil, err
	}

	resolveAssets(doc, filepath.Dir(path))
	return doc, nil
}

// Parse decodes a scene document. format is "json" or "yaml".
func Parse(data []byte, format string) (*Document, error) {
	var raw rawDocument
	var err error
	switch format {
	case "yaml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, failure.Wrap(failure.InvalidSpec, failure.NoScene, errors.Wrap(err, "decode spec"))
	}

	if raw.Frames == nil {
		return nil, failure.New(failure.InvalidSpec, failure.NoScene, "spec has no \"frames\" list")
	}
	if len(*raw.Frames) == 0 {
		return nil, failure.New(failure.InvalidSpec, failure.NoScene, "spec contains no scenes")
	}

	doc := &Document{Meta: raw.Meta, Scenes: make([]Scene, 0, len(*raw.Frames))}
	for i, fr := range *raw.Frames {
		dur := DefaultDuration
		if fr.Dur != nil {
			dur = *fr.Dur
		}
		sc := Scene{
			ID:       fr.ID,
			Asset:    fr.Asset,
			Duration: dur,
			Subtitle: fr.Subtitle,
			Caption:  fr.Caption,
		}
		if err := sc.Validate(i); err != nil {
			return nil, err
		}
		doc.Scenes = append(doc.Scenes, sc)
	}
	return doc, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func resolveAssets(doc *Document, baseDir string) {
	for i := range doc.Scenes {
		asset := doc.Scenes[i].Asset
		file, _ := SplitPage(asset)
		if file == "" || filepath.IsAbs(file) {
			continue
		}
		if _, err := os.Stat(file); err == nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(baseDir, file)); err == nil {
			doc.Scenes[i].Asset = filepath.Join(baseDir, asset)
		}
	}
}
