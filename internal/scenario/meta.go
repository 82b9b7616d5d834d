package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/ivlev/reel2video/internal/failure"
)

// StoryMeta is the metadata document the story pipeline writes next to the
// generated images of a story.
type StoryMeta struct {
	Project string      `json:"project"`
	Story   string      `json:"story"`
	Scenes  []StoryShot `json:"scenes"`
}

// StoryShot is one generated image of a story.
type StoryShot struct {
	SceneID string   `json:"scene_id"`
	File    string   `json:"file"`
	Caption string   `json:"caption"`
	Dur     *float64 `json:"dur"`
}

// ReadStoryMeta loads a story metadata file and converts it with FromStoryMeta.
func ReadStoryMeta(path, imagesDir string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, failure.Wrap(failure.InvalidSpec, failure.NoScene, errors.Wrapf(err, "read story meta %s", path))
	}
	var meta StoryMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, failure.Wrap(failure.InvalidSpec, failure.NoScene, errors.Wrap(err, "decode story meta"))
	}
	if imagesDir == "" {
		imagesDir = filepath.Join(filepath.Dir(path), "images")
	}
	return FromStoryMeta(&meta, imagesDir)
}

// FromStoryMeta turns story metadata into a scene document. Scene ids become
// title-cased subtitles; scenes without a caption get a generic one.
func FromStoryMeta(meta *StoryMeta, imagesDir string) (*Document, error) {
	if len(meta.Scenes) == 0 {
		return nil, failure.New(failure.InvalidSpec, failure.NoScene, "story meta contains no scenes")
	}

	story := meta.Story
	if story == "" {
		story = "Untitled Story"
	}
	project := meta.Project
	if project == "" {
		project = "ECHO.Story"
	}

	doc := &Document{
		Meta: Meta{
			Version:      "3.0",
			Project:      project,
			Series:       story,
			EpisodeTitle: story,
		},
	}

	for i, shot := range meta.Scenes {
		id := shot.SceneID
		if id == "" {
			id = fmt.Sprintf("scene_%d", i+1)
		}
		title := titleCase(strings.ReplaceAll(id, "_", " "))

		caption := shot.Caption
		if caption == "" {
			caption = fmt.Sprintf("A moment of %s in the journey", strings.ToLower(title))
		}
		dur := DefaultDuration
		if shot.Dur != nil {
			dur = *shot.Dur
		}

		sc := Scene{
			ID:       fmt.Sprintf("frame_%02d", i+1),
			Asset:    filepath.Join(imagesDir, shot.File),
			Duration: dur,
			Subtitle: title,
			Caption:  caption,
		}
		if err := sc.Validate(i); err != nil {
			return nil, err
		}
		doc.Scenes = append(doc.Scenes, sc)
	}
	return doc, nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
