package scenario

import (
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"
)

// Write saves a document as indented JSON, or as YAML when path ends in ".yaml" or ".yml".
func Write(doc *Document, path string) error {
	var data []byte
	var err error
	if formatOf(path) == "yaml" {
		data, err = yaml.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
