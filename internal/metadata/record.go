package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/gowebpki/jcs"
)

// Record is the structured view of a metadata document
type Record struct {
	Name    string
	Type    string
	Subtype string
	Game    string
	Creator string
	Image   string
	Tags    []string
}

// Parse extracts a Record from raw JSON.
// Missing or wrongly typed fields are left empty, Parse never fails.
func Parse(raw []byte) Record {
	record := Record{Tags: []string{}}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return record
	}

	record.Name = stringField(doc, "name")
	record.Type = stringField(doc, "type")
	record.Subtype = stringField(doc, "subtype")
	record.Game = stringField(doc, "game")
	record.Creator = stringField(doc, "creator")
	record.Image = stringField(doc, "image")

	if tags, ok := doc["tags"].([]interface{}); ok {
		for _, tag := range tags {
			if s, ok := tag.(string); ok {
				record.Tags = append(record.Tags, s)
			}
		}
	}

	return record
}

func stringField(doc map[string]interface{}, key string) string {
	s, _ := doc[key].(string)
	return s
}

// Hash returns the hex sha256 of the JCS canonical form of raw, or "" if raw is not JSON
func Hash(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
