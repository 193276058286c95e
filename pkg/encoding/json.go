package encoding

import "encoding/json"

// ToJSON renders v as indented JSON for command output.
func ToJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
