package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// decodeJSONBody decodes a request body into target. Unknown fields are
// ignored; only malformed JSON is rejected.
func decodeJSONBody(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
