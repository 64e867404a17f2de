package journal

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// EncodeValues serialises a form's value map for storage.
func EncodeValues(values map[string]any) (json.RawMessage, error) {
	if len(values) == 0 {
		return nil, nil
	}
	b, err := sonic.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("journal: encoding values: %w", err)
	}
	return b, nil
}

// MergePatch returns the RFC 7386 merge patch that turns before into
// after. Edit-mode hosts store it alongside the result so consumers can
// see what changed without diffing two full documents.
func MergePatch(before, after map[string]any) (json.RawMessage, error) {
	if before == nil {
		before = map[string]any{}
	}
	if after == nil {
		after = map[string]any{}
	}
	b, err := sonic.Marshal(before)
	if err != nil {
		return nil, fmt.Errorf("journal: encoding prefill: %w", err)
	}
	a, err := sonic.Marshal(after)
	if err != nil {
		return nil, fmt.Errorf("journal: encoding result: %w", err)
	}
	patch, err := jsonpatch.CreateMergePatch(b, a)
	if err != nil {
		return nil, fmt.Errorf("journal: diffing submission: %w", err)
	}
	return patch, nil
}
