package masking

import "strings"

const maskToken = "****"

// MaskSecret redacts a secret while keeping a minimal suffix for auditing.
func MaskSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) <= 8 {
		if trimmed == "" {
			return ""
		}
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// MaskFields returns a copy of input with the string values of the named
// keys masked. Nested maps are walked.
func MaskFields(input map[string]any, secretKeys ...string) map[string]any {
	if len(input) == 0 {
		return nil
	}

	secrets := make(map[string]struct{}, len(secretKeys))
	for _, key := range secretKeys {
		secrets[strings.ToLower(key)] = struct{}{}
	}
	return maskMap(input, secrets)
}

func maskMap(input map[string]any, secrets map[string]struct{}) map[string]any {
	masked := make(map[string]any, len(input))
	for key, value := range input {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		if _, ok := secrets[strings.ToLower(trimmedKey)]; ok {
			if s, isString := value.(string); isString {
				masked[trimmedKey] = MaskSecret(s)
				continue
			}
		}
		if nested, ok := value.(map[string]any); ok {
			masked[trimmedKey] = maskMap(nested, secrets)
			continue
		}
		masked[trimmedKey] = value
	}
	return masked
}
