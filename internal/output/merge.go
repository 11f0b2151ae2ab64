package output

// DeepMerge returns newer layered over existing. Keys from newer win, nil
// values in newer are ignored, nested objects are merged recursively, and
// arrays present on both sides are concatenated with newer's items first.
// Neither argument is modified.
func DeepMerge(newer, existing map[string]any) map[string]any {
	out := make(map[string]any, len(existing)+len(newer))
	for k, v := range existing {
		out[k] = v
	}

	for k, v := range newer {
		if v == nil {
			continue
		}
		switch nv := v.(type) {
		case map[string]any:
			if ov, ok := out[k].(map[string]any); ok {
				out[k] = DeepMerge(nv, ov)
				continue
			}
		case []any:
			if ov, ok := out[k].([]any); ok {
				merged := make([]any, 0, len(nv)+len(ov))
				out[k] = append(append(merged, nv...), ov...)
				continue
			}
		}
		out[k] = v
	}
	return out
}
