package output

import (
	"encoding/json"
)

// JSONFormatter renders the raw values behind datasets as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format marshals the Raw value of a single dataset, or a list of them.
func (f *JSONFormatter) Format(sets ...*Dataset) (string, error) {
	values := make([]any, 0, len(sets))
	for _, set := range sets {
		if set == nil || set.Raw == nil {
			continue
		}
		values = append(values, set.Raw)
	}

	var payload any = values
	if len(values) == 1 {
		payload = values[0]
	}

	var (
		data []byte
		err  error
	)
	if f.Indent {
		data, err = json.MarshalIndent(payload, "", "  ")
	} else {
		data, err = json.Marshal(payload)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
