package domain

import (
	"encoding/json"
	"sort"
)

// Sheet names in the order they appear in an XLSForm workbook.
var knownSheets = []string{"survey", "choices", "settings"}

// Sheet is an ordered worksheet name with its rows.
type Sheet struct {
	Name string
	Rows []json.RawMessage
}

// SpreadsheetStructure splits content into worksheets. Array-valued keys
// become sheets as is; an object under "settings" becomes a single row.
// Known sheets come first, then any others by name.
func SpreadsheetStructure(content []byte) []Sheet {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(content, &doc); err != nil {
		return []Sheet{}
	}

	sheets := make([]Sheet, 0, len(doc))
	seen := map[string]bool{}
	for _, name := range knownSheets {
		if rows, ok := sheetRows(name, doc[name]); ok {
			sheets = append(sheets, Sheet{Name: name, Rows: rows})
		}
		seen[name] = true
	}

	others := make([]string, 0, len(doc))
	for name := range doc {
		if !seen[name] {
			others = append(others, name)
		}
	}
	sort.Strings(others)
	for _, name := range others {
		if rows, ok := sheetRows(name, doc[name]); ok {
			sheets = append(sheets, Sheet{Name: name, Rows: rows})
		}
	}
	return sheets
}

func sheetRows(name string, raw json.RawMessage) ([]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err == nil {
		return rows, true
	}
	if name == "settings" {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err == nil {
			return []json.RawMessage{raw}, true
		}
	}
	return nil, false
}
