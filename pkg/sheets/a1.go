package sheets

import (
	"fmt"
	"strings"

	sheets "google.golang.org/api/sheets/v4"
)

// ColumnIndexToA1 converts a 0-based column index to A1 column letters.
func ColumnIndexToA1(index int64) (string, error) {
	if index < 0 {
		return "", fmt.Errorf("column index must be >= 0, got %d", index)
	}

	var letters []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		letters = append(letters, byte('A'+(n-1)%26))
	}
	for i, j := 0, len(letters)-1; i < j; i, j = i+1, j-1 {
		letters[i], letters[j] = letters[j], letters[i]
	}
	return string(letters), nil
}

// GridRangeToA1 converts a grid range on the sheet titled sheetTitle to an
// A1 range. End indices are exclusive, so the range must cover at least
// one cell.
func GridRangeToA1(sheetTitle string, r *sheets.GridRange) (string, error) {
	if r == nil {
		return "", fmt.Errorf("grid range is missing")
	}
	if r.StartRowIndex < 0 || r.StartColumnIndex < 0 {
		return "", fmt.Errorf("grid range has negative start indices")
	}
	if r.EndRowIndex <= r.StartRowIndex || r.EndColumnIndex <= r.StartColumnIndex {
		return "", fmt.Errorf("grid range is missing end indices or is empty")
	}

	startCol, err := ColumnIndexToA1(r.StartColumnIndex)
	if err != nil {
		return "", err
	}
	endCol, err := ColumnIndexToA1(r.EndColumnIndex - 1)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s!%s%d:%s%d", quoteSheetTitle(sheetTitle), startCol, r.StartRowIndex+1, endCol, r.EndRowIndex), nil
}

// quoteSheetTitle wraps a title in single quotes unless it consists only of
// ASCII letters, digits and underscores.
func quoteSheetTitle(title string) string {
	plain := title != ""
	for _, r := range title {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_') {
			plain = false
			break
		}
	}
	if plain {
		return title
	}
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
