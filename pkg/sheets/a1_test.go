package sheets

import (
	"testing"

	sheets "google.golang.org/api/sheets/v4"
)

func TestColumnIndexToA1(t *testing.T) {
	tests := []struct {
		index int64
		want  string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := ColumnIndexToA1(tt.index)
			if err != nil {
				t.Fatalf("ColumnIndexToA1(%d) error = %v", tt.index, err)
			}
			if got != tt.want {
				t.Errorf("ColumnIndexToA1(%d) = %q, want %q", tt.index, got, tt.want)
			}
		})
	}

	if _, err := ColumnIndexToA1(-1); err == nil {
		t.Error("ColumnIndexToA1(-1) should return an error")
	}
}

func TestGridRangeToA1(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		r       *sheets.GridRange
		want    string
		wantErr bool
	}{
		{
			name:  "simple",
			title: "Sheet1",
			r:     &sheets.GridRange{StartRowIndex: 0, EndRowIndex: 10, StartColumnIndex: 0, EndColumnIndex: 3},
			want:  "Sheet1!A1:C10",
		},
		{
			name:  "offset single cell",
			title: "Data",
			r:     &sheets.GridRange{StartRowIndex: 4, EndRowIndex: 5, StartColumnIndex: 26, EndColumnIndex: 27},
			want:  "Data!AA5:AA5",
		},
		{
			name:  "title with space is quoted",
			title: "My Sheet",
			r:     &sheets.GridRange{EndRowIndex: 2, EndColumnIndex: 2},
			want:  "'My Sheet'!A1:B2",
		},
		{
			name:  "apostrophe is doubled",
			title: "Bob's",
			r:     &sheets.GridRange{EndRowIndex: 1, EndColumnIndex: 1},
			want:  "'Bob''s'!A1:A1",
		},
		{
			name:    "nil range",
			title:   "Sheet1",
			wantErr: true,
		},
		{
			name:    "missing end row",
			title:   "Sheet1",
			r:       &sheets.GridRange{StartRowIndex: 1, EndColumnIndex: 2},
			wantErr: true,
		},
		{
			name:    "empty column span",
			title:   "Sheet1",
			r:       &sheets.GridRange{EndRowIndex: 3, StartColumnIndex: 2, EndColumnIndex: 2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GridRangeToA1(tt.title, tt.r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GridRangeToA1() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("GridRangeToA1() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOptionValidation(t *testing.T) {
	if got, err := valueInputOption(""); err != nil || got != ValueInputRaw {
		t.Errorf("valueInputOption(\"\") = %q, %v", got, err)
	}
	if _, err := valueInputOption("FORMULA"); err == nil {
		t.Error("valueInputOption(FORMULA) should fail")
	}
	if got, err := insertDataOption(""); err != nil || got != InsertRows {
		t.Errorf("insertDataOption(\"\") = %q, %v", got, err)
	}
	if got, err := insertDataOption(Overwrite); err != nil || got != Overwrite {
		t.Errorf("insertDataOption(OVERWRITE) = %q, %v", got, err)
	}
	if _, err := insertDataOption("APPEND"); err == nil {
		t.Error("insertDataOption(APPEND) should fail")
	}
}
