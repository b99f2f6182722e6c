package batch

import "testing"

func TestFileName(t *testing.T) {
	tests := []struct {
		ordinal, total int
		want           string
	}{
		{1, 1, "ch1_to_translate.json"},
		{1, 3, "ch1_to_translate_batch_1.json"},
		{3, 3, "ch1_to_translate_batch_3.json"},
	}

	for _, tt := range tests {
		if got := FileName("ch1", tt.ordinal, tt.total); got != tt.want {
			t.Errorf("FileName(%d, %d) = %q, want %q", tt.ordinal, tt.total, got, tt.want)
		}
	}
}

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name        string
		wantKey     string
		wantOrdinal int
		wantOK      bool
	}{
		{"ch1_to_translate.json", "ch1", 1, true},
		{"ch1_to_translate_batch_12.json", "ch1", 12, true},
		{"a*b[1]_to_translate_batch_2.json", "a*b[1]", 2, true},
		{"ch1_to_translate_batch_1_translation.json", "", 0, false},
		{"ch1_to_translate_translation.json", "", 0, false},
		{"ch1_to_translate_batch_0.json", "", 0, false},
		{"_to_translate.json", "", 0, false},
		{"ch1.json", "", 0, false},
		{"ch1_to_translate.txt", "", 0, false},
	}

	for _, tt := range tests {
		key, ordinal, ok := ParseFileName(tt.name)
		if ok != tt.wantOK || key != tt.wantKey || ordinal != tt.wantOrdinal {
			t.Errorf("ParseFileName(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tt.name, key, ordinal, ok, tt.wantKey, tt.wantOrdinal, tt.wantOK)
		}
	}
}

func TestParseBatchInfo(t *testing.T) {
	tests := []struct {
		info               string
		wantOrdinal, total int
		wantOK             bool
	}{
		{"Batch 2/3", 2, 3, true},
		{" Batch 1/1 ", 1, 1, true},
		{"Batch 4/3", 0, 0, false},
		{"Batch x/3", 0, 0, false},
		{"2/3", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		ordinal, total, ok := ParseBatchInfo(tt.info)
		if ok != tt.wantOK || ordinal != tt.wantOrdinal || total != tt.total {
			t.Errorf("ParseBatchInfo(%q) = (%d, %d, %v)", tt.info, ordinal, total, ok)
		}
	}

	if got := FormatBatchInfo(2, 5); got != "Batch 2/5" {
		t.Errorf("FormatBatchInfo() = %q", got)
	}
}

func TestFileSourceAndTotal(t *testing.T) {
	f := &File{DeckName: "ch1", FilePath: "/notes/ch1.md", BatchInfo: "Batch 1/2"}
	if path, dir := f.Source(); path != "/notes/ch1.md" || dir {
		t.Errorf("Source() = (%q, %v)", path, dir)
	}
	if f.Total() != 2 {
		t.Errorf("Total() = %d, want 2", f.Total())
	}
	if f.Label() != "ch1" {
		t.Errorf("Label() = %q", f.Label())
	}

	d := &File{Directory: "/notes"}
	if path, dir := d.Source(); path != "/notes" || !dir {
		t.Errorf("Source() = (%q, %v)", path, dir)
	}
	if d.Label() != "notes" {
		t.Errorf("Label() = %q, want notes", d.Label())
	}
	if d.Total() != 1 {
		t.Errorf("Total() = %d, want 1", d.Total())
	}
}
