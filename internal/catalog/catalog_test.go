package catalog

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Catalog
		wantErr bool
	}{
		{
			name: "valid list",
			data: `[{"code":"en","name":"English"},{"code":"tr","name":"Turkish"}]`,
			want: Catalog{{Code: "en", Name: "English"}, {Code: "tr", Name: "Turkish"}},
		},
		{
			name: "empty list",
			data: `[]`,
			want: Catalog{},
		},
		{name: "null", data: `null`, wantErr: true},
		{name: "object instead of list", data: `{"code":"en"}`, wantErr: true},
		{name: "truncated", data: `[{"code":"en","name":"Eng`, wantErr: true},
		{name: "missing name", data: `[{"code":"en"}]`, wantErr: true},
		{name: "blank code", data: `[{"code":" ","name":"English"}]`, wantErr: true},
		{name: "duplicate code", data: `[{"code":"en","name":"English"},{"code":"en","name":"Anglais"}]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Errorf("expected ErrMalformed, got %v", err)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	original := Catalog{{Code: "en", Name: "English"}, {Code: "de", Name: "German"}}

	data, err := original.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !reflect.DeepEqual(decoded, original) {
		t.Errorf("round trip = %v, want %v", decoded, original)
	}
}

func TestEncode_Nil(t *testing.T) {
	var c Catalog
	data, err := c.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Encode(nil) = %s, want []", data)
	}
}

func TestLookupAndCodes(t *testing.T) {
	c := Catalog{{Code: "en", Name: "English"}, {Code: "tr", Name: "Turkish"}}

	entry, ok := c.Lookup("tr")
	if !ok || entry.Name != "Turkish" {
		t.Errorf("Lookup(tr) = %v, %v", entry, ok)
	}
	if _, ok := c.Lookup("fr"); ok {
		t.Error("Lookup(fr) should miss")
	}

	if got := c.Codes(); !reflect.DeepEqual(got, []string{"en", "tr"}) {
		t.Errorf("Codes() = %v", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "", want: ""},
		{input: "   ", want: ""},
		{input: "en", want: "en"},
		{input: "EN", want: "en"},
		{input: "en_us", want: "en-US"},
		{input: "pt-br", want: "pt-BR"},
		{input: "not a code", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"en", "English"},
		{"tr", "Turkish"},
		{"de", "German"},
		{"not a code", ""},
	}

	for _, tt := range tests {
		if got := DisplayName(tt.code); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestFromCodes(t *testing.T) {
	c := FromCodes([]string{"en", "TR", "en", "not a code", "", "de"})

	want := []string{"en", "tr", "de"}
	got := c.Codes()
	if len(got) != len(want) {
		t.Fatalf("Codes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Codes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	entry, ok := c.Lookup("tr")
	if !ok || entry.Name != "Turkish" {
		t.Errorf("Lookup(tr) = %+v, %v", entry, ok)
	}

	if _, err := Parse(mustEncode(t, c)); err != nil {
		t.Errorf("FromCodes result does not parse: %v", err)
	}
}

func mustEncode(t *testing.T, c Catalog) []byte {
	t.Helper()
	data, err := c.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return data
}
