package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewRoundsHalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0.315", "0.32"},
		{"0.314", "0.31"},
		{"0.63318", "0.63"},
		{"0.069696", "0.07"},
		{"176", "176.00"},
		{"0", "0.00"},
	}
	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if got := New(d).String(); got != tc.want {
			t.Errorf("New(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestAddSub(t *testing.T) {
	a, err := FromString("1050.00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := FromString("201")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := a.Add(b).String(); got != "1251.00" {
		t.Errorf("Add = %s, want 1251.00", got)
	}
	if got := a.Sub(b).String(); got != "849.00" {
		t.Errorf("Sub = %s, want 849.00", got)
	}
}

func TestJSONAcceptsStringAndNumber(t *testing.T) {
	var fromString, fromNumber Money
	if err := json.Unmarshal([]byte(`"80.5"`), &fromString); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if err := json.Unmarshal([]byte(`80.5`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if !fromString.Equal(fromNumber) {
		t.Errorf("string %s != number %s", fromString, fromNumber)
	}

	out, err := json.Marshal(fromString)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"80.50"` {
		t.Errorf("marshal = %s, want \"80.50\"", out)
	}
}
