package core

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.005", true}, // no rounding
		{" 2.50 ", "2.5", true},
		{".5", "0.5", true},
		{"0", "0", true},
		{"-1", "", false},
		{"+1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(MustParseMoney(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyHalfIsExact(t *testing.T) {
	m := MoneyFromCents(1)
	var sum Money
	for i := 0; i < 1000; i++ {
		sum = sum.Add(m.Half())
	}
	if !sum.Equal(MoneyFromCents(500)) {
		t.Fatalf("expected 5.00, got %s", sum)
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		in   Money
		want string
	}{
		{Money{}, "R$ 0,00"},
		{MustParseMoney("5"), "R$ 5,00"},
		{MustParseMoney("1234.5"), "R$ 1.234,50"},
		{MustParseMoney("1234567.891"), "R$ 1.234.567,89"},
		{MustParseMoney("100").Sub(MustParseMoney("250.25")), "-R$ 150,25"},
	}
	for _, tc := range cases {
		if got := tc.in.Format(); got != tc.want {
			t.Errorf("Format(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMoneyCents(t *testing.T) {
	if got := MustParseMoney("12.345").Cents(); got != 1235 {
		t.Fatalf("expected 1235, got %d", got)
	}
	if got := NewMoney(0.1).Add(NewMoney(0.2)).Cents(); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
		D Money `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"a":1000,"b":"12,5","c":null,"d":0.1}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !v.A.Equal(MustParseMoney("1000")) || !v.B.Equal(MustParseMoney("12.5")) || !v.C.IsZero() || !v.D.Equal(MustParseMoney("0.1")) {
		t.Fatalf("unexpected values: %+v", v)
	}

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":1000,"b":12.5,"c":0,"d":0.1}` {
		t.Fatalf("unexpected encoding: %s", out)
	}

	if err := json.Unmarshal([]byte(`{"a":"abc"}`), &v); err == nil {
		t.Fatal("expected error for non-numeric string")
	}
}
