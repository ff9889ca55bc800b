package yamlutil

import (
	"bytes"
	"errors"
	"testing"
)

type sample struct {
	Name    string `yaml:"name"`
	Columns int    `yaml:"columns"`
}

func TestDecode(t *testing.T) {
	var got sample
	if err := Decode([]byte("name: weekly\ncolumns: 3\n"), &got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Name != "weekly" || got.Columns != 3 {
		t.Errorf("got %+v, want {weekly 3}", got)
	}
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	var got sample
	if err := Decode([]byte("name: weekly\nextra: true\n"), &got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
}

func TestDecodeStrictRejectsUnknownFields(t *testing.T) {
	var got sample
	if err := DecodeStrict([]byte("name: weekly\nextra: true\n"), &got); err == nil {
		t.Fatal("DecodeStrict() error = nil, want unknown-field error")
	}
}

func TestDecodeInputValidation(t *testing.T) {
	var got sample

	if err := Decode(nil, &got); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("empty data error = %v, want ErrEmptyInput", err)
	}
	if err := Decode([]byte("name: x"), nil); !errors.Is(err, ErrNilTarget) {
		t.Errorf("nil target error = %v, want ErrNilTarget", err)
	}

	oversized := bytes.Repeat([]byte("#"), MaxInputSize+1)
	if err := Decode(oversized, &got); !errors.Is(err, ErrInputTooBig) {
		t.Errorf("oversize error = %v, want ErrInputTooBig", err)
	}
}
