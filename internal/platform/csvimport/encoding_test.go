package csvimport

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"
)

func TestDecodeUTF8BOM(t *testing.T) {
	out, name, err := Decode(append([]byte{0xEF, 0xBB, 0xBF}, []byte("Id,x")...))
	if err != nil || name != "utf-8-bom" || string(out) != "Id,x" {
		t.Fatalf("unexpected decode: %q %s %v", out, name, err)
	}
}

func TestDecodeUTF16LE(t *testing.T) {
	units := utf16.Encode([]rune("Id,José"))
	data := []byte{0xFF, 0xFE}
	for _, u := range units {
		data = binary.LittleEndian.AppendUint16(data, u)
	}
	out, name, err := Decode(data)
	if err != nil || name != "utf-16le" || string(out) != "Id,José" {
		t.Fatalf("unexpected decode: %q %s %v", out, name, err)
	}
}

func TestDecodeUTF16BE(t *testing.T) {
	units := utf16.Encode([]rune("Id"))
	data := []byte{0xFE, 0xFF}
	for _, u := range units {
		data = binary.BigEndian.AppendUint16(data, u)
	}
	out, name, err := Decode(data)
	if err != nil || name != "utf-16be" || string(out) != "Id" {
		t.Fatalf("unexpected decode: %q %s %v", out, name, err)
	}
}

func TestDecodeLatin1Fallback(t *testing.T) {
	out, name, err := Decode([]byte{'J', 'o', 's', 0xE9})
	if err != nil || name != "latin-1" || string(out) != "José" {
		t.Fatalf("unexpected decode: %q %s %v", out, name, err)
	}
}

func TestParseLatin1Input(t *testing.T) {
	data := []byte("Id,firstName,lastName,salary,managerId\n1,Jos\xe9,Doe,100,\n")
	set, err := ParseBytes(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	emp, _ := set.Get("1")
	if emp.FirstName != "José" {
		t.Fatalf("expected decoded name, got %q", emp.FirstName)
	}
}
