package main

import (
	"bytes"
	"strings"
	"testing"

	"ecmacore/internal/ecma"
	"ecmacore/internal/snapshot"
	"ecmacore/internal/stress"
)

func TestRunInspect(t *testing.T) {
	var out bytes.Buffer
	args := []string{"undefined", "42", "-0", "1e300", "123n", "-0xffn", "length", `"hi there"`, "sym:tag", "array", "proxy", "revoked", "error:boom"}
	if err := runInspect(&out, ecma.Options{HeapSize: 16 * 1024}, args); err != nil {
		t.Fatalf("runInspect: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"INPUT",
		"ISARRAY",
		"direct_string", // "length" is a magic string
		"integer",
		"float",
		"-255n",
		"Symbol(tag)",
		"TypeError",
		"throw TypeError: boom",
		`"hi there" len=8`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output lacks %q:\n%s", want, text)
		}
	}
}

func TestParseLiteral(t *testing.T) {
	c, err := ecma.NewContext(ecma.Options{HeapSize: 8192})
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	cases := []struct {
		in   string
		kind ecma.Kind
	}{
		{"null", ecma.KindNull},
		{"true", ecma.KindBoolean},
		{"hole", ecma.KindArrayHole},
		{"7", ecma.KindInteger},
		{"NaN", ecma.KindFloat},
		{"0n", ecma.KindBigIntZero},
		{"4294967295", ecma.KindInteger},
		{"4294967295x", ecma.KindString},
		{"12", ecma.KindInteger},
		{`"12"`, ecma.KindDirectString},
		{"sym:", ecma.KindSymbol},
		{"function", ecma.KindObject},
	}
	for _, tc := range cases {
		v, err := parseLiteral(c, tc.in)
		if err != nil {
			t.Fatalf("parseLiteral(%q): %v", tc.in, err)
		}
		if v.Kind() != tc.kind {
			t.Errorf("parseLiteral(%q) kind = %s, want %s", tc.in, v.Kind(), tc.kind)
		}
		c.Free(v)
	}
	if _, err := parseLiteral(c, `"unterminated`); err == nil {
		t.Error("expected unquote error")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNormalizeNFC(t *testing.T) {
	saved := inspectNFC
	defer func() { inspectNFC = saved }()
	decomposed := "e\u0301"
	inspectNFC = false
	if normalize(decomposed) != decomposed {
		t.Fatal("normalize changed input with --nfc off")
	}
	inspectNFC = true
	if got := normalize(decomposed); got != "\u00e9" {
		t.Fatalf("normalize = %q", got)
	}
}

func TestApplyColorMode(t *testing.T) {
	for _, mode := range []string{"auto", "on", "off", ""} {
		if err := applyColorMode(mode); err != nil {
			t.Errorf("applyColorMode(%q): %v", mode, err)
		}
	}
	if err := applyColorMode("rainbow"); err == nil {
		t.Error("expected error for invalid mode")
	}
}

func TestReadUIMode(t *testing.T) {
	if m, err := readUIMode(" ON "); err != nil || m != uiModeOn {
		t.Fatalf("readUIMode = %v, %v", m, err)
	}
	if _, err := readUIMode("maybe"); err == nil {
		t.Fatal("expected error")
	}
	if !shouldUseTUI(uiModeOn) || shouldUseTUI(uiModeOff) {
		t.Fatal("shouldUseTUI mismatch")
	}
}

func TestPrintSummary(t *testing.T) {
	report, err := stress.Run(t.Context(), stress.Options{
		Engines: 1, Steps: 500, Registers: 8, Slots: 8, Seed: 3,
		Context:  ecma.Options{HeapSize: 64 * 1024},
		Snapshot: true,
	}, nil)
	if err != nil {
		t.Fatalf("stress.Run: %v", err)
	}
	doc := snapshot.FromSnapshot(*report.Results[0].Snapshot)
	var out bytes.Buffer
	printSummary(&out, &doc)
	if !strings.Contains(out.String(), "KIND") || !strings.Contains(out.String(), "live blocks") {
		t.Fatalf("summary:\n%s", out.String())
	}
}
