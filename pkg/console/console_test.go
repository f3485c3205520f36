package console

import (
	"bytes"
	"testing"
)

func TestPrinterPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Info("scanning %s", "target")
	p.Success("%-6s ok", "A")
	p.Failure("B HTTP %d", 500)
	p.Warn("careful")
	p.Detail("ID: %s", "x")
	p.Blank()

	want := "[*] scanning target\n" +
		"[+] A      ok\n" +
		"[-] B HTTP 500\n" +
		"[!] careful\n" +
		"    ID: x\n" +
		"\n"
	if buf.String() != want {
		t.Errorf("output mismatch:\n got: %q\nwant: %q", buf.String(), want)
	}
}
