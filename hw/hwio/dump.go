package hwio

import (
	"bufio"
	"encoding/hex"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// DumpLine is a contiguous run of bytes starting at Addr.
type DumpLine struct {
	Addr  uint16
	Bytes []byte
}

// ParseDump parses a textual memory dump, made of lines such as:
//
//	# reset vector
//	FFFC: 00 06
//
// Blank lines and lines starting with '#' are ignored.
func ParseDump(r io.Reader) ([]DumpLine, error) {
	var lines []DumpLine

	scan := bufio.NewScanner(r)
	for nline := 1; scan.Scan(); nline++ {
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		off, octets, ok := strings.Cut(line, ":")
		if !ok {
			return nil, errors.Errorf("line %d: missing ':' in %q", nline, line)
		}
		addr, err := strconv.ParseUint(strings.TrimSpace(off), 16, 16)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: malformed address", nline)
		}
		buf, err := hex.DecodeString(strings.Join(strings.Fields(octets), ""))
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: malformed bytes", nline)
		}
		if int(addr)+len(buf) > MaxSize {
			return nil, errors.Wrapf(ErrInvalidAddress, "line %d: %d bytes at $%04X", nline, len(buf), addr)
		}
		lines = append(lines, DumpLine{Addr: uint16(addr), Bytes: buf})
	}
	if err := scan.Err(); err != nil {
		return nil, errors.Wrap(err, "scan dump")
	}
	return lines, nil
}

// ParseDumpString is ParseDump for in-memory dumps.
func ParseDumpString(dump string) ([]DumpLine, error) {
	return ParseDump(strings.NewReader(dump))
}
