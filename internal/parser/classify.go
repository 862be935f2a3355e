package parser

import (
	"bufio"
	"bytes"
	"debug/pe"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Dialect identifies a test framework output convention
type Dialect int

const (
	Unsupported Dialect = iota
	GoogleTest
	BoostTest
	NUnit
	NUnitX86
	// GoogleTestNoHeader is a Google Test executable without the gui header
	GoogleTestNoHeader
	// BoostTestNoHeader is a Boost.Test executable without the gui header
	BoostTestNoHeader
)

var dialectNames = map[Dialect]string{
	Unsupported:        "unsupported",
	GoogleTest:         "google",
	BoostTest:          "boost",
	NUnit:              "nunit",
	NUnitX86:           "nunit-x86",
	GoogleTestNoHeader: "google/noheader",
	BoostTestNoHeader:  "boost/noheader",
}

func (d Dialect) String() string {
	if name, ok := dialectNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

// Markers are byte strings found in the executables of each framework
var (
	markerGoogleTest = []byte("--gtest_list_tests")
	markerBoostList  = []byte("list_content")
	markerBoostRun   = []byte("run_test")
	markerNUnit      = []byte("nunit.framework")
	markerGuiWait    = []byte("gui_wait")
	markerWaiting    = []byte("#waiting")
)

var markers = [][]byte{markerGoogleTest, markerBoostList, markerBoostRun, markerNUnit, markerGuiWait, markerWaiting}

// Classify inspects the executable at path without running it
func Classify(path string) (Dialect, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unsupported, fmt.Errorf("open test executable: %w", err)
	}
	defer f.Close()

	found, err := scanMarkers(f, markers)
	if err != nil {
		return Unsupported, fmt.Errorf("read test executable %s: %w", path, err)
	}

	return classifyMarkers(found, func() bool { return requires32Bit(path) }), nil
}

func classifyMarkers(found map[string]bool, x86 func() bool) Dialect {
	has := func(m []byte) bool { return found[string(m)] }

	switch {
	case has(markerNUnit):
		if x86() {
			return NUnitX86
		}
		return NUnit
	case has(markerGoogleTest):
		if has(markerGuiWait) {
			return GoogleTest
		}
		return GoogleTestNoHeader
	case has(markerBoostList) && has(markerBoostRun):
		if has(markerGuiWait) && has(markerWaiting) {
			return BoostTest
		}
		return BoostTestNoHeader
	default:
		return Unsupported
	}
}

// scanMarkers reports which markers occur in r. The input is read in chunks
// that overlap by the longest marker so matches across chunk borders are found.
func scanMarkers(r io.Reader, markers [][]byte) (map[string]bool, error) {
	overlap := 0
	for _, m := range markers {
		if len(m) > overlap {
			overlap = len(m)
		}
	}
	overlap--

	found := make(map[string]bool, len(markers))
	br := bufio.NewReaderSize(r, 64*1024)
	buf := make([]byte, 0, 64*1024+overlap)
	chunk := make([]byte, 64*1024)
	for {
		n, err := br.Read(chunk)
		buf = append(buf, chunk[:n]...)
		for _, m := range markers {
			if !found[string(m)] && bytes.Contains(buf, m) {
				found[string(m)] = true
			}
		}
		if err == io.EOF {
			return found, nil
		}
		if err != nil {
			return nil, err
		}
		if len(buf) > overlap {
			buf = append(buf[:0], buf[len(buf)-overlap:]...)
		}
	}
}

const (
	clrHeaderDirectory   = 14
	clrFlags32BitRequire = 0x2
	clrFlags32BitPrefer  = 0x20000
)

// requires32Bit reports whether a .NET assembly must run in a 32-bit process
func requires32Bit(path string) bool {
	f, err := pe.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var dir pe.DataDirectory
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		if len(oh.DataDirectory) <= clrHeaderDirectory {
			return false
		}
		dir = oh.DataDirectory[clrHeaderDirectory]
	default:
		// PE32+ images never require a 32-bit process
		return false
	}
	if dir.VirtualAddress == 0 {
		return false
	}

	for _, s := range f.Sections {
		if dir.VirtualAddress < s.VirtualAddress || dir.VirtualAddress >= s.VirtualAddress+s.VirtualSize {
			continue
		}
		// The flags field follows cb, runtime versions and the metadata directory
		var flags uint32
		off := int64(dir.VirtualAddress-s.VirtualAddress) + 16
		if err := binary.Read(io.NewSectionReader(s, off, 4), binary.LittleEndian, &flags); err != nil {
			return false
		}
		return flags&clrFlags32BitRequire != 0 && flags&clrFlags32BitPrefer == 0
	}
	return false
}
