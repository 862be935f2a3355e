// Package parser implements the per-framework protocol adapters: listing
// discovery, run argument construction and streamed output parsing.
package parser

import (
	"errors"
	"fmt"
	"io"
	"time"

	"testexe/internal/domain"
	"testexe/internal/tree"
)

var (
	// ErrUnsupported is returned for files that are not a known unit test executable
	ErrUnsupported = errors.New("this is not a supported unit test executable")
	// ErrGoogleTestNoHeader is returned for Google Test executables built without the gui header
	ErrGoogleTestNoHeader = errors.New("Google Test executable without gui support: did you forget to #include <gtest/gtest-gui.h>?")
	// ErrBoostTestNoHeader is returned for Boost.Test executables built without the gui header
	ErrBoostTestNoHeader = errors.New("Boost.Test executable without gui support: did you forget to #include <boost/test/unit_test_gui.hpp>?")
	// ErrNoTestCases is returned when discovery finds nothing to run
	ErrNoTestCases = errors.New("no test cases")
)

// Handler receives the structural events recognized in the output of a test process
type Handler interface {
	OnWaiting()
	OnTestIterationStart(count int)
	OnTestIterationFinish()
	OnTestUnitStart(id int, name string)
	OnTestUnitFinish(id int, name string, elapsed time.Duration)
	OnTestUnitSkipped(id int, name string)
	OnTestUnitAborted(id int, name string)
	OnTestAssertion(passed bool)
	OnTestExceptionCaught(what string)
	OnTestMessage(severity domain.Severity, text string)
}

// Command is the program and leading arguments used to start a test process
type Command struct {
	Path string
	Args []string
}

// Adapter speaks the listing, argument and output dialect of one test framework
type Adapter interface {
	// Dialect identifies the framework
	Dialect() Dialect
	// Command returns the program to start, before any list or run arguments
	Command() Command
	// ListArgs returns the arguments that make the executable list its tests
	ListArgs() []string
	// Load parses listing output into t, replacing its content
	Load(t *tree.Tree, r io.Reader, rootName string) error
	// BuildArgs returns the run arguments for the enabled units of t
	BuildArgs(t *tree.Tree, level domain.LogLevel, options domain.RunOptions) []string
	// EnabledOptions returns the subset of options the dialect understands
	EnabledOptions(options domain.RunOptions) domain.RunOptions
	// FilterMessage parses one line of run output
	FilterMessage(line string) error
}

// Options configures adapter construction
type Options struct {
	// NUnitRunner is the console runner used for NUnit assemblies
	NUnitRunner string
	// NUnitRunnerX86 is the runner for assemblies that require a 32-bit process
	NUnitRunnerX86 string
}

// New classifies the executable at path and returns the matching adapter
func New(path string, h Handler, opts Options) (Adapter, error) {
	dialect, err := Classify(path)
	if err != nil {
		return nil, err
	}

	switch dialect {
	case GoogleTest:
		return NewGoogleTest(Command{Path: path}, h), nil
	case BoostTest:
		return NewBoostTest(Command{Path: path}, h), nil
	case NUnit:
		return NewNUnit(Command{Path: opts.NUnitRunner, Args: []string{path}}, h), nil
	case NUnitX86:
		a := NewNUnit(Command{Path: opts.NUnitRunnerX86, Args: []string{path}}, h)
		a.dialect = NUnitX86
		return a, nil
	case GoogleTestNoHeader:
		return nil, ErrGoogleTestNoHeader
	case BoostTestNoHeader:
		return nil, ErrBoostTestNoHeader
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
}

// base holds the state shared by all dialects
type base struct {
	cmd Command
	h   Handler
	ids *IDMap
}

func newBase(cmd Command, h Handler) base {
	return base{cmd: cmd, h: h, ids: NewIDMap()}
}

func (b *base) Command() Command {
	return b.cmd
}

// reset prepares t and the id map for a new listing. The empty name is the
// root's key, so the first real unit gets id 1.
func (b *base) reset(t *tree.Tree, rootName string) {
	b.ids.Reset()
	b.ids.ID("")
	t.Reset()
	t.Name = rootName
}
