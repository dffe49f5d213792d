// Package engine runs Lisp session scripts for Kiln. A script drives a
// fresh pottery session through its stages with the same gestures and
// controls a potter would use, and the engine reports where it ended up.
package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/chazu/kiln/pkg/config"
	"github.com/chazu/kiln/pkg/pottery"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Result is the session a script left behind.
type Result struct {
	Controller *pottery.Controller
	Status     pottery.Status
	Frames     uint64
}

// Factory builds the controller a script drives. Each evaluation gets
// its own controller.
type Factory func() *pottery.Controller

// Seed fixes the randomness of the default factory so the same script
// always fires to the same outcome.
const Seed = 0x6b696c6e

// DefaultFactory returns a factory building headless sessions with the
// given settings and a seeded source.
func DefaultFactory(s *config.Settings) Factory {
	if s == nil {
		s = config.Default()
	}
	return func() *pottery.Controller {
		return pottery.New(pottery.NewScene(s, 800, 600),
			pottery.WithSettings(s),
			pottery.WithRand(rand.New(rand.NewPCG(Seed, Seed))))
	}
}

// MaxTicks bounds the frames a single tick, wait or fire call may run.
const MaxTicks = 1 << 20

// ErrAbandoned stops a script whose caller has given up on it, either
// because it timed out or because a newer evaluation replaced it.
var ErrAbandoned = errors.New("evaluation abandoned")

// Engine wraps the zygomys interpreter for session scripts.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment and a fresh controller.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	factory    Factory
}

// NewEngine creates a new Engine. A nil factory uses DefaultFactory with
// the default settings.
func NewEngine(f Factory) *Engine {
	if f == nil {
		f = DefaultFactory(nil)
	}
	return &Engine{factory: f}
}

// Evaluate runs a session script.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Result, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	var timedOut atomic.Bool
	stop := func() bool {
		if timedOut.Load() {
			return true
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.generation != gen
	}

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(source, stop)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation, func() { timedOut.Store(true) })
}

// evaluate runs source against a fresh session. The session clock stops
// as soon as stop reports true.
func (e *Engine) evaluate(source string, stop func() bool) (*Result, []EvalError, error) {
	c := e.factory()
	if c == nil {
		return nil, nil, fmt.Errorf("session factory returned nil")
	}

	// An empty script leaves the session untouched in the intro.
	if strings.TrimSpace(source) == "" {
		return finish(c), nil, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, c, stop)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		c.Close()
		return nil, parseZygomysError(err), nil
	}

	if _, err := env.Run(); err != nil {
		c.Close()
		return nil, parseZygomysError(err), nil
	}

	return finish(c), nil, nil
}

func finish(c *pottery.Controller) *Result {
	return &Result{Controller: c, Status: c.Status(), Frames: c.Frames()}
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
