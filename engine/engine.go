// Package engine is the public face of the Prolog binding: one Engine owns
// one logic machine and exposes consult, query, assert and retract over host
// values.
//
// No error crosses the public surface. Every operation returns a neutral
// value on failure (false, an empty list or Null) and records the cause in a
// single last-error slot, read with LastError.
package engine

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nathoo/prologot/config"
	"github.com/nathoo/prologot/engine/collect"
	"github.com/nathoo/prologot/engine/convert"
	"github.com/nathoo/prologot/engine/exec"
	"github.com/nathoo/prologot/engine/goal"
	"github.com/nathoo/prologot/engine/vm"
	"github.com/nathoo/prologot/metrics"
	"github.com/nathoo/prologot/term"
	"github.com/nathoo/prologot/types"
	"github.com/nathoo/prologot/value"
)

// Machine is the logic machine an Engine drives. Source text is read by the
// machine itself, so its operator table and flags decide what text means.
type Machine interface {
	exec.Machine
	// ReadTerm reads one term from text without its end dot.
	ReadTerm(text string) (term.Term, error)
	// ReadClauses reads dot-terminated clauses and calls fn on each before
	// reading the next.
	ReadClauses(text string, fn func(term.Term) error) error
	// Exec loads clause text the way consult does, directives included.
	Exec(text string) error
}

// MachineFactory creates the logic machine on Initialize. Goal output is
// written to out.
type MachineFactory func(out io.Writer) Machine

// Engine holds the machine and the bookkeeping around it. All methods are
// safe for concurrent use; calls are serialised.
type Engine struct {
	mu sync.Mutex

	newMachine MachineFactory
	logger     *zap.Logger
	out        io.Writer
	metrics    *metrics.Recorder

	machine Machine
	cfg     config.Config
	argv    []string
	lastErr error

	// Predicates created through AddFact and ConsultString, in creation
	// order. Clauses reports their contents.
	created []types.Indicator
	known   map[types.Indicator]bool

	// Predicates the machine defines before any user code is loaded.
	// ListPredicates leaves them out.
	system map[types.Indicator]bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithMachineFactory replaces the default ichiban/prolog machine.
func WithMachineFactory(f MachineFactory) Option {
	return func(e *Engine) { e.newMachine = f }
}

// WithLogger sets the logger used for lifecycle messages and error
// presentation.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithOutput sets where goal output (write/1 and friends) goes.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.out = w }
}

// WithMetrics shares a metrics recorder with the caller.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = r }
}

// New creates an uninitialised engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		newMachine: func(out io.Writer) Machine { return vm.New(out) },
		logger:     zap.NewNop(),
		out:        io.Discard,
		cfg:        config.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.New()
	}
	return e
}

// Initialize starts the engine with options given as a host mapping (or
// Null for defaults). It is idempotent: while initialised it returns true
// without looking at opts.
func (e *Engine) Initialize(opts value.Value) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.machine != nil {
		return true
	}
	cfg, err := config.FromValue(opts)
	if err != nil {
		e.fail("initialize", fmt.Errorf("%w: %v", types.ErrConversion, err))
		return false
	}
	return e.start(cfg)
}

// InitializeConfig is Initialize with already decoded options.
func (e *Engine) InitializeConfig(cfg config.Config) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.machine != nil {
		return true
	}
	if err := cfg.Validate(); err != nil {
		e.fail("initialize", err)
		return false
	}
	return e.start(cfg)
}

func (e *Engine) start(cfg config.Config) bool {
	// 1. Record the options and the argument vector they stand for.
	e.cfg = cfg
	e.argv = cfg.Argv()
	e.logger.Info("starting engine", zap.Strings("argv", e.argv))

	// 2. Create the machine.
	e.machine = e.newMachine(e.out)
	e.created, e.known = nil, map[types.Indicator]bool{}
	e.system = map[types.Indicator]bool{}
	defined, _, _ := e.definedPredicates()
	for _, pi := range defined {
		e.system[pi] = true
	}

	// 3. Options the embedded engine cannot honour.
	for _, name := range cfg.Unsupported() {
		e.warn("initialize", fmt.Sprintf("option %q has no effect on the embedded engine", name))
	}

	// 4. Prolog flags. A rejected flag is a warning, not a failure.
	for _, name := range sortedKeys(cfg.PrologFlags) {
		flag := term.New("set_prolog_flag", term.Atom(name), e.flagValue(cfg.PrologFlags[name]))
		if res := exec.Execute(e.machine, flag); res.Outcome != exec.Solved {
			e.warn("initialize", fmt.Sprintf("prolog flag %s: %s", name, describe(res)))
		}
	}

	// 5. Init and script files, then goals. Any failure aborts startup.
	for _, file := range []string{cfg.InitFile, cfg.ScriptFile} {
		if file == "" {
			continue
		}
		if res := e.run("initialize", term.New("consult", term.Atom(cfg.Resolve(file)))); res.Outcome != exec.Solved {
			if res.Outcome == exec.NotSolved {
				e.fail("initialize", fmt.Errorf("%w: consulting %s failed", types.ErrEngine, file))
			}
			e.machine = nil
			return false
		}
	}
	for _, text := range cfg.Goal {
		if strings.TrimSpace(text) == "" {
			continue
		}
		g, err := e.parseGoal(text)
		if err != nil {
			e.fail("initialize", err)
			e.machine = nil
			return false
		}
		if res := e.run("initialize", g); res.Outcome != exec.Solved {
			if res.Outcome == exec.NotSolved {
				e.fail("initialize", fmt.Errorf("%w: goal %s failed", types.ErrEngine, text))
			}
			e.machine = nil
			return false
		}
	}
	e.logger.Info("engine ready")
	return true
}

// flagValue reads a flag value as a term, falling back to an atom.
func (e *Engine) flagValue(s string) term.Term {
	if t, err := e.machine.ReadTerm(s); err == nil {
		return t
	}
	return term.Atom(s)
}

// Cleanup shuts the engine down. Safe to call when not initialised.
func (e *Engine) Cleanup() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.machine == nil {
		return
	}
	e.machine = nil
	e.created, e.known, e.system = nil, nil, nil
	e.logger.Info("engine stopped")
}

// IsInitialized reports whether the engine is running.
func (e *Engine) IsInitialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine != nil
}

// Argv returns the argument vector assembled from the startup options.
func (e *Engine) Argv() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.argv...)
}

// Config returns the options the engine was started with.
func (e *Engine) Config() config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// ConsultFile loads a Prolog source file. res:// and user:// paths are
// resolved first.
func (e *Engine) ConsultFile(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	const op = "consult file"
	if !e.ready(op) {
		return false
	}
	if strings.TrimSpace(path) == "" {
		e.fail(op, fmt.Errorf("%w: empty filename", types.ErrEmptyInput))
		return false
	}
	resolved := e.cfg.Resolve(path)
	e.logger.Debug("consulting file", zap.String("path", resolved))
	res := e.run(op, term.New("consult", term.Atom(resolved)))
	if res.Outcome == exec.NotSolved {
		e.fail(op, fmt.Errorf("%w: consulting %s failed", types.ErrEngine, resolved))
	}
	return res.Outcome == exec.Solved
}

// errStopLoading ends ReadClauses after loadClause has recorded the cause.
var errStopLoading = errors.New("stop loading")

// ConsultString loads clauses from text one at a time, so a directive such
// as op/3 affects the clauses after it. Directives (:- G) and queries (?- G)
// are run; DCG rules are expanded; every other clause is added with
// assertz/1, so it can be retracted later. Loading stops at the first
// clause that fails to read or load; the clauses before it stay loaded.
func (e *Engine) ConsultString(code string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	const op = "consult string"
	if !e.ready(op) {
		return false
	}
	if strings.TrimSpace(code) == "" {
		e.fail(op, fmt.Errorf("%w: empty Prolog code", types.ErrEmptyInput))
		return false
	}
	err := e.machine.ReadClauses(code, func(c term.Term) error {
		if !e.loadClause(op, c) {
			return errStopLoading
		}
		return nil
	})
	switch {
	case errors.Is(err, errStopLoading):
		return false
	case err != nil:
		e.fail(op, err)
		return false
	}
	return true
}

func (e *Engine) loadClause(op string, c term.Term) bool {
	if d, ok := c.(term.Compound); ok && len(d.Args) == 1 && (d.Functor == ":-" || d.Functor == "?-") {
		if d.Functor == ":-" {
			if err := e.machine.Exec(":- " + term.Canonical(d.Args[0]) + "."); err != nil {
				e.fail(op, err)
				return false
			}
			return true
		}
		res := e.run(op, d.Args[0])
		if res.Outcome == exec.NotSolved {
			e.warn(op, "directive failed: "+term.Canonical(d.Args[0]))
		}
		return res.Outcome == exec.Solved
	}
	if name, arity, _ := term.NameArity(c); name == "-->" && arity == 2 {
		res := e.run(op, term.New("expand_term", c, term.Var{Name: "Clause"}))
		if res.Outcome != exec.Solved {
			if res.Outcome == exec.NotSolved {
				e.fail(op, fmt.Errorf("%w: cannot expand grammar rule %s", types.ErrEngine, term.Canonical(c)))
			}
			return false
		}
		c, _ = term.Arg(res.Goal, 2)
	}
	if res := e.run(op, term.New("assertz", c)); res.Outcome != exec.Solved {
		return false
	}
	e.remember(c)
	return true
}

// Query reports whether the goal has a solution. With args, goal is a
// predicate name and the arguments are spliced in as text.
func (e *Engine) Query(predicate string, args ...value.Value) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.prepare("query", predicate, args)
	if !ok {
		return false
	}
	return e.run("query", g).Outcome == exec.Solved
}

// QueryAll returns every solution. When every argument names a variable
// ("X", "_Y") each solution is a mapping from those names to their values;
// otherwise each solution is the converted goal instance.
func (e *Engine) QueryAll(predicate string, args ...value.Value) []value.Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	const op = "query all"
	g, ok := e.prepare(op, predicate, args)
	if !ok {
		return []value.Value{}
	}
	start := time.Now()
	out, res := collect.All(e.machine, g, args)
	e.finish(op, g, res, start)
	return out
}

// QueryOne returns the first solution, shaped like the elements of
// QueryAll, or Null when there is none.
func (e *Engine) QueryOne(predicate string, args ...value.Value) value.Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	const op = "query one"
	g, ok := e.prepare(op, predicate, args)
	if !ok {
		return value.Null
	}
	start := time.Now()
	out, res := collect.One(e.machine, g, args)
	e.finish(op, g, res, start)
	return out
}

// CallPredicate calls name(args...) with each argument converted to a term,
// so strings are atoms rather than source text.
func (e *Engine) CallPredicate(name string, args ...value.Value) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	const op = "call predicate"
	g, ok := e.build(op, name, args, 0)
	if !ok {
		return false
	}
	return e.run(op, g).Outcome == exec.Solved
}

// CallFunction calls name(args..., Result) and returns Result, or Null
// when the call fails.
func (e *Engine) CallFunction(name string, args ...value.Value) value.Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	const op = "call function"
	g, ok := e.build(op, name, args, 1)
	if !ok {
		return value.Null
	}
	res := e.run(op, g)
	if res.Outcome != exec.Solved {
		return value.Null
	}
	result, _ := term.Arg(res.Goal, len(args)+1)
	return convert.ToValue(result)
}

// PredicateExists reports whether a user predicate name/arity is defined.
func (e *Engine) PredicateExists(name string, arity int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	const op = "predicate exists"
	if !e.ready(op) {
		return false
	}
	if strings.TrimSpace(name) == "" {
		e.fail(op, fmt.Errorf("%w: empty predicate name", types.ErrEmptyInput))
		return false
	}
	pi := term.New("/", term.Atom(name), term.Int(int64(arity)))
	return e.run(op, term.New("current_predicate", pi)).Outcome == exec.Solved
}

// ListPredicates returns every user predicate as a "/"(Name, Arity)
// compound mapping, sorted by name and arity. Predicates the machine
// defines for itself are left out.
func (e *Engine) ListPredicates() []value.Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	const op = "list predicates"
	if !e.ready(op) {
		return []value.Value{}
	}
	start := time.Now()
	defined, g, res := e.definedPredicates()
	e.finish(op, g, res, start)
	out := make([]value.Value, 0, len(defined))
	for _, pi := range defined {
		if e.system[pi] {
			continue
		}
		out = append(out, value.Compound("/", value.Str(pi.Name), value.Int(int64(pi.Arity))))
	}
	return out
}

// definedPredicates enumerates current_predicate/1. The indicator is left
// unbound as a whole: the engine rejects a Name/Arity pattern with unbound
// parts.
func (e *Engine) definedPredicates() ([]types.Indicator, term.Term, exec.Result) {
	pi := term.Var{Name: "PI"}
	g := term.New("current_predicate", pi)
	instances, res := collect.Terms(e.machine, pi, g)
	var out []types.Indicator
	for _, inst := range instances {
		name, _ := term.Arg(inst, 1)
		arity, _ := term.Arg(inst, 2)
		n, ok1 := name.(term.Atom)
		a, ok2 := arity.(term.Int)
		if !ok1 || !ok2 {
			continue
		}
		out = append(out, types.Indicator{Name: string(n), Arity: int(a)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Arity < out[j].Arity
	})
	return out, g, res
}

// Solve answers a goal the way an interactive toplevel does: one mapping
// per solution, binding every named variable that does not start with '_'.
// A goal without such variables yields one empty mapping per solution.
func (e *Engine) Solve(text string) ([]value.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	const op = "solve"
	if !e.ready(op) {
		return nil, e.lastErr
	}
	if strings.TrimSpace(text) == "" {
		e.fail(op, fmt.Errorf("%w: empty query", types.ErrEmptyInput))
		return nil, e.lastErr
	}
	g, err := e.parseGoal(text)
	if err != nil {
		e.fail(op, err)
		return nil, e.lastErr
	}
	var vars []term.Term
	var names []value.Value
	for _, name := range term.Vars(g) {
		if strings.HasPrefix(name, "_") {
			continue
		}
		vars = append(vars, term.Var{Name: name})
		names = append(names, value.Str(name))
	}
	template := term.New("v", vars...)
	start := time.Now()
	out, res := collect.AllTemplate(e.machine, template, g, names)
	e.finish(op, g, res, start)
	if res.Outcome == exec.Exception {
		return nil, e.lastErr
	}
	if len(names) == 0 {
		for i := range out {
			out[i] = value.Map(nil)
		}
	}
	return out, nil
}

// LastError returns the most recent error message, or "" if none occurred.
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastErr == nil {
		return ""
	}
	return e.lastErr.Error()
}

// Err returns the most recent error for classification with errors.Is.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Stats returns the operation counters.
func (e *Engine) Stats() []metrics.Sample {
	return e.metrics.Samples()
}

// Metrics returns the engine's metrics recorder.
func (e *Engine) Metrics() *metrics.Recorder {
	return e.metrics
}

// --- internal helpers, called with mu held ---

func (e *Engine) ready(op string) bool {
	if e.machine == nil {
		e.fail(op, types.ErrNotInitialized)
		return false
	}
	return true
}

// prepare builds and parses the goal text of Query, QueryAll and QueryOne.
func (e *Engine) prepare(op, predicate string, args []value.Value) (term.Term, bool) {
	if !e.ready(op) {
		return nil, false
	}
	text := goal.Text(predicate, args)
	if goal.StripPeriod(text) == "" {
		e.fail(op, fmt.Errorf("%w: empty query", types.ErrEmptyInput))
		return nil, false
	}
	g, err := e.parseGoal(text)
	if err != nil {
		e.fail(op, err)
		return nil, false
	}
	return g, true
}

// build converts name and args into a goal term for CallPredicate and
// CallFunction.
func (e *Engine) build(op, name string, args []value.Value, extra int) (term.Term, bool) {
	if !e.ready(op) {
		return nil, false
	}
	if strings.TrimSpace(name) == "" {
		e.fail(op, fmt.Errorf("%w: empty predicate name", types.ErrEmptyInput))
		return nil, false
	}
	g, err := goal.Compound(name, args, extra)
	if err != nil {
		e.fail(op, err)
		return nil, false
	}
	return g, true
}

// parseGoal strips one trailing period and has the machine read the rest
// as one term.
func (e *Engine) parseGoal(text string) (term.Term, error) {
	src := goal.StripPeriod(text)
	g, err := e.machine.ReadTerm(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", src, err)
	}
	return g, nil
}

// run executes g once and accounts for the result.
func (e *Engine) run(op string, g term.Term) exec.Result {
	start := time.Now()
	res := exec.Execute(e.machine, g)
	e.finish(op, g, res, start)
	return res
}

func (e *Engine) finish(op string, g term.Term, res exec.Result, start time.Time) {
	e.metrics.Observe(op, res.Outcome.String(), time.Since(start))
	e.logger.Debug("goal executed",
		zap.String("op", op),
		zap.String("goal", term.Canonical(g)),
		zap.Stringer("outcome", res.Outcome))
	if res.Outcome == exec.Exception {
		e.fail(op, res.Err)
	}
}

// remember records the predicate a clause belongs to.
func (e *Engine) remember(clause term.Term) {
	head := clause
	if c, ok := clause.(term.Compound); ok && c.Functor == ":-" && len(c.Args) == 2 {
		head = c.Args[0]
	}
	name, arity, ok := term.NameArity(head)
	if !ok {
		return
	}
	pi := types.Indicator{Name: name, Arity: arity}
	if e.known == nil {
		e.known = map[types.Indicator]bool{}
	}
	if !e.known[pi] {
		e.known[pi] = true
		e.created = append(e.created, pi)
	}
}

func describe(res exec.Result) string {
	if res.Outcome == exec.Exception {
		return res.Message()
	}
	return res.Outcome.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
