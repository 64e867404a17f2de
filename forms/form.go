package forms

import (
	"context"
	"errors"
	"sync"
)

// defaultDescription is shown when a form is built without one.
const defaultDescription = "Please fill out the form below.\n" +
	"You can use the buttons below to navigate the form.\n" +
	"A title with `*` indicates a required field."

// Form is an ordered collection of fields driven to completion over a
// Session. All entry points are safe for concurrent use; while one
// interaction is in flight the others fail with ErrBusy.
type Form struct {
	name        string
	title       string
	description string

	mu      sync.Mutex
	fields  []Field
	current int
	busy    bool
	started bool

	sess     Session
	tr       Translator
	lookup   Lookup
	observer Observer

	outcome *outcome

	// ctorErr collects option failures for New to return.
	ctorErr error
}

// Option configures a form at construction.
type Option func(*Form)

// WithDescription replaces the default form description.
func WithDescription(d string) Option {
	return func(f *Form) { f.description = d }
}

// WithTranslator routes user-facing strings through tr.
func WithTranslator(tr Translator) Option {
	return func(f *Form) { f.tr = tr }
}

// WithLookup provides the catalog reference fields resolve choices from.
func WithLookup(l Lookup) Option {
	return func(f *Form) { f.lookup = l }
}

// WithObserver registers lifecycle observers.
func WithObserver(obs ...Observer) Option {
	return func(f *Form) {
		switch len(obs) {
		case 0:
		case 1:
			f.observer = obs[0]
		default:
			f.observer = multiObserver(obs)
		}
	}
}

// WithValues prefills fields by name, bypassing validators.
func WithValues(values map[string]any) Option {
	return func(f *Form) {
		for _, fld := range f.fields {
			if v, ok := values[fld.Name()]; ok {
				fld.base().prefill(v)
				delete(values, fld.Name())
			}
		}
		for name := range values {
			f.ctorErr = construction("prefill for unknown field %q", name)
			return
		}
	}
}

// New builds a form over the given fields. The first field starts current.
func New(name, title string, fields []Field, opts ...Option) (*Form, error) {
	if name == "" {
		return nil, construction("form name is empty")
	}
	if len(fields) == 0 {
		return nil, construction("form %q has no fields", name)
	}
	seen := make(map[string]struct{}, len(fields))
	for _, fld := range fields {
		if fld.Name() == "" {
			return nil, construction("form %q has a field with an empty name", name)
		}
		if _, dup := seen[fld.Name()]; dup {
			return nil, construction("form %q has duplicate field %q", name, fld.Name())
		}
		seen[fld.Name()] = struct{}{}
		if err := fld.check(); err != nil {
			return nil, err
		}
	}
	f := &Form{
		name:     name,
		title:    title,
		fields:   fields,
		tr:       plainTranslator{},
		observer: nopObserver{},
		outcome:  newOutcome(),
	}
	fields[0].base().current = true
	for _, opt := range opts {
		opt(f)
	}
	if f.ctorErr != nil {
		return nil, f.ctorErr
	}
	return f, nil
}

// Name returns the form's identifier.
func (f *Form) Name() string { return f.name }

// Title returns the form's display title.
func (f *Form) Title() string { return f.title }

// Lookup returns the catalog the form was built with, nil if none.
func (f *Form) Lookup() Lookup { return f.lookup }

// Fields returns the fields in their current order.
func (f *Form) Fields() []Field {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// Status returns the form's resolution state.
func (f *Form) Status() Status { return f.outcome.get() }

// TimedOut reports whether a canceled form was canceled by timeout.
func (f *Form) TimedOut() bool {
	if !f.outcome.resolved() {
		return false
	}
	return f.outcome.timedOut
}

// Wait blocks until the form resolves or ctx is done.
func (f *Form) Wait(ctx context.Context) (Status, error) {
	return f.outcome.wait(ctx)
}

// Start binds the form to a session and renders the first view.
func (f *Form) Start(ctx context.Context, sess Session) error {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return ErrStarted
	}
	f.started = true
	f.sess = sess
	f.mu.Unlock()

	f.observer.Observe(Event{Kind: EventStarted, Form: f})
	return f.render(ctx)
}

// Respond runs the current field's input exchange. On a normal exchange the
// form advances to the next unanswered field the way the view's respond
// button always has: only when the current field holds a value and the field
// immediately after it, in declaration order, does not.
func (f *Form) Respond(ctx context.Context) error {
	if err := f.enter(); err != nil {
		return err
	}
	defer f.leave()
	return f.askCurrent(ctx)
}

// Next moves to the next appearing field. Without one the view just
// refreshes.
func (f *Form) Next(ctx context.Context) error {
	if err := f.enter(); err != nil {
		return err
	}
	defer f.leave()

	f.mu.Lock()
	s := f.snapshotLocked()
	if i := f.nextIndexLocked(s); i >= 0 {
		f.setCurrentLocked(i)
	}
	f.mu.Unlock()
	return f.render(ctx)
}

// Previous moves to the closest preceding appearing field. Without one the
// view just refreshes.
func (f *Form) Previous(ctx context.Context) error {
	if err := f.enter(); err != nil {
		return err
	}
	defer f.leave()

	f.mu.Lock()
	s := f.snapshotLocked()
	if i := f.prevIndexLocked(s); i >= 0 {
		f.setCurrentLocked(i)
	}
	f.mu.Unlock()
	return f.render(ctx)
}

// GoTo jumps to the named field and immediately runs its exchange.
func (f *Form) GoTo(ctx context.Context, name string) error {
	if err := f.enter(); err != nil {
		return err
	}
	defer f.leave()

	f.mu.Lock()
	s := f.snapshotLocked()
	target := -1
	for i, fld := range f.fields {
		if fld.Name() == name && fld.MustAppear(s) {
			target = i
			break
		}
	}
	if target < 0 {
		f.mu.Unlock()
		return ErrNoSuchField
	}
	f.setCurrentLocked(target)
	f.mu.Unlock()
	return f.askCurrent(ctx)
}

// Finish resolves the form successfully. It fails with ErrIncomplete while
// a visible required field is unanswered. Repeating Finish on a finished
// form is a no-op.
func (f *Form) Finish(ctx context.Context) error {
	f.mu.Lock()
	if !f.started {
		f.mu.Unlock()
		return ErrNotStarted
	}
	if f.busy {
		f.mu.Unlock()
		return ErrBusy
	}
	if !f.completedLocked() {
		f.mu.Unlock()
		return ErrIncomplete
	}
	f.mu.Unlock()
	return f.resolve(ctx, StatusFinished, false)
}

// Cancel resolves the form as canceled. Repeating Cancel is a no-op;
// canceling a finished form fails with ErrResolved.
func (f *Form) Cancel(ctx context.Context) error {
	f.mu.Lock()
	if !f.started {
		f.mu.Unlock()
		return ErrNotStarted
	}
	if f.busy {
		f.mu.Unlock()
		return ErrBusy
	}
	f.mu.Unlock()
	return f.resolve(ctx, StatusCanceled, false)
}

// Timeout cancels the form on behalf of an expiry sweep. Unlike Cancel it
// does not wait for an in-flight exchange: the outcome settles immediately
// and the blocked exchange unwinds through its context.
func (f *Form) Timeout(ctx context.Context) error {
	return f.resolve(ctx, StatusCanceled, true)
}

// Current returns the current field, nil once the form has resolved.
func (f *Form) Current() Field {
	if f.outcome.resolved() {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields[f.current]
}

// NextField returns the appearing field after the current one, nil if none.
func (f *Form) NextField() Field {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.nextIndexLocked(f.snapshotLocked()); i >= 0 {
		return f.fields[i]
	}
	return nil
}

// PreviousField returns the closest appearing field before the current one,
// nil if none.
func (f *Form) PreviousField() Field {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.prevIndexLocked(f.snapshotLocked()); i >= 0 {
		return f.fields[i]
	}
	return nil
}

// Completed reports whether no field blocks completion. Hidden fields never
// block, answered or not.
func (f *Form) Completed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completedLocked()
}

// Snapshot returns every field's value keyed by name, nil for unanswered,
// hidden fields included.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Values is Snapshot as a plain map, the form's result.
func (f *Form) Values() map[string]any {
	return map[string]any(f.Snapshot())
}

// View renders the form's current state.
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buildViewLocked()
}

// ── Internals ──────────────────────────────────────────────────────────────

func (f *Form) enter() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.started {
		return ErrNotStarted
	}
	if f.outcome.resolved() {
		return ErrResolved
	}
	if f.busy {
		return ErrBusy
	}
	f.busy = true
	return nil
}

func (f *Form) leave() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

// askCurrent runs the current field's exchange, applies the auto-advance
// rule and renders.
func (f *Form) askCurrent(ctx context.Context) error {
	f.mu.Lock()
	cur := f.fields[f.current]
	f.mu.Unlock()

	st, err := cur.Ask(ctx, f)
	if err != nil {
		return err
	}
	if st == AskRefresh {
		f.autoAdvance()
	}
	return f.render(ctx)
}

// autoAdvance applies the respond rule: move on only when the current field
// holds a value and its raw successor does not. The move itself skips
// hidden fields.
func (f *Form) autoAdvance() {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.current
	if f.fields[i].Value() == nil {
		return
	}
	if i+1 >= len(f.fields) {
		return
	}
	if f.fields[i+1].Value() != nil {
		return
	}
	if j := f.nextIndexLocked(f.snapshotLocked()); j >= 0 {
		f.setCurrentLocked(j)
	}
}

func (f *Form) snapshotLocked() Snapshot {
	s := make(Snapshot, len(f.fields))
	for _, fld := range f.fields {
		s[fld.Name()] = fld.Value()
	}
	return s
}

func (f *Form) completedLocked() bool {
	s := f.snapshotLocked()
	for _, fld := range f.fields {
		if !fld.Done(s) {
			return false
		}
	}
	return true
}

func (f *Form) nextIndexLocked(s Snapshot) int {
	for i := f.current + 1; i < len(f.fields); i++ {
		if f.fields[i].MustAppear(s) {
			return i
		}
	}
	return -1
}

func (f *Form) prevIndexLocked(s Snapshot) int {
	for i := f.current - 1; i >= 0; i-- {
		if f.fields[i].MustAppear(s) {
			return i
		}
	}
	return -1
}

func (f *Form) setCurrentLocked(i int) {
	f.fields[f.current].base().current = false
	f.current = i
	f.fields[i].base().current = true
}

// resolve settles the outcome. Repeating the same terminal state is a
// no-op; a conflicting one fails with ErrResolved.
func (f *Form) resolve(ctx context.Context, st Status, timedOut bool) error {
	if !f.outcome.settle(st, timedOut) {
		if f.outcome.get() == st {
			return nil
		}
		return ErrResolved
	}

	f.mu.Lock()
	for _, fld := range f.fields {
		fld.base().current = false
	}
	sess := f.sess
	f.mu.Unlock()

	kind := EventFinished
	switch {
	case timedOut:
		kind = EventTimedOut
	case st == StatusCanceled:
		kind = EventCanceled
	}
	f.observer.Observe(Event{Kind: kind, Form: f})

	if sess == nil {
		return nil
	}
	return f.render(ctx)
}

func (f *Form) render(ctx context.Context) error {
	f.mu.Lock()
	view := f.buildViewLocked()
	sess := f.sess
	f.mu.Unlock()
	return sess.Render(ctx, view)
}

func (f *Form) buildViewLocked() View {
	resolved := f.outcome.resolved()
	s := f.snapshotLocked()

	desc := f.description
	if desc == "" {
		desc = f.tr.Sprintf(defaultDescription)
	}

	view := View{
		Name:        f.name,
		Title:       f.title,
		Description: desc,
		Status:      f.outcome.get(),
	}

	var navigable []Field
	for _, fld := range f.fields {
		if !fld.MustAppear(s) {
			continue
		}
		navigable = append(navigable, fld)
		view.Rows = append(view.Rows, FieldRow{
			Name:     fld.Name(),
			Label:    fld.Label(),
			Display:  fld.Display(f.tr),
			Required: fld.Required(),
			Current:  !resolved && fld.base().current,
			Answered: fld.Value() != nil,
		})
	}

	if resolved {
		return view
	}

	view.CanPrevious = f.prevIndexLocked(s) >= 0
	view.CanNext = f.nextIndexLocked(s) >= 0
	view.CanFinish = f.completedLocked()

	if len(navigable) > 2 {
		view.GoTo = make([]GoToTarget, 0, len(navigable))
		for _, fld := range navigable {
			view.GoTo = append(view.GoTo, GoToTarget{Name: fld.Name(), Label: fld.Label()})
		}
	}
	return view
}

// notify pushes a transient message to the session.
func (f *Form) notify(ctx context.Context, sev Severity, text string) error {
	f.mu.Lock()
	sess := f.sess
	f.mu.Unlock()
	if sess == nil {
		return nil
	}
	return sess.Notify(ctx, Notice{Severity: sev, Text: text})
}

// setValue validates and stores a submission on fld, notifying the session
// either way. A rejected submission clears the field back to unanswered,
// even if it held a valid value before. ok is false when validation
// rejected the value; err reports session or context failures only.
func (f *Form) setValue(ctx context.Context, fld Field, v any) (ok bool, err error) {
	if f.outcome.resolved() {
		return false, ErrResolved
	}
	b := fld.base()
	if verr := b.validate(v); verr != nil {
		return false, f.reject(ctx, fld, verr)
	}

	f.mu.Lock()
	b.value = v
	f.mu.Unlock()

	f.observer.Observe(Event{Kind: EventFieldAnswered, Form: f, Field: fld})
	if nerr := f.notify(ctx, NoticeSuccess, f.tr.Sprintf("Successfully set value to: %s", fld.Display(f.tr))); nerr != nil {
		return true, nerr
	}
	return true, nil
}

// reject clears fld back to unanswered and reports the failure.
func (f *Form) reject(ctx context.Context, fld Field, verr error) error {
	f.mu.Lock()
	fld.base().value = nil
	f.mu.Unlock()

	reason := renderError(f.tr, verr)
	f.observer.Observe(Event{Kind: EventFieldRejected, Form: f, Field: fld, Reason: reason})
	return f.notify(ctx, NoticeError, reason)
}

// renderError renders a validation failure through the translator; other
// errors pass through as-is.
func renderError(tr Translator, err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return tr.Sprintf(verr.Format, verr.Args...)
	}
	return err.Error()
}

// insertField splices fld in at position at, clamped to the field list.
// The current field keeps its place.
func (f *Form) insertField(at int, fld Field) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fld.Name() == "" {
		return construction("form %q: inserted field has an empty name", f.name)
	}
	for _, g := range f.fields {
		if g.Name() == fld.Name() {
			return construction("form %q has duplicate field %q", f.name, fld.Name())
		}
	}
	if at < 0 {
		at = 0
	}
	if at > len(f.fields) {
		at = len(f.fields)
	}
	f.fields = append(f.fields, nil)
	copy(f.fields[at+1:], f.fields[at:])
	f.fields[at] = fld
	if at <= f.current {
		f.current++
	}
	return nil
}

// removeField drops the named field. Removing the current field moves
// current to the nearest remaining field.
func (f *Form) removeField(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := -1
	for i, fld := range f.fields {
		if fld.Name() == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	wasCurrent := idx == f.current
	f.fields = append(f.fields[:idx], f.fields[idx+1:]...)
	switch {
	case idx < f.current:
		f.current--
	case wasCurrent:
		if f.current >= len(f.fields) {
			f.current = len(f.fields) - 1
		}
		if f.current >= 0 {
			f.fields[f.current].base().current = true
		}
	}
}

// makeCurrent points the form at fld, which must already be in the field
// list.
func (f *Form) makeCurrent(fld Field) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, g := range f.fields {
		if g == fld {
			f.setCurrentLocked(i)
			return
		}
	}
}
