// Package reconcile brings per-language dictionaries into agreement with
// the master key set.
//
// The algorithm works per key, base language first: a missing base value
// is synthesized with a generated default label (or, for keys that came
// from another language's dictionary, reverse-translated back into the
// base language), then every dependent language is filled from the base
// value via the configured translator. Existing real translations are
// never overwritten, placeholder and blank values are treated as gaps,
// and running the reconciler on its own output changes nothing.
//
// The reconciler never writes to the console or to disk. It mutates the
// dictionaries in memory and returns a Report describing every change;
// rendering and persistence are the caller's business.
package reconcile

import (
	"context"
	"fmt"
	"sort"

	"github.com/langsync/langsync/dict"
	"github.com/langsync/langsync/label"
)

// Translator converts a single string between two languages. It is the
// injected machine-translation capability; implementations live in the
// translate package.
type Translator interface {
	// Name identifies the backend in logs and reports.
	Name() string
	// Translate returns a best-effort translation of text.
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Options configures a reconciliation run.
type Options struct {
	// BaseLang is the authoritative source language.
	BaseLang string
	// Langs lists every language to process, in reporting order.
	// Empty means the base language plus all dictionary languages.
	Langs []string
	// Keys is the canonical key list, in file order.
	Keys []string
	// Discover adds keys found only in existing dictionaries to the
	// master key set, sorted after the canonical keys.
	Discover bool
	// Reverse fills the base value of a discovered key by translating
	// from the dictionary the key originated in, instead of generating
	// a default label. Placeholder origins still fall back to a label.
	Reverse bool
	// Translator fills dependent-language values. When nil, gaps are
	// filled with marker-tagged echoes of the base text.
	Translator Translator
	// OnProgress, when set, is called after each master key has been
	// processed across all languages.
	OnProgress func(done, total int)
}

// ---------------------------------------------------------------------------
// Report
// ---------------------------------------------------------------------------

// Action classifies how a value was produced.
type Action string

const (
	// ActionLabel is a generated base-language default label.
	ActionLabel Action = "default-label"
	// ActionTranslate is a real translation of the base value.
	ActionTranslate Action = "translated"
	// ActionPlaceholder is a marker-tagged value still needing work.
	ActionPlaceholder Action = "placeholder"
	// ActionReverse is a base value translated from a non-base origin.
	ActionReverse Action = "reverse-translated"
)

// Change records one dictionary write. Old and New are wire-form values
// (placeholder markers attached); Old is empty when the key was absent.
type Change struct {
	Lang   string
	Key    string
	Action Action
	Old    string
	New    string
}

// Report is the structured outcome of a run.
type Report struct {
	BaseLang string
	// MasterKeys is the full key set in processing order.
	MasterKeys []string
	// Discovered lists keys that were not in the canonical list.
	Discovered []string
	Changes    []Change
	Warnings   []string
	// TranslateCalls counts translator invocations, successful or not.
	TranslateCalls int
}

// ChangesFor returns the changes recorded for one language.
func (r *Report) ChangesFor(lang string) []Change {
	var out []Change
	for _, c := range r.Changes {
		if c.Lang == lang {
			out = append(out, c)
		}
	}
	return out
}

// Changed reports whether any change touched the given language.
func (r *Report) Changed(lang string) bool {
	for _, c := range r.Changes {
		if c.Lang == lang {
			return true
		}
	}
	return false
}

// Summary returns a one-line human summary of the run.
func (r *Report) Summary() string {
	counts := make(map[Action]int)
	for _, c := range r.Changes {
		counts[c.Action]++
	}
	return fmt.Sprintf("%d keys, %d changes (%d labeled, %d translated, %d placeholders, %d reverse), %d translate calls",
		len(r.MasterKeys), len(r.Changes),
		counts[ActionLabel], counts[ActionTranslate],
		counts[ActionPlaceholder], counts[ActionReverse],
		r.TranslateCalls)
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

type run struct {
	opts       Options
	dicts      map[string]*dict.Dictionary
	deps       []string
	discovered map[string]bool
	report     *Report
}

// Run reconciles the dictionaries in place and returns the report.
// It fails only on configuration problems and context cancellation;
// translation failures degrade to placeholders and warnings.
func Run(ctx context.Context, dicts map[string]*dict.Dictionary, opts Options) (*Report, error) {
	if opts.BaseLang == "" {
		return nil, fmt.Errorf("base language not set")
	}

	langs, err := resolveLangs(dicts, opts)
	if err != nil {
		return nil, err
	}

	rn := &run{
		opts:       opts,
		dicts:      dicts,
		deps:       langs[1:],
		discovered: make(map[string]bool),
		report:     &Report{BaseLang: opts.BaseLang},
	}
	rn.buildMasterKeys(langs)

	total := len(rn.report.MasterKeys)
	for i, key := range rn.report.MasterKeys {
		if err := ctx.Err(); err != nil {
			return rn.report, err
		}

		rn.baseStep(ctx, key)
		for _, lang := range rn.deps {
			rn.dependentStep(ctx, key, lang)
		}

		if opts.OnProgress != nil {
			opts.OnProgress(i+1, total)
		}
	}

	return rn.report, nil
}

// resolveLangs returns the processing order: base language first, then
// the dependent languages. Every language must have a dictionary.
func resolveLangs(dicts map[string]*dict.Dictionary, opts Options) ([]string, error) {
	langs := []string{opts.BaseLang}
	seen := map[string]bool{opts.BaseLang: true}

	add := func(lang string) {
		if !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
	}

	if len(opts.Langs) > 0 {
		for _, lang := range opts.Langs {
			add(lang)
		}
	} else {
		rest := make([]string, 0, len(dicts))
		for lang := range dicts {
			rest = append(rest, lang)
		}
		sort.Strings(rest)
		for _, lang := range rest {
			add(lang)
		}
	}

	for _, lang := range langs {
		if dicts[lang] == nil {
			return nil, fmt.Errorf("no dictionary for language %s", lang)
		}
	}
	return langs, nil
}

// buildMasterKeys assembles the canonical keys in file order plus, when
// discovery is on, dictionary-only keys sorted after them.
func (rn *run) buildMasterKeys(langs []string) {
	seen := make(map[string]bool, len(rn.opts.Keys))
	master := make([]string, 0, len(rn.opts.Keys))
	for _, k := range rn.opts.Keys {
		if !seen[k] {
			seen[k] = true
			master = append(master, k)
		}
	}

	if rn.opts.Discover {
		var found []string
		for _, lang := range langs {
			for _, k := range rn.dicts[lang].Keys() {
				if !seen[k] {
					seen[k] = true
					found = append(found, k)
				}
			}
		}
		sort.Strings(found)
		master = append(master, found...)

		for _, k := range found {
			rn.discovered[k] = true
		}
		rn.report.Discovered = found
	}

	rn.report.MasterKeys = master
}

// baseStep guarantees the base language holds a value for key. Authored
// values win; discovered keys may be reverse-translated; everything else
// gets a deterministic default label, keeping the base language
// independent of the translator.
func (rn *run) baseStep(ctx context.Context, key string) {
	base := rn.dicts[rn.opts.BaseLang]
	if base.Valid(key) {
		return
	}

	var val dict.Value
	var action Action

	if rn.opts.Reverse && rn.discovered[key] {
		if srcLang, srcText, ok := rn.reverseSource(key); ok {
			out, err := rn.translate(ctx, srcText, srcLang, rn.opts.BaseLang)
			if err != nil {
				rn.report.warnf("%s: %s: reverse translation from %s failed: %v",
					rn.opts.BaseLang, key, srcLang, err)
			} else if v := dict.FromWire(out, base.Marker); v.Valid() {
				// The base language keeps neither placeholders nor
				// blank results; both fall through to a generated
				// label.
				val = v
				action = ActionReverse
			}
		}
	}

	if action == "" {
		val = dict.Translated(label.Generate(key))
		action = ActionLabel
	}

	rn.store(base, key, val, action)
}

// dependentStep guarantees lang holds a value for key, derived from the
// base value. Real translations already present are never touched.
func (rn *run) dependentStep(ctx context.Context, key, lang string) {
	d := rn.dicts[lang]
	if d.Valid(key) {
		return
	}

	baseVal, ok := rn.dicts[rn.opts.BaseLang].Get(key)
	if !ok || !baseVal.Valid() {
		rn.report.warnf("%s: %s: no %s text to translate from, key skipped",
			lang, key, rn.opts.BaseLang)
		return
	}

	out, err := rn.translate(ctx, baseVal.Text, rn.opts.BaseLang, lang)
	if err != nil {
		rn.report.warnf("%s: %s: translation failed (%v), placeholder written", lang, key, err)
		rn.store(d, key, dict.Pending(baseVal.Text), ActionPlaceholder)
		return
	}

	val := dict.FromWire(out, d.Marker)
	if !val.Placeholder && val.Missing() {
		rn.report.warnf("%s: %s: blank translation returned, placeholder written", lang, key)
		rn.store(d, key, dict.Pending(baseVal.Text), ActionPlaceholder)
		return
	}
	action := ActionTranslate
	if val.Placeholder {
		action = ActionPlaceholder
	}
	rn.store(d, key, val, action)
}

// reverseSource finds the first dependent language holding a real value
// for key. Placeholder origins are skipped so garbage is never
// translated back into the base language.
func (rn *run) reverseSource(key string) (lang, text string, ok bool) {
	for _, l := range rn.deps {
		if rn.dicts[l].Valid(key) {
			v, _ := rn.dicts[l].Get(key)
			return l, v.Text, true
		}
	}
	return "", "", false
}

// translate invokes the configured translator, falling back to a
// marker-tagged echo when none is set. Every invocation is counted.
func (rn *run) translate(ctx context.Context, text, from, to string) (string, error) {
	rn.report.TranslateCalls++
	if rn.opts.Translator == nil {
		return rn.dicts[to].Marker + text, nil
	}
	return rn.opts.Translator.Translate(ctx, text, from, to)
}

// store writes val only if it differs from the current entry, recording
// the change. Identical rewrites stay invisible, which is what makes a
// second run a no-op.
func (rn *run) store(d *dict.Dictionary, key string, val dict.Value, action Action) {
	old, had := d.Get(key)
	if had && old == val {
		return
	}

	d.Set(key, val)

	oldWire := ""
	if had {
		oldWire = old.Wire(d.Marker)
	}
	rn.report.Changes = append(rn.report.Changes, Change{
		Lang:   d.Lang,
		Key:    key,
		Action: action,
		Old:    oldWire,
		New:    val.Wire(d.Marker),
	})
}
