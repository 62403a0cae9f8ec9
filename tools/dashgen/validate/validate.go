// Package validate checks generated dashboards and rules: every PromQL
// expression must parse and may only select known metrics.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/grafana/grafana-foundation-sdk/go/prometheus"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/rental-gateway/tools/dashgen/rules"
)

// Result collects validation findings. Errors fail generation, warnings
// are reported only.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether validation found no errors.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

// histogram and summary series derived from a registered metric name.
var derivedSuffixes = []string{"_bucket", "_sum", "_count"}

// Metrics parses expr and returns the metric names it selects, sorted and
// deduplicated.
func Metrics(expr string) ([]string, error) {
	e, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", expr, err)
	}

	seen := map[string]bool{}
	parser.Inspect(e, func(n parser.Node, _ []parser.Node) error {
		if vs, ok := n.(*parser.VectorSelector); ok && vs.Name != "" {
			seen[vs.Name] = true
		}
		return nil
	})

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func isKnown(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, s := range derivedSuffixes {
		if base, ok := strings.CutSuffix(name, s); ok && known[base] {
			return true
		}
	}
	return false
}

func (r *Result) checkExpr(where, expr string, known map[string]bool) {
	names, err := Metrics(expr)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", where, err))
		return
	}
	for _, n := range names {
		if !isKnown(n, known) {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: unknown metric %q", where, n))
		}
	}
}

// Dashboard validates the queries of every panel, including panels nested
// in rows.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var r Result
	for _, p := range dash.Panels {
		if p.Panel != nil {
			r.checkPanel(*p.Panel, known)
		}
		if p.RowPanel != nil {
			for _, inner := range p.RowPanel.Panels {
				r.checkPanel(inner, known)
			}
		}
	}
	return r
}

func (r *Result) checkPanel(p dashboard.Panel, known map[string]bool) {
	title := "untitled"
	if p.Title != nil {
		title = *p.Title
	}
	where := fmt.Sprintf("panel %q", title)

	if len(p.Targets) == 0 {
		r.Warnings = append(r.Warnings, where+": no targets")
		return
	}

	for _, t := range p.Targets {
		var expr string
		switch q := t.(type) {
		case *prometheus.Dataquery:
			expr = q.Expr
		case prometheus.Dataquery:
			expr = q.Expr
		default:
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s: skipping non-prometheus target %T", where, t))
			continue
		}
		r.checkExpr(where, expr, known)
	}
}

// Rules validates every rule expression and that recording rule names are
// known, so dashboards can depend on them.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var r Result
	for _, g := range cr.Spec.Groups {
		for _, rule := range g.Rules {
			name := rule.Record
			if name == "" {
				name = rule.Alert
			}
			where := fmt.Sprintf("rule %s/%s", g.Name, name)

			if rule.Record != "" && !known[rule.Record] {
				r.Errors = append(r.Errors, fmt.Sprintf("%s: recording rule not listed as known", where))
			}
			r.checkExpr(where, rule.Expr, known)
		}
	}
	return r
}
