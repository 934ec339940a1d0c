package permissions

import (
	_ "embed"
	"encoding/json"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var embedded []byte

// Rule guards one route pattern. Public rules admit anonymous callers. A rule without
// roles admits any authenticated caller and leaves ownership checks to the service.
type Rule struct {
	Path   string   `json:"path"`
	Method string   `json:"method"`
	Roles  []string `json:"permissions"`
	Public bool     `json:"skip"`
}

// Allows reports whether role may call the route.
func (r Rule) Allows(role string) bool {
	return r.Public || len(r.Roles) == 0 || slices.Contains(r.Roles, role)
}

// Table is the route permission table, indexed by method and chi route pattern.
type Table struct {
	Rules    []Rule `json:"endpoints"`
	Disabled bool   `json:"skip"`

	index map[string]Rule
}

func key(method, path string) string {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	return method + " " + path
}

// Parse reads a permission table. Later rules for the same route win.
func Parse(data []byte) (*Table, error) {
	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, err
	}

	table.index = make(map[string]Rule, len(table.Rules))
	for _, rule := range table.Rules {
		table.index[key(rule.Method, rule.Path)] = rule
	}

	return &table, nil
}

// Lookup finds the rule for a chi route pattern. The trailing slash chi reports for a subrouter root is ignored.
func (t *Table) Lookup(path, method string) (Rule, bool) {
	rule, ok := t.index[key(method, path)]

	return rule, ok
}

// Get parses the embedded table. It returns nil when the table is malformed.
func Get() *Table {
	table, err := Parse(embedded)
	if err != nil {
		log.Err(err).Msg("failed to decode embedded permissions")

		return nil
	}

	log.Info().Int("endpoints", len(table.Rules)).Msg("route permissions loaded")

	return table
}
