// Package cloud turns delimited rows into normalised, coloured, sized 3-D
// points and partitions them into time buckets for playback.
//
// A load runs as one synchronous batch:
//
//	rows -> ComputeRanges -> NewScale (per axis) -> BuildPoints -> BuildTimeline
//
// Load wires the stages together and returns an immutable Dataset.
package cloud

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Role is a named semantic slot bound to a column.
type Role int

const (
	RoleX Role = iota
	RoleY
	RoleZ
	RoleSize
	RoleRed
	RoleGreen
	RoleBlue
	RoleTime
	RoleInfo
	numRoles
)

// Roles lists every role in declaration order.
var Roles = []Role{RoleX, RoleY, RoleZ, RoleSize, RoleRed, RoleGreen, RoleBlue, RoleTime, RoleInfo}

// AxisRoles are the three position roles.
var AxisRoles = [3]Role{RoleX, RoleY, RoleZ}

var roleNames = [numRoles]string{"x", "y", "z", "size", "red", "green", "blue", "time", "info"}

// roleAliases maps the short keys used by dataset definitions to roles.
var roleAliases = map[string]Role{
	"x": RoleX, "y": RoleY, "z": RoleZ,
	"s": RoleSize, "size": RoleSize,
	"r": RoleRed, "red": RoleRed,
	"g": RoleGreen, "green": RoleGreen,
	"b": RoleBlue, "blue": RoleBlue,
	"t": RoleTime, "time": RoleTime,
	"i": RoleInfo, "info": RoleInfo,
}

func (r Role) String() string {
	if r < 0 || r >= numRoles {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// Numeric reports whether the role carries numeric values with a range.
func (r Role) Numeric() bool {
	return r >= RoleX && r < RoleInfo
}

// ParseRole resolves a role name or short key ("s", "t", ...).
func ParseRole(name string) (Role, error) {
	r, ok := roleAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown role %q", name)
	}
	return r, nil
}

// Binding is an optional column index for one role.
type Binding struct {
	Index int
	Set   bool
}

// Mapping binds roles to column indices. The zero value maps nothing.
// Mappings are values: With returns a modified copy.
type Mapping struct {
	bindings [numRoles]Binding
}

// DefaultMapping is the column layout used when a dataset gives none:
// x,y,z,size,red,green,blue,time,info in columns 0..8.
func DefaultMapping() Mapping {
	var m Mapping
	for i, r := range Roles {
		m.bindings[r] = Binding{Index: i, Set: true}
	}
	return m
}

// NewMapping builds a mapping from role bindings.
func NewMapping(bindings map[Role]int) (Mapping, error) {
	var m Mapping
	for r, idx := range bindings {
		if r < 0 || r >= numRoles {
			return Mapping{}, fmt.Errorf("unknown role %d", int(r))
		}
		if idx < 0 {
			return Mapping{}, fmt.Errorf("negative column index %d for role %s", idx, r)
		}
		m.bindings[r] = Binding{Index: idx, Set: true}
	}
	return m, nil
}

// MappingFromIndices builds a mapping from role names or short keys.
func MappingFromIndices(indices map[string]int) (Mapping, error) {
	bindings := make(map[Role]int, len(indices))
	for name, idx := range indices {
		r, err := ParseRole(name)
		if err != nil {
			return Mapping{}, err
		}
		bindings[r] = idx
	}
	return NewMapping(bindings)
}

// With returns a copy of m with role bound to column idx.
func (m Mapping) With(role Role, idx int) Mapping {
	m.bindings[role] = Binding{Index: idx, Set: true}
	return m
}

// Without returns a copy of m with role unbound.
func (m Mapping) Without(role Role) Mapping {
	m.bindings[role] = Binding{}
	return m
}

// Column returns the column bound to role.
func (m Mapping) Column(role Role) (int, bool) {
	if role < 0 || role >= numRoles {
		return 0, false
	}
	b := m.bindings[role]
	return b.Index, b.Set
}

// Has reports whether role is bound.
func (m Mapping) Has(role Role) bool {
	_, ok := m.Column(role)
	return ok
}

// Cell returns the row's cell for role. ok is false when the role is
// unbound or its column lies beyond the end of the row.
func (m Mapping) Cell(row []string, role Role) (string, bool) {
	idx, ok := m.Column(role)
	if !ok || idx >= len(row) {
		return "", false
	}
	return row[idx], true
}

// Indices returns the bound roles keyed by their long names.
func (m Mapping) Indices() map[string]int {
	out := make(map[string]int)
	for _, r := range Roles {
		if b := m.bindings[r]; b.Set {
			out[r.String()] = b.Index
		}
	}
	return out
}

func (m Mapping) String() string {
	idx := m.Indices()
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, _ := ParseRole(keys[i])
		rj, _ := ParseRole(keys[j])
		return ri < rj
	})
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, idx[k])
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// ParseMappingFlag parses "x=0,y=1,s=3" into role bindings that override base.
func ParseMappingFlag(base Mapping, s string) (Mapping, error) {
	m := base
	if strings.TrimSpace(s) == "" {
		return m, nil
	}
	for _, part := range strings.Split(s, ",") {
		key, val, found := strings.Cut(part, "=")
		if !found {
			return Mapping{}, fmt.Errorf("invalid mapping entry %q, expected role=index", part)
		}
		r, err := ParseRole(key)
		if err != nil {
			return Mapping{}, err
		}
		val = strings.TrimSpace(val)
		if val == "-" || val == "" {
			m = m.Without(r)
			continue
		}
		idx, err := strconv.Atoi(val)
		if err != nil || idx < 0 {
			return Mapping{}, fmt.Errorf("invalid column index %q for role %s", val, r)
		}
		m = m.With(r, idx)
	}
	return m, nil
}
