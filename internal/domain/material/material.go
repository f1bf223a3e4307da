// Package material implements the Material / Technique / Pass model.
package material

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jinzhu/copier"
	"github.com/younwookim/scenecore/internal/domain/graph"
	"github.com/younwookim/scenecore/internal/domain/handle"
)

// DefaultScheme is the technique every material is created with.
const DefaultScheme = "default"

var (
	ErrNoSuchTechnique = errors.New("no such technique")
	ErrTechniqueExists = errors.New("technique already exists")
	ErrPassIndex       = errors.New("pass index out of range")
)

// Technique is an ordered, append-only list of passes.
type Technique struct {
	scheme string
	passes []*Pass
}

// Scheme returns the scheme name the technique is registered under.
func (t *Technique) Scheme() string { return t.scheme }

// NewPass appends a pass bound to shader and returns its index.
func (t *Technique) NewPass(shader handle.Handle) int {
	t.passes = append(t.passes, newPass(shader))
	return len(t.passes) - 1
}

// Pass returns the pass at index i.
func (t *Technique) Pass(i int) (*Pass, error) {
	if i < 0 || i >= len(t.passes) {
		return nil, fmt.Errorf("technique %q pass %d: %w", t.scheme, i, ErrPassIndex)
	}
	return t.passes[i], nil
}

// PassCount returns the number of passes.
func (t *Technique) PassCount() int { return len(t.passes) }

// Passes returns the passes in draw order.
func (t *Technique) Passes() []*Pass { return t.passes }

// Material maps scheme names to techniques.
type Material struct {
	graph.Node

	techniques map[string]*Technique
}

// New creates a material with one default technique holding one unshaded pass.
func New(h handle.Handle) *Material {
	m := &Material{
		Node:       graph.NewNode(h),
		techniques: make(map[string]*Technique),
	}
	t, _ := m.NewTechnique(DefaultScheme)
	t.NewPass(handle.None)
	return m
}

// Technique returns the technique for scheme.
func (m *Material) Technique(scheme string) (*Technique, error) {
	t, ok := m.techniques[scheme]
	if !ok {
		return nil, fmt.Errorf("material %s scheme %q: %w", m.Handle(), scheme, ErrNoSuchTechnique)
	}
	return t, nil
}

// DefaultTechnique returns the technique under DefaultScheme.
func (m *Material) DefaultTechnique() *Technique {
	return m.techniques[DefaultScheme]
}

// HasTechnique reports whether scheme exists.
func (m *Material) HasTechnique(scheme string) bool {
	_, ok := m.techniques[scheme]
	return ok
}

// NewTechnique creates an empty technique under scheme.
func (m *Material) NewTechnique(scheme string) (*Technique, error) {
	if _, ok := m.techniques[scheme]; ok {
		return nil, fmt.Errorf("material %s scheme %q: %w", m.Handle(), scheme, ErrTechniqueExists)
	}
	t := &Technique{scheme: scheme}
	m.techniques[scheme] = t
	return t, nil
}

// Schemes returns the registered scheme names, sorted.
func (m *Material) Schemes() []string {
	out := make([]string, 0, len(m.techniques))
	for s := range m.techniques {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Update advances animated texture units of every pass.
func (m *Material) Update(dt float64) {
	for _, t := range m.techniques {
		for _, p := range t.passes {
			p.Update(dt)
		}
	}
}

// Clone returns a new material under h holding deep copies of the default
// technique's passes. Shader and texture handles are shared; pass storage is not.
// Other schemes are not copied.
func (m *Material) Clone(h handle.Handle) (*Material, error) {
	out := &Material{
		Node:       graph.NewNode(h),
		techniques: make(map[string]*Technique),
	}
	out.Name = m.Name

	src := m.DefaultTechnique()
	dst := &Technique{scheme: DefaultScheme, passes: make([]*Pass, 0, len(src.passes))}
	for i, p := range src.passes {
		cp := &Pass{}
		if err := copier.CopyWithOption(cp, p, copier.Option{DeepCopy: true}); err != nil {
			return nil, fmt.Errorf("clone material %s pass %d: %w", m.Handle(), i, err)
		}
		dst.passes = append(dst.passes, cp)
	}
	out.techniques[DefaultScheme] = dst
	return out, nil
}
