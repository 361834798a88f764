package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type Action string

type Binding struct {
	Action Action
	Keys   []string
	Help   string
	Scopes []string
}

type KeyRegistry struct {
	bindingsByScope map[string][]*Binding
	indexByScope    map[string]map[string]*Binding
}

const (
	scopeGlobal  = "global"
	scopeMap     = "map"
	scopePlacing = "placing"
	scopeList    = "list"
	scopeSearch  = "search"
	scopeDetail  = "detail"
	scopeConfirm = "confirm"
)

const (
	actionQuit      Action = "quit"
	actionToggleAdd Action = "toggle_add"
	actionPlace     Action = "place"
	actionCancel    Action = "cancel"
	actionColor     Action = "color"
	actionZoomIn    Action = "zoom_in"
	actionZoomOut   Action = "zoom_out"
	actionPan       Action = "pan"
	actionFit       Action = "fit"
	actionSearch    Action = "search"
	actionFocusList Action = "focus_list"
	actionClearAll  Action = "clear_all"
	actionNavigate  Action = "navigate"
	actionOpen      Action = "open"
	actionRemove    Action = "remove"
	actionBack      Action = "back"
	actionSave      Action = "save"
	actionClose     Action = "close"
	actionConfirm   Action = "confirm"
	actionClear     Action = "clear_search"
)

var panKeys = []string{"h/j/k/l", "h", "j", "k", "l", "left", "down", "up", "right"}

// NewKeyRegistry builds the bindings for every scope. colorKeys are the
// palette quick-select digits in display order.
func NewKeyRegistry(colorKeys []string) *KeyRegistry {
	r := &KeyRegistry{
		bindingsByScope: make(map[string][]*Binding),
		indexByScope:    make(map[string]map[string]*Binding),
	}

	reg := func(action Action, keys []string, help string, scopes ...string) {
		r.Register(Binding{Action: action, Keys: keys, Help: help, Scopes: scopes})
	}

	reg(actionQuit, []string{"q", "ctrl+c"}, "quit", scopeGlobal)

	// Placing shares the map bindings; enter and esc only mean something there.
	reg(actionPlace, []string{"enter"}, "place at +", scopePlacing)
	reg(actionCancel, []string{"esc"}, "cancel", scopePlacing)
	reg(actionToggleAdd, []string{"a"}, "add marker", scopeMap, scopePlacing)
	if len(colorKeys) > 0 {
		keys := colorKeys
		if len(colorKeys) > 1 {
			keys = append([]string{strings.Join(colorKeys, "/")}, colorKeys...)
		}
		reg(actionColor, keys, "color", scopeMap, scopePlacing, scopeList)
	}
	reg(actionPan, panKeys, "pan", scopeMap, scopePlacing)
	reg(actionZoomIn, []string{"+", "="}, "zoom in", scopeMap, scopePlacing)
	reg(actionZoomOut, []string{"-", "_"}, "zoom out", scopeMap, scopePlacing)
	reg(actionFit, []string{"f"}, "fit", scopeMap, scopePlacing)
	reg(actionSearch, []string{"/"}, "search", scopeMap, scopePlacing, scopeList)
	reg(actionFocusList, []string{"tab"}, "list", scopeMap, scopePlacing)
	reg(actionClearAll, []string{"x"}, "clear all", scopeMap, scopePlacing, scopeList)
	reg(actionQuit, []string{"q", "ctrl+c"}, "quit", scopeMap, scopePlacing, scopeList)

	reg(actionNavigate, []string{"j/k", "j", "k", "up", "down"}, "navigate", scopeList)
	reg(actionOpen, []string{"enter"}, "open", scopeList)
	reg(actionRemove, []string{"d", "delete"}, "remove", scopeList)
	reg(actionBack, []string{"esc", "tab"}, "map", scopeList)

	reg(actionConfirm, []string{"enter"}, "done", scopeSearch)
	reg(actionClear, []string{"esc"}, "clear search", scopeSearch)

	reg(actionSave, []string{"enter"}, "save note", scopeDetail)
	reg(actionRemove, []string{"ctrl+d"}, "remove", scopeDetail)
	reg(actionClose, []string{"esc"}, "close", scopeDetail)

	reg(actionConfirm, []string{"y"}, "clear all", scopeConfirm)
	reg(actionCancel, []string{"n", "esc"}, "keep", scopeConfirm)

	return r
}

func (r *KeyRegistry) Register(b Binding) {
	if r == nil {
		return
	}
	for _, scope := range b.Scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" || len(b.Keys) == 0 {
			continue
		}
		if _, ok := r.indexByScope[scope]; !ok {
			r.indexByScope[scope] = make(map[string]*Binding)
		}
		normKeys := normalizeKeyList(b.Keys)
		if len(normKeys) == 0 {
			continue
		}
		if r.scopeHasAnyKey(scope, normKeys) {
			continue
		}

		copyBinding := b
		copyBinding.Keys = normKeys
		copyBinding.Scopes = []string{scope}
		r.bindingsByScope[scope] = append(r.bindingsByScope[scope], &copyBinding)
		for _, k := range copyBinding.Keys {
			r.indexByScope[scope][k] = &copyBinding
		}
	}
}

func (r *KeyRegistry) BindingsForScope(scope string) []Binding {
	if r == nil {
		return nil
	}
	items := r.bindingsByScope[scope]
	out := make([]Binding, 0, len(items))
	for _, b := range items {
		out = append(out, *b)
	}
	return out
}

// Lookup finds the binding for keyName in scope, falling back to the global
// scope.
func (r *KeyRegistry) Lookup(keyName, scope string) *Binding {
	if r == nil || keyName == "" {
		return nil
	}
	keyName = normalizeKeyName(keyName)
	if b := r.lookupInScope(keyName, scope); b != nil {
		return b
	}
	if scope != scopeGlobal {
		return r.lookupInScope(keyName, scopeGlobal)
	}
	return nil
}

func (r *KeyRegistry) HelpBindings(scope string) []key.Binding {
	items := r.BindingsForScope(scope)
	out := make([]key.Binding, 0, len(items))
	for _, b := range items {
		if len(b.Keys) == 0 {
			continue
		}
		out = append(out, key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Help)))
	}
	return out
}

func (r *KeyRegistry) lookupInScope(keyName, scope string) *Binding {
	lookup, ok := r.indexByScope[scope]
	if !ok {
		return nil
	}
	return lookup[keyName]
}

func (r *KeyRegistry) scopeHasAnyKey(scope string, keys []string) bool {
	lookup := r.indexByScope[scope]
	for _, k := range keys {
		if _, exists := lookup[k]; exists {
			return true
		}
	}
	return false
}

func normalizeKeyList(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool)
	for _, k := range keys {
		n := normalizeKeyName(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func normalizeKeyName(k string) string {
	if k == " " {
		return "space"
	}
	trimmed := strings.TrimSpace(k)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 1 {
		ch := trimmed[0]
		if ch >= 'A' && ch <= 'Z' {
			// Preserve single uppercase rune so uppercase/lowercase bindings
			// can be distinct actions within the same scope.
			return trimmed
		}
	}
	s := strings.ToLower(trimmed)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "control+", "ctrl+")
	s = strings.ReplaceAll(s, "ctl+", "ctrl+")
	s = strings.ReplaceAll(s, "return", "enter")
	s = strings.ReplaceAll(s, "escape", "esc")
	return s
}
