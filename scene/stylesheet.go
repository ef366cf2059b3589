package scene

// StyleAttrs is what a stylesheet rule sets. It reuses ShapeAttrs'
// orInherit shape so applying a style is exactly "fill whatever this
// node left empty," the same mechanism the ancestor-paint cascade in
// resolver.go uses.
type StyleAttrs = ShapeAttrs

// styleRule is one entry in a Stylesheet: a (tag, class) selector and
// the attributes it contributes. tag == "" matches any tag ("untagged"
// per spec.md §4.6); class == "" is the classless cascade fallback.
type styleRule struct {
	tag   string
	class string
	attrs StyleAttrs
}

// Stylesheet is an ordered list of style rules, applied per spec.md
// §4.6 Pass A: for a node with a given tag and class set, walk the
// rules for [tag, ""] in reverse insertion order applying any whose
// class the node has, then apply the classless fallback rules for that
// tag.
type Stylesheet struct {
	rules []styleRule
}

// NewStylesheet returns an empty stylesheet.
func NewStylesheet() *Stylesheet { return &Stylesheet{} }

// Add appends a rule. tag == "" applies regardless of element tag;
// class == "" is a classless fallback rule, only applied after every
// class match for that tag has had a chance to fill in.
func (s *Stylesheet) Add(tag, class string, attrs StyleAttrs) {
	s.rules = append(s.rules, styleRule{tag: tag, class: class, attrs: attrs})
}

// Apply computes the cascaded attributes a node of the given tag with
// the given class set picks up from this stylesheet. Later-declared
// rules (reverse insertion order) are applied first, so among several
// matching rules the most recently added one wins any field conflict
// (orInherit only fills fields still empty).
func (s *Stylesheet) Apply(tag string, classes map[string]bool) StyleAttrs {
	var out StyleAttrs
	tagsToWalk := []string{tag}
	if tag != "" {
		tagsToWalk = append(tagsToWalk, "")
	}
	for _, t := range tagsToWalk {
		for i := len(s.rules) - 1; i >= 0; i-- {
			r := s.rules[i]
			if r.tag != t || r.class == "" || !classes[r.class] {
				continue
			}
			out = out.orInherit(r.attrs)
		}
	}
	for i := len(s.rules) - 1; i >= 0; i-- {
		r := s.rules[i]
		if r.class != "" || (r.tag != tag && r.tag != "") {
			continue
		}
		out = out.orInherit(r.attrs)
	}
	return out
}

// splitClasses breaks a whitespace-separated style_class attribute into
// a lookup set.
func splitClasses(class string) map[string]bool {
	out := make(map[string]bool)
	start := -1
	for i := 0; i <= len(class); i++ {
		if i < len(class) && class[i] != ' ' && class[i] != '\t' && class[i] != '\n' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out[class[start:i]] = true
			start = -1
		}
	}
	return out
}
