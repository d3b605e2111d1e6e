package writer

import "github.com/dexfmt/dexwriter/program"

// collector walks the program in class pool order and registers every
// mixed-section item it transitively needs. Items enter the
// registries in discovery order, which fixes the emission order.
type collector struct {
	pools  *program.Pools
	mixed  *mixedSections
	keys   *keyer
	config *Config
}

func newCollector(pools *program.Pools, mixed *mixedSections, keys *keyer, config *Config) *collector {
	return &collector{pools: pools, mixed: mixed, keys: keys, config: config}
}

// collect populates the mixed-section table. After it returns, every
// code, debug info, type list, annotation surface, encoded array and
// class data entry reachable from the program is registered.
func (c *collector) collect() {
	for _, class := range c.pools.Classes() {
		c.collectClass(class)
	}

	// Proto parameter lists come from the proto pool, not the classes.
	for i := 0; i < c.pools.ProtoCount(); i++ {
		proto := c.pools.ProtoAt(i)
		if len(proto.Parameters) > 0 {
			c.mixed.addTypeList(c.keys, proto.Parameters)
		}
	}

	// Call-site payloads are encoded arrays referenced by the call site
	// ID table.
	for i := 0; i < c.pools.CallSiteCount(); i++ {
		c.mixed.addEncodedArray(c.keys, callSiteValues(c.pools.CallSiteAt(i)))
	}
}

func (c *collector) collectClass(class *program.Class) {
	if len(class.Interfaces) > 0 {
		c.mixed.addTypeList(c.keys, class.Interfaces)
	}

	if class.HasData() {
		c.mixed.addClassData(class)
	}

	if values := class.StaticValues(); values != nil {
		c.mixed.addEncodedArray(c.keys, values)
	}

	for _, method := range append(append([]*program.EncodedMethod{}, class.DirectMethods...), class.VirtualMethods...) {
		if method.Code == nil {
			continue
		}
		c.mixed.addCode(method.Method, method.Code)
		if method.Code.DebugInfo != nil {
			c.mixed.addDebugInfo(c.keys, method.Code.DebugInfo)
		}
	}

	if dir := c.buildDirectory(class); dir != nil {
		c.mixed.addDirectory(c.keys, class, dir)
	}
}

// buildDirectory aggregates the class's annotation surfaces into an
// annotations directory, registering every referenced set, annotation
// and parameter list. Returns nil when the class references no
// annotation set: it has no annotations and, below J-MR1, none of its
// surfaces carries an explicitly empty set.
func (c *collector) buildDirectory(class *program.Class) *program.AnnotationDirectory {
	dir := &program.AnnotationDirectory{}

	if set := c.registerSet(class.Annotations); set != nil {
		dir.ClassAnnotations = set
	}

	for _, fields := range [][]*program.EncodedField{class.StaticFields, class.InstanceFields} {
		for _, f := range fields {
			if set := c.registerSet(f.Annotations); set != nil {
				dir.FieldAnnotations = append(dir.FieldAnnotations, program.FieldAnnotation{Field: f.Field, Set: set})
			}
		}
	}

	for _, methods := range [][]*program.EncodedMethod{class.DirectMethods, class.VirtualMethods} {
		for _, m := range methods {
			if set := c.registerSet(m.Annotations); set != nil {
				dir.MethodAnnotations = append(dir.MethodAnnotations, program.MethodAnnotation{Method: m.Method, Set: set})
			}
			if pa := c.registerParamSets(m); pa != nil {
				dir.ParameterAnnotations = append(dir.ParameterAnnotations, program.ParameterAnnotation{Method: m.Method, Sets: pa})
			}
		}
	}

	if dir.IsEmpty() && dir.ClassAnnotations == nil {
		return nil
	}

	return dir
}

// registerSet registers a non-empty annotation set and its annotations,
// returning the set to reference, or nil when the reference resolves to
// offset 0. Below J-MR1 empty sets are materialized as one shared empty
// set instead of being elided; an absent (nil) set is never materialized.
func (c *collector) registerSet(set *program.AnnotationSet) *program.AnnotationSet {
	if set == nil {
		return nil
	}
	if set.IsEmpty() {
		if c.config.CanElideEmptyAnnotationSets() {
			return nil
		}

		return c.materializeEmptySet()
	}

	for _, a := range set.Annotations {
		c.mixed.addAnnotation(c.keys, a)
	}
	c.mixed.addAnnotationSet(c.keys, set)

	return set
}

func (c *collector) materializeEmptySet() *program.AnnotationSet {
	if c.mixed.emptySet == nil {
		empty := &program.AnnotationSet{}
		c.mixed.emptySet = c.mixed.addAnnotationSet(c.keys, empty)
	}

	return c.mixed.emptySet.set
}

// registerParamSets registers the positional annotation sets of a
// method. Nil positions stay nil (missing) when empty sets are elided;
// otherwise they are backfilled with the shared empty set.
func (c *collector) registerParamSets(m *program.EncodedMethod) []*program.AnnotationSet {
	if !m.HasParameterAnnotations() {
		return nil
	}

	sets := make([]*program.AnnotationSet, len(m.ParameterAnnotations))
	for i, set := range m.ParameterAnnotations {
		if set.IsEmpty() {
			if c.config.CanElideEmptyAnnotationSets() {
				sets[i] = nil
			} else {
				sets[i] = c.materializeEmptySet()
			}
			continue
		}
		sets[i] = c.registerSet(set)
	}
	c.mixed.addParamList(c.keys, sets)

	return sets
}

// callSiteValues flattens a call site into its encoded array form:
// bootstrap handle, method name, method type, then any extra bootstrap
// arguments.
func callSiteValues(cs *program.CallSite) []program.Value {
	values := make([]program.Value, 0, 3+len(cs.Arguments))
	values = append(values,
		program.ValueMethodHandle{Value: cs.Bootstrap},
		program.ValueString{Value: cs.MethodName},
		program.ValueMethodType{Value: cs.MethodType},
	)
	values = append(values, cs.Arguments...)

	return values
}
