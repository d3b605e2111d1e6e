package program

import "strings"

// Structural keys for pool deduplication. Descriptors never contain
// "->" or "|", so the separators below are unambiguous.

func protoKey(p *Proto) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, t := range p.Parameters {
		sb.WriteString(t.Descriptor)
	}
	sb.WriteByte(')')
	sb.WriteString(p.ReturnType.Descriptor)

	return sb.String()
}

func fieldKey(f *Field) string {
	return f.Class.Descriptor + "->" + f.Name + ":" + f.Type.Descriptor
}

func methodKey(m *Method) string {
	return m.Class.Descriptor + "->" + m.Name + protoKey(m.Proto)
}

func methodHandleKey(h *MethodHandle) string {
	var target string
	if h.Kind.IsFieldHandle() {
		target = fieldKey(h.Field)
	} else {
		target = methodKey(h.Method)
	}

	return string(rune(h.Kind)) + "|" + target
}
