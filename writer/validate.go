package writer

import (
	"fmt"

	"github.com/dexfmt/dexwriter/errs"
	"github.com/dexfmt/dexwriter/program"
)

// validateInterfaceMethods checks every interface method against the
// rules of the targeted API level. The first violation is reported as a
// fatal diagnostic and aborts the writer before any bytes are produced.
func (w *FileWriter) validateInterfaceMethods() error {
	for _, class := range w.pools.Classes() {
		if !class.IsInterface() {
			continue
		}
		for _, m := range class.DirectMethods {
			if err := w.checkInterfaceMethod(class, m); err != nil {
				return err
			}
		}
		for _, m := range class.VirtualMethods {
			if err := w.checkInterfaceMethod(class, m); err != nil {
				return err
			}
		}
	}

	return nil
}

func (w *FileWriter) checkInterfaceMethod(class *program.Class, m *program.EncodedMethod) error {
	if m.Method.IsClassInitializer() {
		return nil
	}

	fatal := func(message string) error {
		d := Diagnostic{Context: class.Type.Descriptor + "->" + m.Method.Signature(), Message: message}
		w.config.reporter.Fatal(d)

		return fmt.Errorf("%w: %s", errs.ErrInterfaceMethodIllegal, d)
	}

	if m.AccessFlags.IsStatic() {
		if !w.config.CanUseDefaultAndStaticInterfaceMethods {
			return fatal("static interface methods are only supported starting with Android N")
		}
	} else {
		if m.Method.IsInstanceInitializer() {
			return fatal("interfaces must not have constructors")
		}
		if !m.AccessFlags.IsAbstract() && !m.AccessFlags.IsPrivate() &&
			!w.config.CanUseDefaultAndStaticInterfaceMethods {
			return fatal("default interface methods are only supported starting with Android N")
		}
	}

	if m.AccessFlags.IsPrivate() {
		if !w.config.CanUsePrivateInterfaceMethods {
			return fatal("private interface methods are only supported starting with Android N")
		}
	} else if !m.AccessFlags.IsPublic() {
		return fatal("interface methods must not be protected or package private")
	}

	return nil
}

// validateInvokeCustom rejects call sites and method handles when the
// target runtime cannot execute them.
func (w *FileWriter) validateInvokeCustom() error {
	if w.config.CanUseInvokeCustom {
		return nil
	}
	if w.pools.CallSiteCount() == 0 && w.pools.MethodHandleCount() == 0 {
		return nil
	}

	d := Diagnostic{Message: "invoke-custom requires Android O"}
	w.config.reporter.Fatal(d)

	return fmt.Errorf("%w: %s", errs.ErrInvokeCustomUnsupported, d)
}

// validateNames is the debug-build assertion that every simple name is
// legal at the minimum API level.
func (w *FileWriter) validateNames() error {
	if w.config.SkipNameValidation {
		return nil
	}

	check := func(name, context string) error {
		if isValidSimpleName(name, w.config.MinAPILevel) {
			return nil
		}
		d := Diagnostic{Context: context, Message: fmt.Sprintf("invalid simple name %q", name)}
		w.config.reporter.Error(d)

		return fmt.Errorf("%w: %s", errs.ErrNameInvalid, d)
	}

	for _, class := range w.pools.Classes() {
		if err := check(class.Type.SimpleName(), class.Type.Descriptor); err != nil {
			return err
		}
		for _, fields := range [][]*program.EncodedField{class.StaticFields, class.InstanceFields} {
			for _, f := range fields {
				if err := check(w.config.naming.LookupFieldName(f.Field), class.Type.Descriptor); err != nil {
					return err
				}
			}
		}
		for _, methods := range [][]*program.EncodedMethod{class.DirectMethods, class.VirtualMethods} {
			for _, m := range methods {
				name := w.config.naming.LookupMethodName(m.Method)
				if name == "<init>" || name == "<clinit>" {
					continue
				}
				if err := check(name, class.Type.Descriptor); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// isValidSimpleName implements the SimpleName grammar of the DEX
// format. Since API 30 the runtime additionally accepts spaces.
func isValidSimpleName(name string, apiLevel int) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '$' || r == '-' || r == '_':
		case r == ' ':
			if apiLevel < 30 {
				return false
			}
		case r >= 0x00a1 && r <= 0x1fff,
			r >= 0x2010 && r <= 0x2027,
			r >= 0x2030 && r <= 0xd7ff,
			r >= 0xe000 && r <= 0xffef,
			r >= 0x10000 && r <= 0x10ffff:
		default:
			return false
		}
	}

	return true
}
