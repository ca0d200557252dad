package export

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/beevik/etree"
)

// AttrPrefix marks a key that is written as an attribute of its parent
// element instead of a child element.
const AttrPrefix = "@_"

// TextKey marks a key whose value becomes the text of its parent element.
const TextKey = "#text"

// ErrInvalidName is returned for element or attribute names that are not
// XML names.
var ErrInvalidName = errors.New("invalid XML name")

// isoMillis matches the ExportDate layout of the metadata envelope.
const isoMillis = "2006-01-02T15:04:05.000Z"

// BuildXML serializes items into an XML document shaped by opts.
//
// With metadata the document is
//
//	<Export><Metadata>...</Metadata><Root count="N"><Item/>...</Root></Export>
//
// and without it the root element holds the items directly. Items may be
// structs (keys from json tags, in field order), string-keyed maps (keys
// sorted), slices (repeated elements) or scalars.
func BuildXML(items []any, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	for _, name := range []string{opts.RootElement, opts.ItemElement} {
		if err := ValidateName(name); err != nil {
			return nil, err
		}
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	var root *etree.Element
	if opts.IncludeMetadata {
		env := doc.CreateElement("Export")
		meta := env.CreateElement("Metadata")
		meta.CreateElement("ExportDate").SetText(opts.ExportedAt.Format(isoMillis))
		meta.CreateElement("ExportedBy").SetText(opts.ExportedBy)
		meta.CreateElement("RecordCount").SetText(strconv.Itoa(len(items)))
		meta.CreateElement("Version").SetText(opts.Version)
		meta.CreateElement("Company").SetText(opts.Company)
		meta.CreateElement("Generator").SetText(Generator)
		root = env.CreateElement(opts.RootElement)
		root.CreateAttr("count", strconv.Itoa(len(items)))
	} else {
		root = doc.CreateElement(opts.RootElement)
	}

	for i, item := range items {
		if err := encodeNode(root, opts.ItemElement, reflect.ValueOf(item)); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

// encodeNode appends v to parent as one or more elements named name.
func encodeNode(parent *etree.Element, name string, v reflect.Value) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	v = indirect(v)
	if !v.IsValid() {
		parent.CreateElement(name)
		return nil
	}
	if text, ok := scalarText(v); ok {
		parent.CreateElement(name).SetText(text)
		return nil
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := encodeNode(parent, name, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct, reflect.Map:
		el := parent.CreateElement(name)
		return encodeFields(el, v)
	}
	return fmt.Errorf("unsupported value of kind %s for <%s>", v.Kind(), name)
}

// encodeFields writes the keys of a struct or map into el.
func encodeFields(el *etree.Element, v reflect.Value) error {
	type kv struct {
		key string
		val reflect.Value
	}
	var fields []kv

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			key := f.Name
			if tag, ok := f.Tag.Lookup("json"); ok {
				tagName, _, _ := strings.Cut(tag, ",")
				if tagName == "-" {
					continue
				}
				if tagName != "" {
					key = tagName
				}
			}
			fields = append(fields, kv{key, v.Field(i)})
		}
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("unsupported map key type %s", v.Type().Key())
		}
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, k := range keys {
			fields = append(fields, kv{k.String(), v.MapIndex(k)})
		}
	}

	for _, f := range fields {
		switch {
		case strings.HasPrefix(f.key, AttrPrefix):
			text, ok := scalarText(indirect(f.val))
			if !ok {
				if indirect(f.val).IsValid() {
					return fmt.Errorf("attribute %q must be a scalar", f.key)
				}
				continue
			}
			attr := strings.TrimPrefix(f.key, AttrPrefix)
			if err := ValidateName(attr); err != nil {
				return err
			}
			el.CreateAttr(attr, text)
		case f.key == TextKey:
			if text, ok := scalarText(indirect(f.val)); ok {
				el.SetText(text)
			}
		default:
			if err := encodeNode(el, f.key, f.val); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateName reports whether name can be used unescaped as an element or
// attribute name. Namespace prefixes are not supported, so ':' is rejected.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for i, r := range name {
		if isNameStartChar(r) || (i > 0 && isNameChar(r)) {
			continue
		}
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// isNameStartChar follows the NameStartChar production of XML 1.0,
// fifth edition, minus ':'.
func isNameStartChar(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r == '_':
		return true
	case r >= 0xC0 && r <= 0xD6, r >= 0xD8 && r <= 0xF6, r >= 0xF8 && r <= 0x2FF,
		r >= 0x370 && r <= 0x37D, r >= 0x37F && r <= 0x1FFF, r >= 0x200C && r <= 0x200D,
		r >= 0x2070 && r <= 0x218F, r >= 0x2C00 && r <= 0x2FEF, r >= 0x3001 && r <= 0xD7FF,
		r >= 0xF900 && r <= 0xFDCF, r >= 0xFDF0 && r <= 0xFFFD, r >= 0x10000 && r <= 0xEFFFF:
		return true
	}
	return false
}

func isNameChar(r rune) bool {
	switch {
	case isNameStartChar(r):
		return true
	case r == '-', r == '.', r >= '0' && r <= '9', r == 0xB7,
		r >= 0x300 && r <= 0x36F, r >= 0x203F && r <= 0x2040:
		return true
	}
	return false
}

// indirect dereferences pointers and interfaces. A nil pointer or
// interface yields the zero Value.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

var textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()

// scalarText renders leaf values as element text.
func scalarText(v reflect.Value) (string, bool) {
	if !v.IsValid() {
		return "", false
	}
	if t, ok := v.Interface().(time.Time); ok {
		return t.UTC().Format(time.RFC3339), true
	}
	if v.Type().Implements(textMarshalerType) {
		b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", false
		}
		return string(b), true
	}
	switch v.Kind() {
	case reflect.String:
		return v.String(), true
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), true
	}
	return "", false
}
