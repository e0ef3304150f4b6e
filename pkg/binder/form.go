package binder

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// DefaultMaxFormSize bounds multipart bodies, files included (6MB).
const DefaultMaxFormSize int64 = 6 << 20

// multipartMemory is how much of a multipart body is kept in memory before
// spilling file parts to disk.
const multipartMemory = 1 << 20

var fileHeaderType = reflect.TypeOf((*multipart.FileHeader)(nil))

// Form binds application/x-www-form-urlencoded and multipart/form-data bodies.
// Fields use `form` tags; *multipart.FileHeader fields use `file` tags.
func Form() func(r *http.Request, v any) error {
	return FormWithLimit(DefaultMaxFormSize)
}

// FormWithLimit is Form with a custom body size limit.
func FormWithLimit(maxSize int64) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		var files map[string][]*multipart.FileHeader

		switch mediaType(r) {
		case "application/x-www-form-urlencoded":
			r.Body = http.MaxBytesReader(nil, r.Body, maxSize)
			if err := r.ParseForm(); err != nil {
				return formError(err)
			}
		case "multipart/form-data":
			r.Body = http.MaxBytesReader(nil, r.Body, maxSize)
			if err := r.ParseMultipartForm(multipartMemory); err != nil {
				return formError(err)
			}
			files = r.MultipartForm.File
		default:
			return ErrBinderNotApplicable
		}

		if err := bindValues(v, "form", r.PostForm); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidForm, err)
		}
		if err := bindFiles(v, files); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidForm, err)
		}
		return nil
	}
}

// Query binds URL query parameters using `query` tags. It always applies.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if err := bindValues(v, "query", r.URL.Query()); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		return nil
	}
}

func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: max %d bytes", ErrBodyTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %v", ErrInvalidForm, err)
}

func structValue(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, errors.New("target must be a non-nil pointer to struct")
	}
	return rv.Elem(), nil
}

func bindValues(v any, tag string, values url.Values) error {
	rv, err := structValue(v)
	if err != nil {
		return err
	}
	rt := rv.Type()

	for i := range rt.NumField() {
		sf := rt.Field(i)
		name := tagName(sf, tag)
		if name == "" || !sf.IsExported() || sf.Type == fileHeaderType {
			continue
		}
		vals, ok := values[name]
		if !ok || len(vals) == 0 {
			continue
		}
		if err := setField(rv.Field(i), vals); err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
	}
	return nil
}

func bindFiles(v any, files map[string][]*multipart.FileHeader) error {
	if len(files) == 0 {
		return nil
	}
	rv, err := structValue(v)
	if err != nil {
		return err
	}
	rt := rv.Type()

	for i := range rt.NumField() {
		sf := rt.Field(i)
		if sf.Type != fileHeaderType || !sf.IsExported() {
			continue
		}
		name := tagName(sf, "file")
		if fhs := files[name]; name != "" && len(fhs) > 0 {
			rv.Field(i).Set(reflect.ValueOf(fhs[0]))
		}
	}
	return nil
}

func tagName(sf reflect.StructField, tag string) string {
	name, _, _ := strings.Cut(sf.Tag.Get(tag), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return strings.ToLower(sf.Name)
	}
	return name
}

func setField(field reflect.Value, vals []string) error {
	if field.Kind() == reflect.Pointer {
		elem := reflect.New(field.Type().Elem())
		if err := setField(elem.Elem(), vals); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	if field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String {
		field.Set(reflect.ValueOf(append([]string(nil), vals...)).Convert(field.Type()))
		return nil
	}

	raw := vals[0]
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		if raw == "" || raw == "on" {
			field.SetBool(raw == "on")
			return nil
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid bool value %q", raw)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid int value %q", raw)
		}
		field.SetInt(n)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
