package loader

import (
	"net/http"
	"reflect"
)

var (
	responseWriterType = reflect.TypeOf((*http.ResponseWriter)(nil)).Elem()
	requestType        = reflect.TypeOf((*http.Request)(nil))
)

// AsHandler converts a module export into an http.Handler. Accepted shapes:
//
//	http.Handler
//	func(http.ResponseWriter, *http.Request)
//	func(next http.Handler) http.Handler   // next answers 404
//
// Functions produced by the interpreter that have the handler signature but
// a distinct named type are adapted through reflection.
func AsHandler(v any) (http.Handler, bool) {
	switch h := v.(type) {
	case nil:
		return nil, false
	case http.HandlerFunc:
		if h == nil {
			return nil, false
		}
		return h, true
	case http.Handler:
		return h, true
	case func(http.ResponseWriter, *http.Request):
		if h == nil {
			return nil, false
		}
		return http.HandlerFunc(h), true
	case func(http.Handler) http.Handler:
		if h == nil {
			return nil, false
		}
		wrapped := h(http.NotFoundHandler())
		if wrapped == nil {
			return nil, false
		}
		return wrapped, true
	}
	return reflectHandler(v)
}

func reflectHandler(v any) (http.Handler, bool) {
	fn := reflect.ValueOf(v)
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, false
	}
	t := fn.Type()
	if t.NumIn() != 2 || t.NumOut() != 0 {
		return nil, false
	}
	if !responseWriterType.AssignableTo(t.In(0)) {
		return nil, false
	}
	if t.In(1) != requestType {
		return nil, false
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn.Call([]reflect.Value{reflect.ValueOf(w), reflect.ValueOf(r)})
	}), true
}
